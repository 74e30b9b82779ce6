package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/lunchpool/pickem/internal/domain/team"
)

type mockTeamRepo struct {
	mock.Mock
}

func (r *mockTeamRepo) List(ctx context.Context) ([]team.Team, error) {
	args := r.Called(ctx)

	var res []team.Team
	if args.Get(0) != nil {
		res = args.Get(0).([]team.Team)
	}

	return res, args.Error(1)
}

func (r *mockTeamRepo) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	args := r.Called(ctx, id)
	return args.Get(0).(team.Team), args.Bool(1), args.Error(2)
}

func (r *mockTeamRepo) GetByAbbr(ctx context.Context, abbr string) (team.Team, bool, error) {
	args := r.Called(ctx, abbr)
	return args.Get(0).(team.Team), args.Bool(1), args.Error(2)
}

func (r *mockTeamRepo) Insert(ctx context.Context, item team.Team) (int64, error) {
	args := r.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (r *mockTeamRepo) Update(ctx context.Context, item team.Team) error {
	args := r.Called(ctx, item)
	return args.Error(0)
}

func TestTeamService_List_SortsByAbbr(t *testing.T) {
	t.Parallel()

	repo := &mockTeamRepo{}
	repo.On("List", mock.Anything).Return([]team.Team{
		{ID: 3, Abbr: "KC", Name: "Chiefs"},
		{ID: 1, Abbr: "BUF", Name: "Bills"},
		{ID: 2, Abbr: "DET", Name: "Lions"},
	}, nil).Once()

	service := NewTeamService(repo)
	got, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected team count: got=%d want=3", len(got))
	}
	for i, want := range []string{"BUF", "DET", "KC"} {
		if got[i].Abbr != want {
			t.Fatalf("unexpected order at %d: got=%s want=%s", i, got[i].Abbr, want)
		}
	}

	repo.AssertExpectations(t)
}

func TestTeamService_List_RepoError(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("connection reset")
	repo := &mockTeamRepo{}
	repo.On("List", mock.Anything).Return(nil, repoErr).Once()

	service := NewTeamService(repo)
	_, err := service.List(context.Background())
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}

	repo.AssertExpectations(t)
}

func TestTeamService_Index_KeysByID(t *testing.T) {
	t.Parallel()

	repo := &mockTeamRepo{}
	repo.On("List", mock.Anything).Return([]team.Team{
		{ID: 7, Abbr: "GB", Name: "Packers"},
		{ID: 9, Abbr: "CHI", Name: "Bears"},
	}, nil).Once()

	service := NewTeamService(repo)
	index, err := service.Index(context.Background())
	if err != nil {
		t.Fatalf("index teams: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("unexpected index size: got=%d want=2", len(index))
	}
	if index[7].Abbr != "GB" || index[9].Abbr != "CHI" {
		t.Fatalf("index keyed wrong: %+v", index)
	}

	repo.AssertExpectations(t)
}
