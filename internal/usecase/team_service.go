package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/lunchpool/pickem/internal/domain/team"
)

// TeamService exposes the pool's team roster for display. The roster itself
// is maintained by the schedule importer.
type TeamService struct {
	teamRepo team.Repository
}

func NewTeamService(teamRepo team.Repository) *TeamService {
	return &TeamService{teamRepo: teamRepo}
}

// List returns the full roster sorted by abbreviation.
func (s *TeamService) List(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.List")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	sort.Slice(teams, func(i, j int) bool { return teams[i].Abbr < teams[j].Abbr })
	return teams, nil
}

// Index returns the roster keyed by team id.
func (s *TeamService) Index(ctx context.Context) (map[int64]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Index")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	index := make(map[int64]team.Team, len(teams))
	for _, item := range teams {
		index[item.ID] = item
	}
	return index, nil
}
