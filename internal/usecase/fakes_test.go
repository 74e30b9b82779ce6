package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/pick"
	"github.com/lunchpool/pickem/internal/domain/season"
	"github.com/lunchpool/pickem/internal/domain/team"
	"github.com/lunchpool/pickem/internal/domain/tiebreaker"
	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/domain/week"
)

// Map-backed fakes shared by the service tests. They mirror the uniqueness
// rules the real repositories enforce so conflict paths are testable.

func intPtr(v int) *int { return &v }

type fakeSeasonRepo struct {
	mu     sync.Mutex
	items  map[int64]season.Season
	nextID int64
}

func newFakeSeasonRepo() *fakeSeasonRepo {
	return &fakeSeasonRepo{items: map[int64]season.Season{}}
}

func (r *fakeSeasonRepo) GetByID(_ context.Context, id int64) (season.Season, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *fakeSeasonRepo) GetByYear(_ context.Context, year int) (season.Season, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Year == year {
			return item, true, nil
		}
	}
	return season.Season{}, false, nil
}

func (r *fakeSeasonRepo) GetActive(_ context.Context) (season.Season, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best season.Season
	found := false
	for _, item := range r.items {
		if !item.IsActive {
			continue
		}
		if !found || item.Year > best.Year {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *fakeSeasonRepo) GetLatest(_ context.Context) (season.Season, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best season.Season
	found := false
	for _, item := range r.items {
		if !found || item.Year > best.Year {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *fakeSeasonRepo) Insert(_ context.Context, item season.Season) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item.ID, nil
}

type fakeWeekRepo struct {
	mu             sync.Mutex
	items          map[int64]week.Week
	nextID         int64
	kickoffUpdates int
}

func newFakeWeekRepo() *fakeWeekRepo {
	return &fakeWeekRepo{items: map[int64]week.Week{}}
}

func (r *fakeWeekRepo) GetByID(_ context.Context, id int64) (week.Week, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *fakeWeekRepo) GetByNaturalKey(_ context.Context, seasonID int64, number int, segment week.Segment) (week.Week, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.SeasonID == seasonID && item.Number == number && item.Segment == segment {
			return item, true, nil
		}
	}
	return week.Week{}, false, nil
}

func (r *fakeWeekRepo) ListBySeason(_ context.Context, seasonID int64) ([]week.Week, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]week.Week, 0)
	for _, item := range r.items {
		if item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Segment != out[j].Segment {
			return out[i].Segment < out[j].Segment
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (r *fakeWeekRepo) FirstUpcoming(_ context.Context, now time.Time) (week.Week, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best week.Week
	found := false
	for _, item := range r.items {
		if item.FirstKickoffAt.Before(now) {
			continue
		}
		if !found || item.FirstKickoffAt.Before(best.FirstKickoffAt) {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *fakeWeekRepo) Latest(_ context.Context) (week.Week, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best week.Week
	found := false
	for _, item := range r.items {
		if !found || item.FirstKickoffAt.After(best.FirstKickoffAt) {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *fakeWeekRepo) Insert(_ context.Context, item week.Week) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item.ID, nil
}

func (r *fakeWeekRepo) UpdateFirstKickoff(_ context.Context, id int64, firstKickoffAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[id]
	item.FirstKickoffAt = firstKickoffAt
	r.items[id] = item
	r.kickoffUpdates++
	return nil
}

type fakeGameRepo struct {
	mu              sync.Mutex
	items           map[int64]game.Game
	nextID          int64
	scheduleUpdates int
	liveUpdates     int
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{items: map[int64]game.Game{}}
}

func (r *fakeGameRepo) GetByID(_ context.Context, id int64) (game.Game, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *fakeGameRepo) ListByWeek(_ context.Context, weekID int64) ([]game.Game, error) {
	return r.listWhere(func(item game.Game) bool { return item.WeekID == weekID }), nil
}

func (r *fakeGameRepo) ListByWeekIDs(_ context.Context, weekIDs []int64) ([]game.Game, error) {
	wanted := map[int64]bool{}
	for _, id := range weekIDs {
		wanted[id] = true
	}
	return r.listWhere(func(item game.Game) bool { return wanted[item.WeekID] }), nil
}

func (r *fakeGameRepo) GetByProviderGameID(_ context.Context, providerGameID string) (game.Game, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ProviderGameID != "" && item.ProviderGameID == providerGameID {
			return item, true, nil
		}
	}
	return game.Game{}, false, nil
}

func (r *fakeGameRepo) ListPollable(_ context.Context, windowStart, windowEnd time.Time) ([]game.Game, error) {
	return r.listWhere(func(item game.Game) bool {
		if item.ProviderGameID == "" || item.Status == game.StatusFinal {
			return false
		}
		return !item.StartTime.Before(windowStart) && !item.StartTime.After(windowEnd)
	}), nil
}

func (r *fakeGameRepo) Insert(_ context.Context, item game.Game) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item.ID, nil
}

func (r *fakeGameRepo) UpdateSchedule(_ context.Context, item game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.items[item.ID]
	current.StartTime = item.StartTime
	current.HomeTeamID = item.HomeTeamID
	current.AwayTeamID = item.AwayTeamID
	current.ProviderGameID = item.ProviderGameID
	r.items[item.ID] = current
	r.scheduleUpdates++
	return nil
}

func (r *fakeGameRepo) UpdateLiveState(_ context.Context, id int64, status game.Status, homeScore, awayScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.items[id]
	current.Status = status
	current.HomeScore = homeScore
	current.AwayScore = awayScore
	r.items[id] = current
	r.liveUpdates++
	return nil
}

func (r *fakeGameRepo) listWhere(keep func(game.Game) bool) []game.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]game.Game, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type fakeTeamRepo struct {
	mu      sync.Mutex
	items   map[int64]team.Team
	nextID  int64
	updates int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{items: map[int64]team.Team{}}
}

func (r *fakeTeamRepo) List(_ context.Context) ([]team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]team.Team, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *fakeTeamRepo) GetByAbbr(_ context.Context, abbr string) (team.Team, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Abbr == abbr {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *fakeTeamRepo) Insert(_ context.Context, item team.Team) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item.ID, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	r.updates++
	return nil
}

type fakePickRepo struct {
	mu      sync.Mutex
	items   map[[2]int64]pick.Pick
	nextID  int64
	upserts int
}

func newFakePickRepo() *fakePickRepo {
	return &fakePickRepo{items: map[[2]int64]pick.Pick{}}
}

func (r *fakePickRepo) GetByUserAndGame(_ context.Context, userID, gameID int64) (pick.Pick, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[[2]int64{userID, gameID}]
	return item, ok, nil
}

func (r *fakePickRepo) ListByGameIDs(_ context.Context, gameIDs []int64) ([]pick.Pick, error) {
	wanted := map[int64]bool{}
	for _, id := range gameIDs {
		wanted[id] = true
	}
	return r.listWhere(func(item pick.Pick) bool { return wanted[item.GameID] }), nil
}

func (r *fakePickRepo) ListByUserAndGameIDs(_ context.Context, userID int64, gameIDs []int64) ([]pick.Pick, error) {
	wanted := map[int64]bool{}
	for _, id := range gameIDs {
		wanted[id] = true
	}
	return r.listWhere(func(item pick.Pick) bool { return item.UserID == userID && wanted[item.GameID] }), nil
}

func (r *fakePickRepo) Upsert(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{item.UserID, item.GameID}
	if existing, ok := r.items[key]; ok {
		item.ID = existing.ID
	} else {
		r.nextID++
		item.ID = r.nextID
	}
	r.items[key] = item
	r.upserts++
	return nil
}

func (r *fakePickRepo) listWhere(keep func(pick.Pick) bool) []pick.Pick {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeTiebreakerRepo struct {
	mu     sync.Mutex
	items  map[[2]int64]tiebreaker.TieBreaker
	nextID int64
}

func newFakeTiebreakerRepo() *fakeTiebreakerRepo {
	return &fakeTiebreakerRepo{items: map[[2]int64]tiebreaker.TieBreaker{}}
}

func (r *fakeTiebreakerRepo) GetByUserAndWeek(_ context.Context, userID, weekID int64) (tiebreaker.TieBreaker, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[[2]int64{userID, weekID}]
	return item, ok, nil
}

func (r *fakeTiebreakerRepo) ListByWeek(_ context.Context, weekID int64) ([]tiebreaker.TieBreaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]tiebreaker.TieBreaker, 0)
	for _, item := range r.items {
		if item.WeekID == weekID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTiebreakerRepo) Upsert(_ context.Context, item tiebreaker.TieBreaker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.WeekID == item.WeekID && existing.GuessPoints == item.GuessPoints && existing.UserID != item.UserID {
			return tiebreaker.ErrDuplicateGuess
		}
	}
	key := [2]int64{item.UserID, item.WeekID}
	if existing, ok := r.items[key]; ok {
		item.ID = existing.ID
	} else {
		r.nextID++
		item.ID = r.nextID
	}
	r.items[key] = item
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	items  map[int64]user.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: map[int64]user.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *fakeUserRepo) GetByPublicID(_ context.Context, publicID string) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.PublicID == publicID {
			return item, true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Username == username {
			return item, true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Insert(_ context.Context, item user.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item.ID, nil
}
