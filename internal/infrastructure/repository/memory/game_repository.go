package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lunchpool/pickem/internal/domain/game"
)

type GameRepository struct {
	mu     sync.RWMutex
	items  map[int64]game.Game
	nextID int64
}

func NewGameRepository() *GameRepository {
	return &GameRepository{items: map[int64]game.Game{}}
}

func (r *GameRepository) GetByID(_ context.Context, id int64) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *GameRepository) ListByWeek(_ context.Context, weekID int64) ([]game.Game, error) {
	return r.listWhere(func(item game.Game) bool { return item.WeekID == weekID }), nil
}

func (r *GameRepository) ListByWeekIDs(_ context.Context, weekIDs []int64) ([]game.Game, error) {
	wanted := make(map[int64]bool, len(weekIDs))
	for _, id := range weekIDs {
		wanted[id] = true
	}

	return r.listWhere(func(item game.Game) bool { return wanted[item.WeekID] }), nil
}

func (r *GameRepository) GetByProviderGameID(_ context.Context, providerGameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if providerGameID == "" {
		return game.Game{}, false, nil
	}
	for _, item := range r.items {
		if item.ProviderGameID == providerGameID {
			return item, true, nil
		}
	}

	return game.Game{}, false, nil
}

func (r *GameRepository) ListPollable(_ context.Context, windowStart, windowEnd time.Time) ([]game.Game, error) {
	return r.listWhere(func(item game.Game) bool {
		if item.ProviderGameID == "" || item.Status == game.StatusFinal {
			return false
		}
		return !item.StartTime.Before(windowStart) && !item.StartTime.After(windowEnd)
	}), nil
}

func (r *GameRepository) Insert(_ context.Context, item game.Game) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item

	return item.ID, nil
}

func (r *GameRepository) UpdateSchedule(_ context.Context, item game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("game id=%d does not exist", item.ID)
	}
	current.StartTime = item.StartTime
	current.HomeTeamID = item.HomeTeamID
	current.AwayTeamID = item.AwayTeamID
	current.ProviderGameID = item.ProviderGameID
	r.items[item.ID] = current

	return nil
}

func (r *GameRepository) UpdateLiveState(_ context.Context, id int64, status game.Status, homeScore, awayScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return fmt.Errorf("game id=%d does not exist", id)
	}
	current.Status = status
	current.HomeScore = homeScore
	current.AwayScore = awayScore
	r.items[id] = current

	return nil
}

func (r *GameRepository) listWhere(keep func(game.Game) bool) []game.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

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
