package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lunchpool/pickem/internal/domain/tiebreaker"
)

type TieBreakerRepository struct {
	mu     sync.RWMutex
	items  map[[2]int64]tiebreaker.TieBreaker
	nextID int64
}

func NewTieBreakerRepository() *TieBreakerRepository {
	return &TieBreakerRepository{items: map[[2]int64]tiebreaker.TieBreaker{}}
}

func (r *TieBreakerRepository) GetByUserAndWeek(_ context.Context, userID, weekID int64) (tiebreaker.TieBreaker, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[[2]int64{userID, weekID}]
	return item, ok, nil
}

func (r *TieBreakerRepository) ListByWeek(_ context.Context, weekID int64) ([]tiebreaker.TieBreaker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tiebreaker.TieBreaker, 0)
	for _, item := range r.items {
		if item.WeekID == weekID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// Upsert keeps both week-level uniques: one guess per user, and each guess
// value held by at most one user.
func (r *TieBreakerRepository) Upsert(_ context.Context, item tiebreaker.TieBreaker) error {
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
