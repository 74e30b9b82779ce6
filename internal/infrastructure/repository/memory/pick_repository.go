package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lunchpool/pickem/internal/domain/pick"
)

type PickRepository struct {
	mu     sync.RWMutex
	items  map[[2]int64]pick.Pick
	nextID int64
}

func NewPickRepository() *PickRepository {
	return &PickRepository{items: map[[2]int64]pick.Pick{}}
}

func (r *PickRepository) GetByUserAndGame(_ context.Context, userID, gameID int64) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[[2]int64{userID, gameID}]
	return item, ok, nil
}

func (r *PickRepository) ListByGameIDs(_ context.Context, gameIDs []int64) ([]pick.Pick, error) {
	wanted := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = true
	}

	return r.listWhere(func(item pick.Pick) bool { return wanted[item.GameID] }), nil
}

func (r *PickRepository) ListByUserAndGameIDs(_ context.Context, userID int64, gameIDs []int64) ([]pick.Pick, error) {
	wanted := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = true
	}

	return r.listWhere(func(item pick.Pick) bool { return item.UserID == userID && wanted[item.GameID] }), nil
}

func (r *PickRepository) Upsert(_ context.Context, item pick.Pick) error {
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

	return nil
}

func (r *PickRepository) listWhere(keep func(pick.Pick) bool) []pick.Pick {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
