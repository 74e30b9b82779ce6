package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/lunchpool/pickem/internal/domain/season"
)

type SeasonRepository struct {
	mu     sync.RWMutex
	items  map[int64]season.Season
	nextID int64
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{items: map[int64]season.Season{}}
}

func (r *SeasonRepository) GetByID(_ context.Context, id int64) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *SeasonRepository) GetByYear(_ context.Context, year int) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Year == year {
			return item, true, nil
		}
	}

	return season.Season{}, false, nil
}

func (r *SeasonRepository) GetActive(_ context.Context) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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

func (r *SeasonRepository) GetLatest(_ context.Context) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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

// Insert stores the season. An active season deactivates every other one so
// at most a single season carries the flag.
func (r *SeasonRepository) Insert(_ context.Context, item season.Season) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Year == item.Year {
			return 0, fmt.Errorf("season year %d already exists", item.Year)
		}
	}

	if item.IsActive {
		for id, existing := range r.items {
			if existing.IsActive {
				existing.IsActive = false
				r.items[id] = existing
			}
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item

	return item.ID, nil
}
