package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lunchpool/pickem/internal/domain/week"
)

type WeekRepository struct {
	mu     sync.RWMutex
	items  map[int64]week.Week
	nextID int64
}

func NewWeekRepository() *WeekRepository {
	return &WeekRepository{items: map[int64]week.Week{}}
}

func (r *WeekRepository) GetByID(_ context.Context, id int64) (week.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *WeekRepository) GetByNaturalKey(_ context.Context, seasonID int64, number int, segment week.Segment) (week.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.SeasonID == seasonID && item.Number == number && item.Segment == segment {
			return item, true, nil
		}
	}

	return week.Week{}, false, nil
}

func (r *WeekRepository) ListBySeason(_ context.Context, seasonID int64) ([]week.Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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

func (r *WeekRepository) FirstUpcoming(_ context.Context, now time.Time) (week.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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

func (r *WeekRepository) Latest(_ context.Context) (week.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

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

func (r *WeekRepository) Insert(_ context.Context, item week.Week) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.SeasonID == item.SeasonID && existing.Number == item.Number && existing.Segment == item.Segment {
			return 0, fmt.Errorf("week number=%d segment=%s already exists for season id=%d", item.Number, item.Segment, item.SeasonID)
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item

	return item.ID, nil
}

func (r *WeekRepository) UpdateFirstKickoff(_ context.Context, id int64, firstKickoffAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("week id=%d does not exist", id)
	}
	item.FirstKickoffAt = firstKickoffAt
	r.items[id] = item

	return nil
}
