package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lunchpool/pickem/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	items  map[int64]team.Team
	nextID int64
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{items: map[int64]team.Team{}}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *TeamRepository) GetByAbbr(_ context.Context, abbr string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Abbr == abbr {
			return item, true, nil
		}
	}

	return team.Team{}, false, nil
}

func (r *TeamRepository) Insert(_ context.Context, item team.Team) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Abbr == item.Abbr {
			return 0, fmt.Errorf("team abbr %q already exists", item.Abbr)
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item

	return item.ID, nil
}

func (r *TeamRepository) Update(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("team id=%d does not exist", item.ID)
	}
	r.items[item.ID] = item

	return nil
}
