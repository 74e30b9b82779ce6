package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lunchpool/pickem/internal/domain/user"
)

type UserRepository struct {
	mu     sync.RWMutex
	items  map[int64]user.User
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: map[int64]user.User{}}
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *UserRepository) GetByPublicID(_ context.Context, publicID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.PublicID == publicID {
			return item, true, nil
		}
	}

	return user.User{}, false, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Username == username {
			return item, true, nil
		}
	}

	return user.User{}, false, nil
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UserRepository) Insert(_ context.Context, item user.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Username == item.Username {
			return 0, fmt.Errorf("username %q already exists", item.Username)
		}
		if existing.PublicID == item.PublicID {
			return 0, fmt.Errorf("user public id %q already exists", item.PublicID)
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item

	return item.ID, nil
}
