package user

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (User, bool, error)
	GetByPublicID(ctx context.Context, publicID string) (User, bool, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	List(ctx context.Context) ([]User, error)
	Insert(ctx context.Context, item User) (int64, error)
}
