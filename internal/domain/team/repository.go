package team

import "context"

// Repository exposes team persistence operations.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	GetByAbbr(ctx context.Context, abbr string) (Team, bool, error)
	Insert(ctx context.Context, item Team) (int64, error)
	Update(ctx context.Context, item Team) error
}
