package season

import "context"

// Repository exposes season persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Season, bool, error)
	GetByYear(ctx context.Context, year int) (Season, bool, error)
	// GetActive returns the newest season flagged active.
	GetActive(ctx context.Context) (Season, bool, error)
	// GetLatest returns the newest season by year regardless of the flag.
	GetLatest(ctx context.Context) (Season, bool, error)
	Insert(ctx context.Context, item Season) (int64, error)
}
