package week

import (
	"context"
	"time"
)

// Repository exposes week persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Week, bool, error)
	GetByNaturalKey(ctx context.Context, seasonID int64, number int, segment Segment) (Week, bool, error)
	ListBySeason(ctx context.Context, seasonID int64) ([]Week, error)
	// FirstUpcoming returns the earliest week whose first kickoff is at or
	// after now.
	FirstUpcoming(ctx context.Context, now time.Time) (Week, bool, error)
	// Latest returns the week with the newest first kickoff.
	Latest(ctx context.Context) (Week, bool, error)
	Insert(ctx context.Context, item Week) (int64, error)
	UpdateFirstKickoff(ctx context.Context, id int64, firstKickoffAt time.Time) error
}
