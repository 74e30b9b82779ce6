package game

import (
	"context"
	"time"
)

// Repository exposes game persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Game, bool, error)
	ListByWeek(ctx context.Context, weekID int64) ([]Game, error)
	ListByWeekIDs(ctx context.Context, weekIDs []int64) ([]Game, error)
	GetByProviderGameID(ctx context.Context, providerGameID string) (Game, bool, error)
	// ListPollable returns games that can receive live updates: a provider id
	// is set, the game is not final, and kickoff falls inside the window.
	ListPollable(ctx context.Context, windowStart, windowEnd time.Time) ([]Game, error)
	Insert(ctx context.Context, item Game) (int64, error)
	// UpdateSchedule rewrites the schedule-owned columns: start time, team
	// ids and provider id.
	UpdateSchedule(ctx context.Context, item Game) error
	// UpdateLiveState overwrites status and scores. Regressions are allowed;
	// the reconciler treats upstream corrections as idempotent overwrites.
	UpdateLiveState(ctx context.Context, id int64, status Status, homeScore, awayScore int) error
}
