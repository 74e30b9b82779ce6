package tiebreaker

import "context"

type Repository interface {
	GetByUserAndWeek(ctx context.Context, userID, weekID int64) (TieBreaker, bool, error)
	ListByWeek(ctx context.Context, weekID int64) ([]TieBreaker, error)
	// Upsert inserts or replaces the user's guess for the week. It returns
	// ErrDuplicateGuess when a different user already holds the same guess.
	Upsert(ctx context.Context, item TieBreaker) error
}
