package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lunchpool/pickem/internal/domain/tiebreaker"
	qb "github.com/lunchpool/pickem/internal/platform/querybuilder"
)

type TieBreakerRepository struct {
	db *sqlx.DB
}

func NewTieBreakerRepository(db *sqlx.DB) *TieBreakerRepository {
	return &TieBreakerRepository{db: db}
}

func (r *TieBreakerRepository) GetByUserAndWeek(ctx context.Context, userID, weekID int64) (tiebreaker.TieBreaker, bool, error) {
	query, args, err := qb.Select("*").From("tiebreakers").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("week_id", weekID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return tiebreaker.TieBreaker{}, false, fmt.Errorf("build select tiebreaker query: %w", err)
	}

	var row tieBreakerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tiebreaker.TieBreaker{}, false, nil
		}
		return tiebreaker.TieBreaker{}, false, fmt.Errorf("select tiebreaker: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *TieBreakerRepository) ListByWeek(ctx context.Context, weekID int64) ([]tiebreaker.TieBreaker, error) {
	query, args, err := qb.Select("*").From("tiebreakers").
		Where(qb.Eq("week_id", weekID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tiebreakers query: %w", err)
	}

	var rows []tieBreakerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tiebreakers: %w", err)
	}

	out := make([]tiebreaker.TieBreaker, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// Upsert replaces the user's guess for the week. The conflict target covers
// only the per-user unique; a violation that still surfaces can only come
// from the week-level guess unique, so it maps to ErrDuplicateGuess.
func (r *TieBreakerRepository) Upsert(ctx context.Context, item tiebreaker.TieBreaker) error {
	query, args, err := qb.InsertModel("tiebreakers", tieBreakerInsertModel{
		UserID:      item.UserID,
		WeekID:      item.WeekID,
		GuessPoints: item.GuessPoints,
	}, `ON CONFLICT (user_id, week_id)
DO UPDATE SET
    guess_points = EXCLUDED.guess_points,
    updated_at = now()`)
	if err != nil {
		return fmt.Errorf("build upsert tiebreaker query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("guess %d for week id=%d: %w", item.GuessPoints, item.WeekID, tiebreaker.ErrDuplicateGuess)
		}
		return fmt.Errorf("upsert tiebreaker user_id=%d week_id=%d: %w", item.UserID, item.WeekID, err)
	}

	return nil
}
