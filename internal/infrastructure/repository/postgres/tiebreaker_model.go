package postgres

import (
	"time"

	"github.com/lunchpool/pickem/internal/domain/tiebreaker"
)

type tieBreakerTableModel struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	WeekID      int64     `db:"week_id"`
	GuessPoints int       `db:"guess_points"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (m tieBreakerTableModel) toDomain() tiebreaker.TieBreaker {
	return tiebreaker.TieBreaker{
		ID:          m.ID,
		UserID:      m.UserID,
		WeekID:      m.WeekID,
		GuessPoints: m.GuessPoints,
	}
}

type tieBreakerInsertModel struct {
	UserID      int64 `db:"user_id"`
	WeekID      int64 `db:"week_id"`
	GuessPoints int   `db:"guess_points"`
}
