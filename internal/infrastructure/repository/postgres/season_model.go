package postgres

import (
	"time"

	"github.com/lunchpool/pickem/internal/domain/season"
)

type seasonTableModel struct {
	ID        int64     `db:"id"`
	Year      int       `db:"year"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

func (m seasonTableModel) toDomain() season.Season {
	return season.Season{
		ID:       m.ID,
		Year:     m.Year,
		IsActive: m.IsActive,
	}
}

type seasonInsertModel struct {
	Year     int  `db:"year"`
	IsActive bool `db:"is_active"`
}
