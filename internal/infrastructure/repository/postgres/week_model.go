package postgres

import (
	"time"

	"github.com/lunchpool/pickem/internal/domain/week"
)

type weekTableModel struct {
	ID             int64     `db:"id"`
	SeasonID       int64     `db:"season_id"`
	Number         int       `db:"week_number"`
	Segment        int       `db:"segment"`
	FirstKickoffAt time.Time `db:"first_kickoff_at"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m weekTableModel) toDomain() week.Week {
	return week.Week{
		ID:             m.ID,
		SeasonID:       m.SeasonID,
		Number:         m.Number,
		Segment:        week.Segment(m.Segment),
		FirstKickoffAt: m.FirstKickoffAt,
	}
}

type weekInsertModel struct {
	SeasonID       int64     `db:"season_id"`
	Number         int       `db:"week_number"`
	Segment        int       `db:"segment"`
	FirstKickoffAt time.Time `db:"first_kickoff_at"`
}
