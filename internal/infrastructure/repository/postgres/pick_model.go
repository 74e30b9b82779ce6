package postgres

import (
	"time"

	"github.com/lunchpool/pickem/internal/domain/pick"
)

type pickTableModel struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	GameID       int64     `db:"game_id"`
	ChosenTeamID int64     `db:"chosen_team_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (m pickTableModel) toDomain() pick.Pick {
	return pick.Pick{
		ID:           m.ID,
		UserID:       m.UserID,
		GameID:       m.GameID,
		ChosenTeamID: m.ChosenTeamID,
	}
}

type pickInsertModel struct {
	UserID       int64 `db:"user_id"`
	GameID       int64 `db:"game_id"`
	ChosenTeamID int64 `db:"chosen_team_id"`
}
