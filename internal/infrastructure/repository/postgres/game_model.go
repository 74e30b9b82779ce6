package postgres

import (
	"time"

	"github.com/lunchpool/pickem/internal/domain/game"
)

type gameTableModel struct {
	ID             int64     `db:"id"`
	WeekID         int64     `db:"week_id"`
	HomeTeamID     int64     `db:"home_team_id"`
	AwayTeamID     int64     `db:"away_team_id"`
	StartTime      time.Time `db:"start_time"`
	Status         string    `db:"status"`
	HomeScore      int       `db:"home_score"`
	AwayScore      int       `db:"away_score"`
	ProviderGameID string    `db:"provider_game_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m gameTableModel) toDomain() game.Game {
	return game.Game{
		ID:             m.ID,
		WeekID:         m.WeekID,
		HomeTeamID:     m.HomeTeamID,
		AwayTeamID:     m.AwayTeamID,
		StartTime:      m.StartTime,
		Status:         game.Status(m.Status),
		HomeScore:      m.HomeScore,
		AwayScore:      m.AwayScore,
		ProviderGameID: m.ProviderGameID,
	}
}

type gameInsertModel struct {
	WeekID         int64     `db:"week_id"`
	HomeTeamID     int64     `db:"home_team_id"`
	AwayTeamID     int64     `db:"away_team_id"`
	StartTime      time.Time `db:"start_time"`
	Status         string    `db:"status"`
	HomeScore      int       `db:"home_score"`
	AwayScore      int       `db:"away_score"`
	ProviderGameID string    `db:"provider_game_id"`
}
