package game

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinal      Status = "FINAL"
)

func NormalizeStatus(value string) Status {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(StatusInProgress), "LIVE", "IN":
		return StatusInProgress
	case string(StatusFinal), "POST", "FT":
		return StatusFinal
	default:
		return StatusScheduled
	}
}

// Game is one matchup inside a week. Scores default to zero until live data
// arrives. ProviderGameID correlates the row with per-event live lookups;
// empty means the provider has not assigned one yet.
type Game struct {
	ID             int64
	WeekID         int64
	HomeTeamID     int64
	AwayTeamID     int64
	StartTime      time.Time
	Status         Status
	HomeScore      int
	AwayScore      int
	ProviderGameID string
}

func (g Game) IsFinal() bool {
	return g.Status == StatusFinal
}

// WinnerTeamID returns the winning side of a final game, or 0 when the game
// is not final or ended in a tie. Only decided games feed rankings.
func (g Game) WinnerTeamID() int64 {
	if g.Status != StatusFinal {
		return 0
	}
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeamID
	case g.AwayScore > g.HomeScore:
		return g.AwayTeamID
	default:
		return 0
	}
}

// HasParticipant reports whether teamID is one of the game's two sides.
func (g Game) HasParticipant(teamID int64) bool {
	return teamID != 0 && (teamID == g.HomeTeamID || teamID == g.AwayTeamID)
}
