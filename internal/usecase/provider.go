package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/lunchpool/pickem/internal/domain/week"
)

// ErrLiveEventNotFound marks "not found/gone" answers from the live provider.
// The live cache treats it differently from transient failures: the event id
// goes into the negative cache so repeated polls stop hammering the provider.
var ErrLiveEventNotFound = errors.New("live event not found")

// ScheduleProvider serves the slow-moving data: the team roster and the
// published schedule for a given week.
type ScheduleProvider interface {
	Name() string
	Teams(ctx context.Context) ([]ExternalTeam, error)
	WeekSchedule(ctx context.Context, year int, weekNumber int, segment week.Segment) ([]ExternalGame, error)
}

// LiveProvider serves in-game state. LiveDetail returns ErrLiveEventNotFound
// for ids the provider no longer answers for; WeekScoreboard is the coarser
// listing used as a fallback when per-event summaries lag.
type LiveProvider interface {
	LiveDetail(ctx context.Context, eventID string) (LiveSnapshot, error)
	WeekScoreboard(ctx context.Context, year int, weekNumber int, segment week.Segment) ([]ExternalScoreboardEvent, error)
}

// ExternalTeam is one roster entry as the provider reports it. AltAbbrs nil
// means the provider did not supply alternates at all, which the importer
// distinguishes from an explicit empty list.
type ExternalTeam struct {
	Abbr     string
	Name     string
	Location string
	Slug     string
	AltAbbrs []string
	LogoPath string
}

type ExternalGame struct {
	ProviderGameID string
	HomeAbbr       string
	AwayAbbr       string
	StartTime      time.Time
}

// ExternalScoreboardEvent is one event row from the scoreboard listing. Score
// pointers are nil when the listing carries no score for that side.
type ExternalScoreboardEvent struct {
	EventID   string
	State     string
	HomeScore *int
	AwayScore *int
}

// LiveSnapshot is the per-event summary the live provider exposes. State is
// one of pre, in, post. Optional scalar fields use pointers so callers can
// tell "absent" from zero; optional text fields use the empty string.
type LiveSnapshot struct {
	EventID      string
	State        string
	DisplayClock string
	Period       *int
	HomeScore    *int
	AwayScore    *int
	Possession   string
	DownDistance string
	YardLine     string
	IsRedZone    *bool
	HomeTimeouts *int
	AwayTimeouts *int
	LastPlay     string
	HomeRecord   string
	AwayRecord   string
	VenueName    string
	VenueCity    string
	VenueState   string
	Weather      string
	Network      string
	Odds         string
	WinProbHome  *float64
	WinProbAway  *float64
	DriveSummary string
}

func (s LiveSnapshot) IsLive() bool  { return s.State == "in" }
func (s LiveSnapshot) IsFinal() bool { return s.State == "post" }
