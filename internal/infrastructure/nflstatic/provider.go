// Package nflstatic serves the canonical NFL roster from a built-in table.
// It backs local development without network access and doubles as the
// fallback roster when the live provider answers with nothing usable.
package nflstatic

import (
	"context"
	"fmt"
	"strings"

	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/usecase"
)

type Provider struct{}

func NewProvider() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "local" }

// Teams lists all 32 franchises. Alternates cover abbreviations other data
// sources still use for relocated or renamed teams.
func (p *Provider) Teams(_ context.Context) ([]usecase.ExternalTeam, error) {
	return []usecase.ExternalTeam{
		team("ARI", "Cardinals", "Arizona", "ARZ"),
		team("ATL", "Falcons", "Atlanta"),
		team("BAL", "Ravens", "Baltimore"),
		team("BUF", "Bills", "Buffalo"),
		team("CAR", "Panthers", "Carolina"),
		team("CHI", "Bears", "Chicago"),
		team("CIN", "Bengals", "Cincinnati"),
		team("CLE", "Browns", "Cleveland"),
		team("DAL", "Cowboys", "Dallas"),
		team("DEN", "Broncos", "Denver"),
		team("DET", "Lions", "Detroit"),
		team("GB", "Packers", "Green Bay", "GNB"),
		team("HOU", "Texans", "Houston"),
		team("IND", "Colts", "Indianapolis"),
		team("JAX", "Jaguars", "Jacksonville", "JAC"),
		team("KC", "Chiefs", "Kansas City"),
		team("LAC", "Chargers", "Los Angeles", "SD"),
		team("LAR", "Rams", "Los Angeles", "LA", "STL"),
		team("LV", "Raiders", "Las Vegas", "OAK"),
		team("MIA", "Dolphins", "Miami"),
		team("MIN", "Vikings", "Minnesota"),
		team("NE", "Patriots", "New England", "NWE"),
		team("NO", "Saints", "New Orleans", "NOR"),
		team("NYG", "Giants", "New York"),
		team("NYJ", "Jets", "New York"),
		team("PHI", "Eagles", "Philadelphia"),
		team("PIT", "Steelers", "Pittsburgh"),
		team("SEA", "Seahawks", "Seattle"),
		team("SF", "49ers", "San Francisco", "SFO"),
		team("TB", "Buccaneers", "Tampa Bay"),
		team("TEN", "Titans", "Tennessee"),
		team("WAS", "Commanders", "Washington", "WSH"),
	}, nil
}

// WeekSchedule is empty on purpose: the static provider has no fixture data,
// so imports against it create nothing.
func (p *Provider) WeekSchedule(_ context.Context, _ int, _ int, _ week.Segment) ([]usecase.ExternalGame, error) {
	return nil, nil
}

// LiveDetail always reports the event as unknown. The negative cache in the
// live service keeps repeat lookups quiet.
func (p *Provider) LiveDetail(_ context.Context, eventID string) (usecase.LiveSnapshot, error) {
	return usecase.LiveSnapshot{}, fmt.Errorf("%w: local provider has no live data for event_id=%s", usecase.ErrLiveEventNotFound, eventID)
}

func (p *Provider) WeekScoreboard(_ context.Context, _ int, _ int, _ week.Segment) ([]usecase.ExternalScoreboardEvent, error) {
	return nil, nil
}

func team(abbr, name, location string, alternates ...string) usecase.ExternalTeam {
	t := usecase.ExternalTeam{
		Abbr:     abbr,
		Name:     name,
		Location: location,
		Slug:     strings.ToLower(abbr),
		LogoPath: "/static/logos/" + abbr + ".svg",
	}
	if len(alternates) > 0 {
		t.AltAbbrs = alternates
	}
	return t
}
