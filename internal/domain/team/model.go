package team

import (
	"fmt"
	"strings"
)

// Team is an NFL franchise. Identity is the canonical abbreviation;
// AltAbbrs carries legacy or provider-specific codes that resolve to
// the same franchise during schedule imports.
type Team struct {
	ID       int64
	Abbr     string
	Name     string
	Location string
	Slug     string
	AltAbbrs []string
	LogoPath string
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Abbr) == "" {
		return fmt.Errorf("team abbr is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}

// DisplayName is the full market name, e.g. "Kansas City Chiefs".
func (t Team) DisplayName() string {
	location := strings.TrimSpace(t.Location)
	if location == "" {
		return t.Name
	}
	return location + " " + t.Name
}

// MatchesAbbr reports whether value equals the canonical abbreviation or
// any registered alternate, ignoring case.
func (t Team) MatchesAbbr(value string) bool {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return false
	}
	if strings.ToUpper(t.Abbr) == value {
		return true
	}
	for _, alt := range t.AltAbbrs {
		if strings.ToUpper(strings.TrimSpace(alt)) == value {
			return true
		}
	}
	return false
}
