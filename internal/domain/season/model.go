package season

import "fmt"

// Season is one NFL year. At most one season is marked active; the active
// season scopes leaderboard computation.
type Season struct {
	ID       int64
	Year     int
	IsActive bool
}

func (s Season) Validate() error {
	if s.Year < 1920 || s.Year > 2200 {
		return fmt.Errorf("season year %d is out of range", s.Year)
	}
	return nil
}
