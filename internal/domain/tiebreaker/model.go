package tiebreaker

import (
	"errors"
	"fmt"
)

// ErrDuplicateGuess is returned by repositories when another user already
// holds the same guess for the same week. Guesses are unique per week so the
// winner tie-break always resolves to a single person.
var ErrDuplicateGuess = errors.New("tie-breaker guess already taken for this week")

// TieBreaker is a user's guess at the combined final score of a week's last
// game. (UserID, WeekID) and (WeekID, GuessPoints) are both unique.
type TieBreaker struct {
	ID          int64
	UserID      int64
	WeekID      int64
	GuessPoints int
}

func (t TieBreaker) Validate() error {
	if t.UserID == 0 {
		return fmt.Errorf("tie-breaker user id is required")
	}
	if t.WeekID == 0 {
		return fmt.Errorf("tie-breaker week id is required")
	}
	if t.GuessPoints < 0 {
		return fmt.Errorf("tie-breaker guess must not be negative, got %d", t.GuessPoints)
	}
	return nil
}
