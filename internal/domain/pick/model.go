package pick

import "fmt"

// Pick is one user's chosen winner for one game. (UserID, GameID) is unique;
// the chosen team must be a participant of the game, which the pick service
// validates against the week's games before persisting.
type Pick struct {
	ID           int64
	UserID       int64
	GameID       int64
	ChosenTeamID int64
}

func (p Pick) Validate() error {
	if p.UserID == 0 {
		return fmt.Errorf("pick user id is required")
	}
	if p.GameID == 0 {
		return fmt.Errorf("pick game id is required")
	}
	if p.ChosenTeamID == 0 {
		return fmt.Errorf("pick chosen team id is required")
	}
	return nil
}
