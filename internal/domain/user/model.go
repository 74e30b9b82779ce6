package user

import "fmt"

// User is a pool member. PublicID is the opaque identifier handed to clients;
// the numeric ID stays internal to storage.
type User struct {
	ID          int64
	PublicID    string
	Username    string
	DisplayName string
	IsAdmin     bool
}

func (u User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.DisplayName == "" {
		return fmt.Errorf("display name is required")
	}
	return nil
}

// Name returns the label shown on leaderboards and lunch summaries.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Principal is the authenticated caller attached to a request after token
// verification.
type Principal struct {
	UserID   int64
	Username string
	IsAdmin  bool
}
