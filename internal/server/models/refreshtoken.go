package models

import "time"

// RefreshToken is the stored half of a token pair.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.Expires.After(now)
}
