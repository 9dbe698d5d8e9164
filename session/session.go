package session

import "time"

// Session is the persisted credential state. Empty strings and a zero ExpiresAt mean "absent".
// AccessToken and RefreshToken are either both set or both empty.
type Session struct {
	AccessToken  string
	RefreshToken string
	Username     string
	DisplayName  string
	ExpiresAt    time.Time
}

// IsLoggedIn is defined by the presence of an access token
func (s Session) IsLoggedIn() bool {
	return s.AccessToken != ""
}

// Expired reports whether the recorded expiry has passed. A session without expiry never expires locally.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Grant is everything a successful login or refresh writes in one atomic replace
type Grant struct {
	AccessToken  string
	RefreshToken string
	Username     string
	DisplayName  string
	ExpiresAt    time.Time
}
