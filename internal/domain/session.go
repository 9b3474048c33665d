package domain

import "time"

// UserSession is one refresh-token session. At most one session per user is
// ACTIVE at any time; creating a new session deactivates all prior ones in
// the same database transaction.
type UserSession struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	RefreshToken string    `json:"-"`
	DeviceInfo   string    `json:"device_info"`
	IPAddress    string    `json:"ip_address"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Active reports whether the session can still authenticate a refresh at the
// given instant.
func (s *UserSession) Active(now time.Time) bool {
	return s.Status == StatusActive && s.ExpiresAt.After(now)
}

// Credentials is the result of creating or rotating a session: a signed
// access token plus the refresh token that replaces any prior one.
type Credentials struct {
	AccessToken        string    `json:"access_token"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}
