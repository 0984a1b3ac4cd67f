package model

import "time"

// Principal is the data stored inside the cookie session for an
// authenticated client.
type Principal struct {
	UserID  string
	Email   string
	LoginAt time.Time
}

// Session is the persisted record of one login. ID is the session token
// that also appears as the client's cookie value.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
