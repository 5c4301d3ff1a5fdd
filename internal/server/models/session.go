package models

import "time"

// Session binds a bearer token to a user until ExpiresAt.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the session is still valid at t.
func (s *Session) ActiveAt(t time.Time) bool {
	return s.ExpiresAt.After(t)
}
