package models

import "time"

// PasswordResetToken is a single-use grant to change a user's password.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the token can still be consumed at t.
func (t *PasswordResetToken) ActiveAt(now time.Time) bool {
	return t.ExpiresAt.After(now)
}
