// Package models defines server-side data models persisted in the database
// and the values the account managers return to callers.
package models

import "time"

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. Email is stored lower-cased and trimmed.
type User struct {
	ID                    string
	Email                 string
	PasswordHash          string
	FullName              string
	Phone                 *string
	Address               *string
	Role                  string
	EmailVerified         bool
	VerificationToken     *string
	VerificationExpiresAt *time.Time
	LastLoginAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Summary returns the public part of the account.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

// UserSummary is the account view handed back after sign-in.
type UserSummary struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}
