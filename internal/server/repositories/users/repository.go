// Package users declares and implements persistence of user accounts.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/server/models"
)

// Repository stores user accounts. Lookups return common.ErrorNotFound
// when no row matches.
type Repository interface {
	// Create inserts an unverified user and fills in its ID and timestamps.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail finds a user by the already normalized email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateLastLogin stamps a successful sign-in.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// ConsumeVerificationToken marks the account owning an unexpired token
	// as verified and clears the token fields.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*models.User, error)

	// SetVerificationToken replaces the verification token and its expiry.
	SetVerificationToken(ctx context.Context, userID string, token string, expiresAt time.Time, now time.Time) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID string, passwordHash string, now time.Time) error
}
