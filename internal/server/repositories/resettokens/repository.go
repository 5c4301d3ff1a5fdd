// Package resettokens declares the repository contract for password reset
// tokens and its PostgreSQL implementation.
package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/server/models"
)

// Repository defines operations for issuing, looking up and revoking
// password reset tokens. A user holds at most one token.
type Repository interface {
	// Create stores the token, replacing any token the user already holds.
	Create(ctx context.Context, token *models.PasswordResetToken) error

	// FindByToken returns the row for the opaque token value, or
	// common.ErrorNotFound. Expiry is not checked here.
	FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)

	// Delete removes a token by value. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes every token of the user.
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired removes tokens whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
