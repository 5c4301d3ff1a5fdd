// Package sessions declares and implements persistence of server-side
// sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/server/models"
)

// Repository stores sessions. Find returns common.ErrorNotFound when the
// session does not exist; deletes of missing rows are not errors.
type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)

	// UpdateToken swaps the token and expiry of an existing session.
	UpdateToken(ctx context.Context, id string, token string, expiresAt time.Time) error

	Delete(ctx context.Context, id string) error

	// DeleteByUser removes every session of the user and reports how many.
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes sessions whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
