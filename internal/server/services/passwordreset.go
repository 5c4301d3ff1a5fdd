package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"github.com/dmitrijs2005/energyaudit/internal/dbx"
	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
	"github.com/dmitrijs2005/energyaudit/internal/server/models"
	"github.com/dmitrijs2005/energyaudit/internal/server/notify"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/repomanager"
)

// PasswordResetManager issues and consumes password reset tokens. Requests
// never reveal whether an account exists, and a successful reset signs the
// user out everywhere.
type PasswordResetManager struct {
	base
	hasher   PasswordHasher
	notifier Notifier
	tokenTTL time.Duration
}

func NewPasswordResetManager(db *sql.DB, rm repomanager.RepositoryManager, hasher PasswordHasher, notifier Notifier,
	cfg *config.Config, log logging.Logger, opts ...Option) *PasswordResetManager {
	return &PasswordResetManager{
		base:     newBase(db, rm, log, opts),
		hasher:   hasher,
		notifier: notifier,
		tokenTTL: cfg.ResetTokenTTL,
	}
}

// RequestReset emails a reset link to a verified account. Unknown and
// unverified addresses succeed silently with no side effects.
func (m *PasswordResetManager) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	userID, err := dbx.WithTxValue(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		user, err := m.repomanager.Users(tx).GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				m.log.Debug(ctx, "reset requested for unknown email")
				return "", nil
			}
			return "", internal("error searching user", err)
		}
		if !user.EmailVerified {
			m.log.Debug(ctx, "reset requested for unverified email", "user_id", user.ID)
			return "", nil
		}

		repo := m.repomanager.ResetTokens(tx)

		if err := repo.DeleteByUser(ctx, user.ID); err != nil {
			return "", internal("error deleting reset tokens", err)
		}

		token, err := m.newToken()
		if err != nil {
			return "", internal("error generating reset token", err)
		}
		rt := &models.PasswordResetToken{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: m.now().Add(m.tokenTTL),
		}
		if err := repo.Create(ctx, rt); err != nil {
			return "", internal("error creating reset token", err)
		}

		msg := notify.Message{To: user.Email, Name: user.FullName, Token: token}
		if err := m.notifier.SendPasswordResetEmail(ctx, msg); err != nil {
			return "", internal("error sending reset email", err)
		}
		return user.ID, nil
	})
	if err != nil {
		return internal("error requesting password reset", err)
	}

	if userID != "" {
		m.log.Info(ctx, "password reset requested", "user_id", userID)
	}
	return nil
}

// ResetPassword consumes an unexpired token, replaces the password hash and
// deletes every session of the user.
func (m *PasswordResetManager) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	var userID string
	var revoked int64
	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		resetRepo := m.repomanager.ResetTokens(tx)

		now := m.now()
		rt, err := resetRepo.FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return internal("error searching reset token", err)
		}
		if !rt.ActiveAt(now) {
			return ErrInvalidOrExpiredToken
		}

		hash, err := m.hasher.Hash(newPassword)
		if err != nil {
			return internal("error hashing password", err)
		}
		if err := m.repomanager.Users(tx).UpdatePassword(ctx, rt.UserID, hash, now); err != nil {
			return internal("error updating password", err)
		}
		if err := resetRepo.Delete(ctx, rt.Token); err != nil {
			return internal("error deleting reset token", err)
		}
		n, err := m.repomanager.Sessions(tx).DeleteByUser(ctx, rt.UserID)
		if err != nil {
			return internal("error deleting sessions", err)
		}

		userID, revoked = rt.UserID, n
		return nil
	})
	if err != nil {
		return internal("error resetting password", err)
	}

	m.log.Info(ctx, "password reset", "user_id", userID, "sessions_revoked", revoked)
	return nil
}

// ValidateResetToken reports whether token exists and has not expired.
func (m *PasswordResetManager) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	rt, err := m.repomanager.ResetTokens(m.db).FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, internal("error searching reset token", err)
	}
	return rt.ActiveAt(m.now()), nil
}

// CleanupExpiredTokens deletes every reset token whose expiry has passed.
func (m *PasswordResetManager) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := m.repomanager.ResetTokens(m.db).DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, internal("error deleting expired reset tokens", err)
	}
	if n > 0 {
		m.log.Info(ctx, "expired reset tokens removed", "count", n)
	}
	return n, nil
}
