package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"github.com/dmitrijs2005/energyaudit/internal/dbx"
	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
	"github.com/dmitrijs2005/energyaudit/internal/server/models"
	"github.com/dmitrijs2005/energyaudit/internal/server/notify"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/repomanager"
)

// SignUpManager registers accounts and confirms their email addresses.
type SignUpManager struct {
	base
	hasher   PasswordHasher
	notifier Notifier
	tokenTTL time.Duration
}

func NewSignUpManager(db *sql.DB, rm repomanager.RepositoryManager, hasher PasswordHasher, notifier Notifier,
	cfg *config.Config, log logging.Logger, opts ...Option) *SignUpManager {
	return &SignUpManager{
		base:     newBase(db, rm, log, opts),
		hasher:   hasher,
		notifier: notifier,
		tokenTTL: cfg.VerificationTokenTTL,
	}
}

// SignUp creates an unverified account and emails its verification token.
// The email is sent inside the transaction; a delivery failure undoes the
// registration.
func (m *SignUpManager) SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateSignUp(in); err != nil {
		return nil, err
	}

	res, err := dbx.WithTxValue(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.SignUpResult, error) {
		repo := m.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			return nil, ErrEmailAlreadyRegistered
		case !errors.Is(err, common.ErrorNotFound):
			return nil, internal("error searching user", err)
		}

		token, err := m.newToken()
		if err != nil {
			return nil, internal("error generating verification token", err)
		}
		hash, err := m.hasher.Hash(in.Password)
		if err != nil {
			return nil, internal("error hashing password", err)
		}

		expires := m.now().Add(m.tokenTTL)
		user, err := repo.Create(ctx, &models.User{
			Email:                 in.Email,
			PasswordHash:          hash,
			FullName:              in.FullName,
			Phone:                 in.Phone,
			Address:               in.Address,
			Role:                  models.RoleUser,
			VerificationToken:     &token,
			VerificationExpiresAt: &expires,
		})
		if err != nil {
			return nil, internal("error creating user", err)
		}

		msg := notify.Message{To: user.Email, Name: user.FullName, Token: token}
		if err := m.notifier.SendVerificationEmail(ctx, msg); err != nil {
			return nil, internal("error sending verification email", err)
		}

		return &models.SignUpResult{
			UserID:            user.ID,
			Email:             user.Email,
			FullName:          user.FullName,
			VerificationToken: token,
		}, nil
	})
	if err != nil {
		return nil, internal("error signing up", err)
	}

	m.log.Info(ctx, "signed up", "user_id", res.UserID)
	return res, nil
}

// VerifyEmail consumes a verification token and marks its account verified.
func (m *SignUpManager) VerifyEmail(ctx context.Context, token string) (*models.VerifiedEmail, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	res, err := dbx.WithTxValue(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.VerifiedEmail, error) {
		user, err := m.repomanager.Users(tx).ConsumeVerificationToken(ctx, token, m.now())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, ErrInvalidOrExpiredToken
			}
			return nil, internal("error verifying email", err)
		}
		return &models.VerifiedEmail{UserID: user.ID, Email: user.Email}, nil
	})
	if err != nil {
		return nil, internal("error verifying email", err)
	}

	m.log.Info(ctx, "email verified", "user_id", res.UserID)
	return res, nil
}

// ResendVerification replaces the verification token of an unverified
// account and emails it again.
func (m *SignUpManager) ResendVerification(ctx context.Context, email string) (*models.VerificationBundle, error) {
	email = normalizeEmail(email)

	res, err := dbx.WithTxValue(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.VerificationBundle, error) {
		repo := m.repomanager.Users(tx)

		user, err := repo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, internal("error searching user", err)
		}
		if user.EmailVerified {
			return nil, ErrEmailAlreadyVerified
		}

		token, err := m.newToken()
		if err != nil {
			return nil, internal("error generating verification token", err)
		}
		now := m.now()
		if err := repo.SetVerificationToken(ctx, user.ID, token, now.Add(m.tokenTTL), now); err != nil {
			return nil, internal("error updating verification token", err)
		}

		msg := notify.Message{To: user.Email, Name: user.FullName, Token: token}
		if err := m.notifier.SendVerificationEmail(ctx, msg); err != nil {
			return nil, internal("error sending verification email", err)
		}

		return &models.VerificationBundle{UserID: user.ID, Email: user.Email, VerificationToken: token}, nil
	})
	if err != nil {
		return nil, internal("error resending verification", err)
	}

	m.log.Info(ctx, "verification resent", "user_id", res.UserID)
	return res, nil
}

func validateSignUp(in models.SignUpInput) error {
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := validatePassword(in.Password); err != nil {
		return err
	}
	if in.FullName == "" {
		return invalidInput("full name is required")
	}
	return nil
}
