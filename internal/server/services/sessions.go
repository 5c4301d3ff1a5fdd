package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"github.com/dmitrijs2005/energyaudit/internal/dbx"
	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
	"github.com/dmitrijs2005/energyaudit/internal/server/models"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// dummyPassword is hashed once and compared against when the email is
// unknown, so a miss costs as much as a wrong password.
const dummyPassword = "energyaudit-timing-equalizer"

// SessionManager signs users in and out and maintains their server-side
// sessions.
type SessionManager struct {
	base
	hasher   PasswordHasher
	issuer   TokenIssuer
	tokenTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewSessionManager(db *sql.DB, rm repomanager.RepositoryManager, hasher PasswordHasher, issuer TokenIssuer,
	cfg *config.Config, log logging.Logger, opts ...Option) *SessionManager {
	return &SessionManager{
		base:     newBase(db, rm, log, opts),
		hasher:   hasher,
		issuer:   issuer,
		tokenTTL: cfg.TokenTTL,
	}
}

// SignIn checks the credentials and opens a new session. An unknown email
// and a wrong password both yield ErrInvalidCredentials; ErrEmailNotVerified
// is only reported once the password has matched.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) (*models.SignInResult, error) {
	email = normalizeEmail(email)

	res, err := dbx.WithTxValue(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.SignInResult, error) {
		usersRepo := m.repomanager.Users(tx)

		user, err := usersRepo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				m.burnCompare(password)
				return nil, ErrInvalidCredentials
			}
			return nil, internal("error searching user", err)
		}

		ok, err := m.hasher.Compare(user.PasswordHash, password)
		if err != nil {
			return nil, internal("error comparing password", err)
		}
		if !ok {
			return nil, ErrInvalidCredentials
		}
		if !user.EmailVerified {
			return nil, ErrEmailNotVerified
		}

		token, err := m.issuer.IssueSessionToken(user.ID, user.Email, user.Role)
		if err != nil {
			return nil, internal("error issuing token", err)
		}

		now := m.now()
		session := &models.Session{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: now.Add(m.tokenTTL),
		}
		if err := m.repomanager.Sessions(tx).Create(ctx, session); err != nil {
			return nil, internal("error creating session", err)
		}
		if err := usersRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return nil, internal("error updating last login", err)
		}

		user.LastLoginAt = &now
		return &models.SignInResult{User: user.Summary(), Token: token, SessionID: session.ID}, nil
	})
	if err != nil {
		return nil, internal("error signing in", err)
	}

	m.log.Info(ctx, "signed in", "user_id", res.User.ID, "session_id", res.SessionID)
	return res, nil
}

// SignOut deletes the session. Unknown or malformed ids are not an error.
func (m *SessionManager) SignOut(ctx context.Context, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil
	}
	if err := m.repomanager.Sessions(m.db).Delete(ctx, sessionID); err != nil {
		return internal("error deleting session", err)
	}
	m.log.Info(ctx, "signed out", "session_id", sessionID)
	return nil
}

// SignOutOwned deletes the session only if it belongs to userID. A session
// that is missing or owned by someone else is left untouched and the call
// still succeeds.
func (m *SessionManager) SignOutOwned(ctx context.Context, userID, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil
	}

	deleted := false
	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.repomanager.Sessions(tx)

		s, err := repo.Find(ctx, sessionID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return internal("error searching session", err)
		}
		if s.UserID != userID {
			return nil
		}
		if err := repo.Delete(ctx, sessionID); err != nil {
			return internal("error deleting session", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return internal("error signing out", err)
	}

	if deleted {
		m.log.Info(ctx, "signed out", "user_id", userID, "session_id", sessionID)
	} else {
		m.log.Debug(ctx, "sign out skipped", "user_id", userID, "session_id", sessionID)
	}
	return nil
}

// ValidateSession reports whether the session exists and has not expired.
func (m *SessionManager) ValidateSession(ctx context.Context, sessionID string) (bool, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return false, nil
	}
	s, err := m.repomanager.Sessions(m.db).Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, internal("error searching session", err)
	}
	return s.ActiveAt(m.now()), nil
}

// RefreshSession issues a new {userId, sessionId} token for an existing
// session and pushes its expiry to now+TTL. Existence is the only
// requirement, so an expired session can still be refreshed.
func (m *SessionManager) RefreshSession(ctx context.Context, sessionID string) (string, error) {
	return m.refresh(ctx, "", sessionID)
}

// RefreshOwnedSession is RefreshSession for a session that must belong to
// userID; a session of another user is ErrInvalidSession.
func (m *SessionManager) RefreshOwnedSession(ctx context.Context, userID, sessionID string) (string, error) {
	if userID == "" {
		return "", ErrInvalidSession
	}
	return m.refresh(ctx, userID, sessionID)
}

// refresh rotates the session token. An empty owner skips the ownership
// check.
func (m *SessionManager) refresh(ctx context.Context, owner, sessionID string) (string, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", ErrInvalidSession
	}

	token, err := dbx.WithTxValue(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		repo := m.repomanager.Sessions(tx)

		s, err := repo.Find(ctx, sessionID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return "", ErrInvalidSession
			}
			return "", internal("error searching session", err)
		}
		if owner != "" && s.UserID != owner {
			return "", ErrInvalidSession
		}

		token, err := m.issuer.IssueRefreshToken(s.UserID, s.ID)
		if err != nil {
			return "", internal("error issuing token", err)
		}
		if err := repo.UpdateToken(ctx, s.ID, token, m.now().Add(m.tokenTTL)); err != nil {
			return "", internal("error updating session", err)
		}
		return token, nil
	})
	if err != nil {
		if owner != "" && errors.Is(err, ErrInvalidSession) {
			m.log.Warn(ctx, "refresh of foreign or unknown session rejected", "user_id", owner, "session_id", sessionID)
		}
		return "", internal("error refreshing session", err)
	}

	m.log.Debug(ctx, "session refreshed", "session_id", sessionID)
	return token, nil
}

// CleanupExpiredSessions deletes every session whose expiry has passed.
func (m *SessionManager) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := m.repomanager.Sessions(m.db).DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, internal("error deleting expired sessions", err)
	}
	if n > 0 {
		m.log.Info(ctx, "expired sessions removed", "count", n)
	}
	return n, nil
}

func (m *SessionManager) burnCompare(password string) {
	m.dummyOnce.Do(func() {
		m.dummyHash, _ = m.hasher.Hash(dummyPassword)
	})
	if m.dummyHash != "" {
		_, _ = m.hasher.Compare(m.dummyHash, password)
	}
}
