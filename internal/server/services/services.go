// Package services contains the account business logic: the session,
// sign-up and password reset managers. Every multi-statement operation runs
// in one database transaction through dbx.WithTx, and every returned error
// is an *Error from the closed taxonomy in errors.go.
package services

import (
	"context"
	"database/sql"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server/notify"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/repomanager"
)

// tokenBytes is the entropy of verification and reset tokens; they are hex
// encoded to twice this length.
const tokenBytes = 32

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// PasswordHasher stores and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	IssueSessionToken(userID, email, role string) (string, error)
	IssueRefreshToken(userID, sessionID string) (string, error)
}

// Notifier delivers account emails.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, msg notify.Message) error
	SendPasswordResetEmail(ctx context.Context, msg notify.Message) error
}

// Option customizes a manager.
type Option func(*base)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.nowFn = now }
}

// WithTokenGenerator replaces the random token source.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(b *base) { b.newToken = gen }
}

// base holds what every manager shares.
type base struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	nowFn       func() time.Time
	newToken    func() (string, error)
}

func newBase(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger, opts []Option) base {
	if log == nil {
		log = logging.Nop()
	}
	b := base{
		db:          db,
		repomanager: rm,
		log:         log,
		nowFn:       time.Now,
		newToken:    randomToken,
	}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// now is truncated to microseconds, the resolution of timestamptz.
func (b *base) now() time.Time {
	return b.nowFn().UTC().Truncate(time.Microsecond)
}

func randomToken() (string, error) {
	return common.MakeRandHexString(tokenBytes)
}

// normalizeEmail trims and lower-cases an address; emails are stored in that
// form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalidInput("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalidInput("email is malformed")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return invalidInput("password is required")
	}
	if len(password) > maxPasswordBytes {
		return invalidInput("password is longer than 72 bytes")
	}
	return nil
}
