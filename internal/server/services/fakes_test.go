package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/energyaudit/internal/common"
	"github.com/dmitrijs2005/energyaudit/internal/dbx"
	"github.com/dmitrijs2005/energyaudit/internal/server/auth"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
	"github.com/dmitrijs2005/energyaudit/internal/server/models"
	"github.com/dmitrijs2005/energyaudit/internal/server/notify"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newTxDB returns a real database that only serves BEGIN/COMMIT, for flows
// that open many transactions against the in-memory store.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HashCost = bcrypt.MinCost
	return cfg
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	verifications []notify.Message
	resets        []notify.Message
	err           error
}

func (n *recordingNotifier) SendVerificationEmail(ctx context.Context, msg notify.Message) error {
	if n.err != nil {
		return n.err
	}
	n.verifications = append(n.verifications, msg)
	return nil
}

func (n *recordingNotifier) SendPasswordResetEmail(ctx context.Context, msg notify.Message) error {
	if n.err != nil {
		return n.err
	}
	n.resets = append(n.resets, msg)
	return nil
}

type failingHasher struct{ PasswordHasher }

func (failingHasher) Hash(string) (string, error) { return "", errBoom{} }

type failingIssuer struct{}

func (failingIssuer) IssueSessionToken(string, string, string) (string, error) { return "", errBoom{} }
func (failingIssuer) IssueRefreshToken(string, string) (string, error)       { return "", errBoom{} }

// --- in-memory store behind the repository interfaces ---

type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	sessions map[string]*models.Session
	resets   map[string]*models.PasswordResetToken
	fail     map[string]error
	calls    []string
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		sessions: map[string]*models.Session{},
		resets:   map[string]*models.PasswordResetToken{},
		fail:     map[string]error{},
	}
}

func (s *memStore) enter(op string) error {
	s.calls = append(s.calls, op)
	return s.fail[op]
}

func (s *memStore) userByEmail(email string) *models.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// addUser inserts a user with a real bcrypt hash of password.
func (s *memStore) addUser(t *testing.T, email, password string, verified bool) *models.User {
	t.Helper()
	hash, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  hash,
		FullName:      "Test User",
		Role:          models.RoleUser,
		EmailVerified: verified,
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return u
}

func (s *memStore) sessionsOf(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, x := range s.sessions {
		if x.UserID == userID {
			n++
		}
	}
	return n
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.Create"); err != nil {
		return nil, err
	}
	cp := *user
	cp.ID = uuid.NewString()
	r.s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.GetByEmail"); err != nil {
		return nil, err
	}
	u := r.s.userByEmail(email)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.UpdateLastLogin"); err != nil {
		return err
	}
	if u, ok := r.s.users[userID]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (r memUsers) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.ConsumeVerificationToken"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.VerificationToken != nil && *u.VerificationToken == token &&
			u.VerificationExpiresAt != nil && u.VerificationExpiresAt.After(now) {
			u.EmailVerified = true
			u.VerificationToken, u.VerificationExpiresAt = nil, nil
			return &models.User{ID: u.ID, Email: u.Email}, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) SetVerificationToken(ctx context.Context, userID string, token string, expiresAt time.Time, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.SetVerificationToken"); err != nil {
		return err
	}
	if u, ok := r.s.users[userID]; ok {
		u.VerificationToken, u.VerificationExpiresAt, u.UpdatedAt = &token, &expiresAt, now
	}
	return nil
}

func (r memUsers) UpdatePassword(ctx context.Context, userID string, passwordHash string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("users.UpdatePassword"); err != nil {
		return err
	}
	if u, ok := r.s.users[userID]; ok {
		u.PasswordHash, u.UpdatedAt = passwordHash, now
	}
	return nil
}

type memSessions struct{ s *memStore }

func (r memSessions) Create(ctx context.Context, session *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("sessions.Create"); err != nil {
		return err
	}
	cp := *session
	r.s.sessions[cp.ID] = &cp
	return nil
}

func (r memSessions) Find(ctx context.Context, id string) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("sessions.Find"); err != nil {
		return nil, err
	}
	x, ok := r.s.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *x
	return &cp, nil
}

func (r memSessions) UpdateToken(ctx context.Context, id string, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("sessions.UpdateToken"); err != nil {
		return err
	}
	if x, ok := r.s.sessions[id]; ok {
		x.Token, x.ExpiresAt = token, expiresAt
	}
	return nil
}

func (r memSessions) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("sessions.Delete"); err != nil {
		return err
	}
	delete(r.s.sessions, id)
	return nil
}

func (r memSessions) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("sessions.DeleteByUser"); err != nil {
		return 0, err
	}
	var n int64
	for id, x := range r.s.sessions {
		if x.UserID == userID {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r memSessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("sessions.DeleteExpired"); err != nil {
		return 0, err
	}
	var n int64
	for id, x := range r.s.sessions {
		if !x.ExpiresAt.After(now) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}

type memResets struct{ s *memStore }

func (r memResets) Create(ctx context.Context, token *models.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("resets.Create"); err != nil {
		return err
	}
	for k, x := range r.s.resets {
		if x.UserID == token.UserID {
			delete(r.s.resets, k)
		}
	}
	cp := *token
	cp.ID = uuid.NewString()
	r.s.resets[cp.Token] = &cp
	return nil
}

func (r memResets) FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("resets.FindByToken"); err != nil {
		return nil, err
	}
	x, ok := r.s.resets[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *x
	return &cp, nil
}

func (r memResets) Delete(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("resets.Delete"); err != nil {
		return err
	}
	delete(r.s.resets, token)
	return nil
}

func (r memResets) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("resets.DeleteByUser"); err != nil {
		return err
	}
	for k, x := range r.s.resets {
		if x.UserID == userID {
			delete(r.s.resets, k)
		}
	}
	return nil
}

func (r memResets) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("resets.DeleteExpired"); err != nil {
		return 0, err
	}
	var n int64
	for k, x := range r.s.resets {
		if !x.ExpiresAt.After(now) {
			delete(r.s.resets, k)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository              { return memUsers{m.s} }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessions.Repository        { return memSessions{m.s} }
func (m *fakeRepoManager) ResetTokens(db dbx.DBTX) resettokens.Repository { return memResets{m.s} }

func sessionFixture(id, userID string, expires time.Time) *models.Session {
	return &models.Session{ID: id, UserID: userID, Token: "old", ExpiresAt: expires}
}
