package admin

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
	"github.com/dmitrijs2005/energyaudit/internal/server/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeSweeper struct {
	res   jobs.Result
	err   error
	calls int
}

func (f *fakeSweeper) Sweep(context.Context) (jobs.Result, error) {
	f.calls++
	return f.res, f.err
}

type fakeResetter struct {
	valid     bool
	validErr  error
	resetErr  error
	gotToken  string
	gotPasswd string
}

func (f *fakeResetter) ValidateResetToken(_ context.Context, token string) (bool, error) {
	f.gotToken = token
	return f.valid, f.validErr
}

func (f *fakeResetter) ResetPassword(_ context.Context, token, pw string) error {
	f.gotToken = token
	f.gotPasswd = pw
	return f.resetErr
}

func stubNewPassword(t *testing.T, pw string, err error) {
	t.Helper()
	old := getNewPassword
	t.Cleanup(func() { getNewPassword = old })
	getNewPassword = func(io.Writer) (string, error) { return pw, err }
}

func newTestCLI(migrateErr error, sw *fakeSweeper, rs *fakeResetter) (*CLI, *bytes.Buffer, *int) {
	var out bytes.Buffer
	migrated := 0
	migrate := func(context.Context) error {
		migrated++
		return migrateErr
	}
	return NewCLI(&out, migrate, sw, rs), &out, &migrated
}

func TestRun_NoArgs(t *testing.T) {
	cli, out, _ := newTestCLI(nil, &fakeSweeper{}, &fakeResetter{})
	err := cli.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "usage: authctl")
}

func TestRun_UnknownCommand(t *testing.T) {
	cli, out, _ := newTestCLI(nil, &fakeSweeper{}, &fakeResetter{})
	err := cli.Run(context.Background(), []string{"frobnicate"})
	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), `unknown command "frobnicate"`)
}

func TestRun_Help(t *testing.T) {
	cli, out, _ := newTestCLI(nil, &fakeSweeper{}, &fakeResetter{})
	require.NoError(t, cli.Run(context.Background(), []string{"help"}))
	assert.Contains(t, out.String(), "reset-password -token T")
}

func TestRun_Migrate(t *testing.T) {
	cli, out, migrated := newTestCLI(nil, &fakeSweeper{}, &fakeResetter{})
	require.NoError(t, cli.Run(context.Background(), []string{"migrate", "-d", "postgres://x"}))
	assert.Equal(t, 1, *migrated)
	assert.Contains(t, out.String(), "migrations applied")
}

func TestRun_MigrateError(t *testing.T) {
	cli, _, _ := newTestCLI(errBoom{}, &fakeSweeper{}, &fakeResetter{})
	err := cli.Run(context.Background(), []string{"migrate"})
	require.ErrorIs(t, err, errBoom{})
	assert.Contains(t, err.Error(), "migrate:")
}

func TestRun_Cleanup(t *testing.T) {
	sw := &fakeSweeper{res: jobs.Result{ResetTokens: 3, Sessions: 7}}
	cli, out, _ := newTestCLI(nil, sw, &fakeResetter{})
	require.NoError(t, cli.Run(context.Background(), []string{"cleanup"}))
	assert.Equal(t, 1, sw.calls)
	assert.Contains(t, out.String(), "removed 3 reset tokens, 7 sessions")
}

func TestRun_CleanupError(t *testing.T) {
	sw := &fakeSweeper{err: errBoom{}}
	cli, _, _ := newTestCLI(nil, sw, &fakeResetter{})
	require.ErrorIs(t, cli.Run(context.Background(), []string{"cleanup"}), errBoom{})
}

func TestRun_ResetPassword(t *testing.T) {
	stubNewPassword(t, "brand-new-pass", nil)
	rs := &fakeResetter{valid: true}
	cli, out, _ := newTestCLI(nil, &fakeSweeper{}, rs)

	err := cli.Run(context.Background(), []string{"reset-password", "-d", "dsn", "-token", "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "abc123", rs.gotToken)
	assert.Equal(t, "brand-new-pass", rs.gotPasswd)
	assert.Contains(t, out.String(), "password changed")
}

func TestRun_ResetPassword_MissingToken(t *testing.T) {
	cli, _, _ := newTestCLI(nil, &fakeSweeper{}, &fakeResetter{valid: true})
	err := cli.Run(context.Background(), []string{"reset-password"})
	require.ErrorIs(t, err, ErrUsage)
}

func TestRun_ResetPassword_InvalidToken(t *testing.T) {
	stubNewPassword(t, "never-asked", nil)
	rs := &fakeResetter{valid: false}
	cli, _, _ := newTestCLI(nil, &fakeSweeper{}, rs)

	err := cli.Run(context.Background(), []string{"reset-password", "-token", "stale"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired")
	assert.Empty(t, rs.gotPasswd)
}

func TestRun_ResetPassword_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rs       *fakeResetter
		promptEr error
	}{
		{name: "validate fails", rs: &fakeResetter{validErr: errBoom{}}},
		{name: "prompt fails", rs: &fakeResetter{valid: true}, promptEr: errBoom{}},
		{name: "reset fails", rs: &fakeResetter{valid: true, resetErr: errBoom{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubNewPassword(t, "brand-new-pass", tt.promptEr)
			cli, _, _ := newTestCLI(nil, &fakeSweeper{}, tt.rs)
			err := cli.Run(context.Background(), []string{"reset-password", "-token", "t"})
			require.ErrorIs(t, err, errBoom{})
		})
	}
}

func TestMain_OpenDBError(t *testing.T) {
	old := openDB
	defer func() { openDB = old }()
	openDB = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("no db") }

	cfg := &config.Config{LogLevel: "error"}
	err := Main(context.Background(), cfg, []string{"migrate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestMain_HelpClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	old := openDB
	defer func() { openDB = old }()
	openDB = func(context.Context, string) (*sql.DB, error) { return db, nil }

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MailMode = config.MailModeLog
	cfg.LogLevel = "error"

	require.NoError(t, Main(context.Background(), cfg, []string{"help"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMain_UnknownMailMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	old := openDB
	defer func() { openDB = old }()
	openDB = func(context.Context, string) (*sql.DB, error) { return db, nil }

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MailMode = "pigeon"

	err = Main(context.Background(), cfg, []string{"cleanup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailer init error")
	require.NoError(t, mock.ExpectationsWereMet())
}
