// Package server wires the account service together: configuration,
// database pool, migrations, mailer, the three account managers, the gRPC
// endpoint and the cleanup sweeper. It also owns shutdown on signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server/auth"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
	"github.com/dmitrijs2005/energyaudit/internal/server/jobs"
	"github.com/dmitrijs2005/energyaudit/internal/server/notify"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/energyaudit/internal/server/services"

	gs "github.com/dmitrijs2005/energyaudit/internal/server/grpc"
)

// Seams for tests.
var (
	openDB         = repomanager.Open
	newRepoManager = repomanager.NewPostgresRepositoryManager
	newNotifier    = func(ctx context.Context, c *config.Config, l logging.Logger) (services.Notifier, error) {
		return notify.New(ctx, c, l)
	}
)

// Accounts bundles the account managers built over one pool.
type Accounts struct {
	Sessions *services.SessionManager
	SignUp   *services.SignUpManager
	Resets   *services.PasswordResetManager
	Issuer   *auth.TokenIssuer
}

// NewAccounts constructs the managers with the hasher and token issuer
// configured by c.
func NewAccounts(db *sql.DB, rm repomanager.RepositoryManager, n services.Notifier, c *config.Config, l logging.Logger) *Accounts {
	hasher := auth.NewBcryptHasher(c.HashCost)
	issuer := auth.NewTokenIssuer(c.SecretKey, c.TokenTTL)

	return &Accounts{
		Sessions: services.NewSessionManager(db, rm, hasher, issuer, c, l.With("module", "sessions")),
		SignUp:   services.NewSignUpManager(db, rm, hasher, n, c, l.With("module", "signup")),
		Resets:   services.NewPasswordResetManager(db, rm, hasher, n, c, l.With("module", "password_reset")),
		Issuer:   issuer,
	}
}

// Sweeper returns a cleanup sweeper over the managers on the given schedule.
func (a *Accounts) Sweeper(spec string, l logging.Logger) *jobs.Sweeper {
	return jobs.NewSweeper(spec, a.Resets, a.Sessions, l)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts *Accounts
}

// NewApp opens the database, applies migrations and builds the managers.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	n, err := newNotifier(ctx, c, logger.With("module", "mailer"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	if c.UsesDefaultSecret() {
		logger.Warn(ctx, "tokens are signed with the default secret key; set ENERGYAUDIT_SECRET_KEY")
	}

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		accounts: NewAccounts(db, rm, n, c, logger),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	a := app.accounts
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, a.Sessions, a.SignUp, a.Resets, a.Issuer)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a signal arrives, then stops the
// sweeper and closes the pool.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	sweeper := app.accounts.Sweeper(app.config.CleanupSchedule, app.logger)
	if err := sweeper.Start(); err != nil {
		return err
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	<-sweeper.Stop().Done()
	app.logger.Info(ctx, "Stopped")
	return app.db.Close()
}
