package admin

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
	"github.com/dmitrijs2005/energyaudit/internal/server/notify"
	"github.com/dmitrijs2005/energyaudit/internal/server/repositories/repomanager"
)

var openDB = repomanager.Open

// Main loads the server configuration, connects to the database and runs
// the authctl command in args.
func Main(ctx context.Context, cfg *config.Config, args []string) error {
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	cli, err := newCLI(ctx, db, repomanager.NewPostgresRepositoryManager(), cfg, logger)
	if err != nil {
		return err
	}
	return cli.Run(ctx, args)
}

func newCLI(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) (*CLI, error) {
	mailer, err := notify.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	accounts := server.NewAccounts(db, rm, mailer, cfg, logger)

	migrate := func(ctx context.Context) error { return rm.RunMigrations(ctx, db) }
	return NewCLI(os.Stdout, migrate, accounts.Sweeper("", logger), accounts.Resets), nil
}
