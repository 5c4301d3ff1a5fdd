// Package jobs runs the periodic maintenance of the account store: removal
// of expired password reset tokens and sessions.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/robfig/cron/v3"
)

// sweepTimeout bounds a single scheduled sweep.
const sweepTimeout = time.Minute

type ResetTokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Result counts the rows removed by one sweep.
type Result struct {
	ResetTokens int64
	Sessions    int64
}

// Sweeper deletes expired reset tokens and sessions on a cron schedule.
type Sweeper struct {
	cron     *cron.Cron
	spec     string
	tokens   ResetTokenCleaner
	sessions SessionCleaner
	log      logging.Logger
}

// NewSweeper creates a sweeper for spec, a cron expression with a leading
// seconds field ("0 0 * * * *" is hourly).
func NewSweeper(spec string, tokens ResetTokenCleaner, sessions SessionCleaner, log logging.Logger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(cron.WithSeconds()),
		spec:     spec,
		tokens:   tokens,
		sessions: sessions,
		log:      log.With("module", "sweeper"),
	}
}

// Start schedules the sweep. An empty spec leaves the sweeper disabled.
func (s *Sweeper) Start() error {
	if s.spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.scheduled); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.spec, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule. The returned context is done once a sweep that
// is already running has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep removes expired reset tokens and sessions once. Both cleanups run
// even if the first fails.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	var res Result
	var errs []error

	if s.tokens != nil {
		n, err := s.tokens.CleanupExpiredTokens(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("reset tokens: %w", err))
		}
		res.ResetTokens = n
	}
	if s.sessions != nil {
		n, err := s.sessions.CleanupExpiredSessions(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("sessions: %w", err))
		}
		res.Sessions = n
	}

	return res, errors.Join(errs...)
}

func (s *Sweeper) scheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	res, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error(ctx, "sweep failed", "error", err)
		return
	}
	s.log.Debug(ctx, "sweep done", "reset_tokens", res.ResetTokens, "sessions", res.Sessions)
}
