// Package admin implements authctl, the operator tool for the account
// store: applying migrations, sweeping expired rows and completing a
// password reset from a token.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/energyaudit/internal/flagx"
	"github.com/dmitrijs2005/energyaudit/internal/server/jobs"
)

const usage = `usage: authctl <command> [flags]

commands:
  migrate                   apply pending database migrations
  cleanup                   delete expired reset tokens and sessions
  reset-password -token T   set a new password using a reset token
`

// ErrUsage is returned for unknown commands or missing arguments.
var ErrUsage = errors.New("invalid usage")

// getNewPassword is a seam for the interactive prompt.
var getNewPassword = GetNewPassword

type Sweeper interface {
	Sweep(ctx context.Context) (jobs.Result, error)
}

type Resetter interface {
	ValidateResetToken(ctx context.Context, token string) (bool, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// CLI dispatches authctl commands.
type CLI struct {
	out     io.Writer
	migrate func(ctx context.Context) error
	sweeper Sweeper
	resets  Resetter
}

func NewCLI(out io.Writer, migrate func(ctx context.Context) error, sweeper Sweeper, resets Resetter) *CLI {
	return &CLI{out: out, migrate: migrate, sweeper: sweeper, resets: resets}
}

// Run executes the command named by args[0]. Flags that belong to the
// server configuration may be mixed in and are ignored here.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return ErrUsage
	}

	switch args[0] {
	case "migrate":
		if err := c.migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(c.out, "migrations applied")
	case "cleanup":
		res, err := c.sweeper.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		fmt.Fprintf(c.out, "removed %d reset tokens, %d sessions\n", res.ResetTokens, res.Sessions)
	case "reset-password":
		return c.resetPassword(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
	default:
		fmt.Fprintf(c.out, "unknown command %q\n%s", args[0], usage)
		return ErrUsage
	}
	return nil
}

func (c *CLI) resetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	token := fs.String("token", "", "password reset token")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-token", "--token"})); err != nil {
		return err
	}
	if *token == "" {
		fmt.Fprint(c.out, usage)
		return ErrUsage
	}

	ok, err := c.resets.ValidateResetToken(ctx, *token)
	if err != nil {
		return fmt.Errorf("reset-password: %w", err)
	}
	if !ok {
		return errors.New("reset-password: token is invalid or expired")
	}

	pw, err := getNewPassword(c.out)
	if err != nil {
		return fmt.Errorf("reset-password: %w", err)
	}
	if err := c.resets.ResetPassword(ctx, *token, pw); err != nil {
		return fmt.Errorf("reset-password: %w", err)
	}
	fmt.Fprintln(c.out, "password changed; all sessions of the user were signed out")
	return nil
}
