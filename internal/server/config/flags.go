package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      bearer token / session lifetime, minutes
//	-r int      password reset token lifetime, minutes
//	-v int      email verification token lifetime, minutes
//	-k int      bcrypt cost
//	-m string   mail mode (log, smtp, s3)
//	-w string   application URL used in email links
//	-l string   log level
//
// Durations are given in whole minutes.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-r", "-v", "-k", "-m", "-w", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenTTL := fs.Int("t", int(config.TokenTTL.Minutes()), "token_ttl (in minutes)")
	resetTTL := fs.Int("r", int(config.ResetTokenTTL.Minutes()), "reset_token_ttl (in minutes)")
	verificationTTL := fs.Int("v", int(config.VerificationTokenTTL.Minutes()), "verification_token_ttl (in minutes)")

	fs.IntVar(&config.HashCost, "k", config.HashCost, "bcrypt cost")
	fs.StringVar(&config.MailMode, "m", config.MailMode, "mail mode: log, smtp or s3")
	fs.StringVar(&config.AppURL, "w", config.AppURL, "application URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
	config.ResetTokenTTL = time.Duration(*resetTTL) * time.Minute
	config.VerificationTokenTTL = time.Duration(*verificationTTL) * time.Minute
	return nil
}
