package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "ENERGYAUDIT_"

// loadDotEnv is a seam for godotenv.Load so tests do not pick up a stray
// .env from the working directory.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays values from the environment. A .env file in the working
// directory is loaded first when present; variables already set in the
// process environment win over it.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	_ = loadDotEnv()

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	str("APP_URL", &config.AppURL)
	str("MAIL_MODE", &config.MailMode)
	str("MAIL_FROM", &config.MailFrom)
	str("SMTP_HOST", &config.SMTPHost)
	str("SMTP_USER", &config.SMTPUser)
	str("SMTP_PASSWORD", &config.SMTPPassword)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("CLEANUP_SCHEDULE", &config.CleanupSchedule)
	str("LOG_LEVEL", &config.LogLevel)

	for _, f := range []func() error{
		func() error { return num("HASH_COST", &config.HashCost) },
		func() error { return num("SMTP_PORT", &config.SMTPPort) },
		func() error { return dur("TOKEN_TTL", &config.TokenTTL) },
		func() error { return dur("RESET_TOKEN_TTL", &config.ResetTokenTTL) },
		func() error { return dur("VERIFICATION_TOKEN_TTL", &config.VerificationTokenTTL) },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}
