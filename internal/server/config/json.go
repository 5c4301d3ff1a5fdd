package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/energyaudit/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept "24h" style strings or integer nanoseconds. Only keys present in
// the file override the current values.
type JsonConfig struct {
	EndpointAddrGRPC     string          `json:"endpoint_addr_grpc"`
	DatabaseDSN          string          `json:"database_dsn"`
	SecretKey            string          `json:"secret_key"`
	TokenTTL             *timex.Duration `json:"token_ttl"`
	ResetTokenTTL        *timex.Duration `json:"reset_token_ttl"`
	VerificationTokenTTL *timex.Duration `json:"verification_token_ttl"`
	HashCost             *int            `json:"hash_cost"`
	AppURL               string          `json:"app_url"`
	MailMode             string          `json:"mail_mode"`
	MailFrom             string          `json:"mail_from"`
	SMTPHost             string          `json:"smtp_host"`
	SMTPPort             *int            `json:"smtp_port"`
	SMTPUser             string          `json:"smtp_user"`
	SMTPPassword         string          `json:"smtp_password"`
	S3RootUser           string          `json:"s3_root_user"`
	S3RootPassword       string          `json:"s3_root_password"`
	S3Bucket             string          `json:"s3_bucket"`
	S3Region             string          `json:"s3_region"`
	S3BaseEndpoint       string          `json:"s3_base_endpoint"`
	CleanupSchedule      *string         `json:"cleanup_schedule"`
	LogLevel             string          `json:"log_level"`
}

func parseJSON(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.ResetTokenTTL != nil {
		config.ResetTokenTTL = c.ResetTokenTTL.Duration
	}
	if c.VerificationTokenTTL != nil {
		config.VerificationTokenTTL = c.VerificationTokenTTL.Duration
	}
	if c.HashCost != nil {
		config.HashCost = *c.HashCost
	}
	setString(&config.AppURL, c.AppURL)
	setString(&config.MailMode, c.MailMode)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != nil {
		config.SMTPPort = *c.SMTPPort
	}
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.CleanupSchedule != nil {
		config.CleanupSchedule = *c.CleanupSchedule
	}
	setString(&config.LogLevel, c.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
