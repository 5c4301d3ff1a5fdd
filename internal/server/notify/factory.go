package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
)

// New builds the Mailer selected by cfg.MailMode.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*Mailer, error) {
	composer := NewComposer(cfg.AppURL, cfg.MailFrom)

	var sender Sender
	switch cfg.MailMode {
	case config.MailModeLog, "":
		sender = NewLogSender(log)
	case config.MailModeSMTP:
		sender = NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	case config.MailModeS3:
		drop, err := NewS3MailDrop(ctx, S3Options{
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Bucket:       cfg.S3Bucket,
		})
		if err != nil {
			return nil, err
		}
		sender = drop
	default:
		return nil, fmt.Errorf("unknown mail mode %q", cfg.MailMode)
	}

	log.Info(ctx, "mailer configured", "mode", cfg.MailMode)
	return NewMailer(composer, sender), nil
}
