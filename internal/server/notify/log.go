package notify

import (
	"context"

	"github.com/dmitrijs2005/energyaudit/internal/logging"
)

// LogSender writes emails to the log instead of delivering them. It is the
// development mode: the link is logged at debug level so a developer can
// follow it.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, email *Email) error {
	s.log.Info(ctx, "email not delivered (log mode)", "to", email.To, "category", email.Category)
	s.log.Debug(ctx, "email link", "to", email.To, "link", email.Link)
	return nil
}
