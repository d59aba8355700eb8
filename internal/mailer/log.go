package mailer

import (
	"context"
	"log/slog"
)

// Log is the dev transport: it writes the verification link into the log
// instead of delivering mail, so local signups stay testable without a relay.
type Log struct {
	logger *slog.Logger
}

// NewLog constructs the logging transport.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	l.logger.InfoContext(ctx, "email delivery skipped, no SMTP host configured",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
