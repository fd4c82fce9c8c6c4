package services

import (
	"context"

	"github.com/dmitrijs2005/dreamteller/internal/logging"
)

// Mailer sends account mail. The development server only logs it.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info(ctx, "mail", "to", to, "subject", subject, "body", body)
	return nil
}

// LogNotifier stands in for a push gateway.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "push")}
}

func (n *LogNotifier) Notify(ctx context.Context, userID, token, title, body string) error {
	n.logger.Info(ctx, "push", "user_id", userID, "token", token, "title", title, "body", body)
	return nil
}
