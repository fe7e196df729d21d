package mailer

import (
	"context"

	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

// LogMailer logs every message, secret included. Development only.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log.With("module", "mailer")}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, user *models.User, token string) error {
	m.emit(ctx, verificationMessage(user, token))
	return nil
}

func (m *LogMailer) SendResetEmail(ctx context.Context, email, code string) error {
	m.emit(ctx, resetMessage(email, code))
	return nil
}

func (m *LogMailer) emit(ctx context.Context, msg Message) {
	m.log.Info(ctx, "mail", "kind", msg.Kind, "to", msg.To, "subject", msg.Subject, "secret", msg.Secret)
}
