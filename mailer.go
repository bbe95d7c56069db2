package auth

import "context"

// LogMailer writes outgoing mail to the logger instead of a delivery
// service. It is the default collaborator for development and tests; wire a
// real Mailer in production deployments.
type LogMailer struct {
	logger Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	m.logger.Info("verification email for %s token=%s", to, token)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	m.logger.Info("password reset email for %s token=%s", to, token)
	return nil
}
