package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer writes emails to the log instead of sending them. Used for local
// development; deliveries always succeed so the confirmation link can be copied
// from the log.
type LogMailer struct {
	frontendURL string
	logger      zerolog.Logger
}

// NewLogMailer creates a new LogMailer
func NewLogMailer(frontendURL string, logger zerolog.Logger) *LogMailer {
	return &LogMailer{
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Send logs the email
func (m *LogMailer) Send(_ context.Context, to, subject, _ string) Result {
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("Email not sent (log driver)")
	return Delivered()
}

// SendConfirmation logs the confirmation link
func (m *LogMailer) SendConfirmation(_ context.Context, to, name, token string) Result {
	msg := RenderConfirmation(m.frontendURL, name, token)
	m.logger.Info().
		Str("to", to).
		Str("subject", msg.Subject).
		Str("confirmationURL", msg.Link).
		Msg("Confirmation email not sent (log driver)")
	return Delivered()
}
