package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromEmail   string
	UseTLS      bool
	Timeout     time.Duration
	FrontendURL string
}

// SMTPMailer sends mail through an SMTP relay. Every network step is bounded
// by Timeout so a hung relay cannot stall registration.
type SMTPMailer struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(config SMTPConfig, logger zerolog.Logger) *SMTPMailer {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SMTPMailer{
		config: config,
		logger: logger,
	}
}

// SendConfirmation sends the account confirmation email
func (m *SMTPMailer) SendConfirmation(ctx context.Context, to, name, token string) Result {
	msg := RenderConfirmation(m.config.FrontendURL, name, token)
	return m.Send(ctx, to, msg.Subject, msg.HTML)
}

// Send delivers one HTML email
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) Result {
	if err := m.send(ctx, to, subject, htmlBody); err != nil {
		m.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Failed to send email")
		return Failed(err)
	}
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return Delivered()
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	dialer := &net.Dialer{Timeout: m.config.Timeout}

	var conn net.Conn
	var err error
	if m.config.UseTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: m.config.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server %s: %w", addr, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set SMTP deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !m.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.config.Host}); err != nil {
				return fmt.Errorf("STARTTLS failed: %w", err)
			}
		}
	}

	if m.config.Username != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(buildMessage(m.config.FromName, m.config.FromEmail, to, subject, htmlBody)); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// buildMessage renders headers in a fixed order followed by the HTML body
func buildMessage(fromName, fromEmail, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, fromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
