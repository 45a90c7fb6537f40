package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a freshly reset password out-of-band. Implementations
// must not log the password.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, newPassword string) error
}

// Config holds configuration for the SendGrid mailer
type Config struct {
	APIKey      string
	FromName    string
	FromAddress string
}

// Sendgrid delivers reset passwords by email via the SendGrid API
type Sendgrid struct {
	cfg Config
}

// NewSendgrid creates a SendGrid-backed mailer
func NewSendgrid(cfg Config) *Sendgrid {
	if cfg.FromName == "" {
		cfg.FromName = "Keyfold"
	}
	return &Sendgrid{cfg: cfg}
}

// Ensure Sendgrid implements the interface
var _ Mailer = (*Sendgrid)(nil)

func (m *Sendgrid) SendPasswordReset(ctx context.Context, to, newPassword string) error {
	from := mail.NewEmail(m.cfg.FromName, m.cfg.FromAddress)
	recipient := mail.NewEmail("", to)
	subject := "Your password has been reset"

	plainTextContent := fmt.Sprintf("Your new password is: %s\n\nPlease log in and change it.", newPassword)
	htmlContent := fmt.Sprintf("<p>Your new password is: <strong>%s</strong></p><p>Please log in and change it.</p>", newPassword)

	message := mail.NewSingleEmail(from, subject, recipient, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(m.cfg.APIKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("reset email rejected: status %d", response.StatusCode)
	}
	return nil
}

// Noop is a Mailer that silently discards messages (for tests and
// deployments without email delivery)
type Noop struct{}

// Ensure Noop implements the interface
var _ Mailer = (*Noop)(nil)

func (m *Noop) SendPasswordReset(ctx context.Context, to, newPassword string) error {
	return nil
}
