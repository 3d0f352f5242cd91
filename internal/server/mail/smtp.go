package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the settings for the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends plain-text mails over SMTP with opportunistic TLS.
type SMTPMailer struct {
	cfg    SMTPConfig
	client *gomail.Client
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client error: %w", err)
	}

	return &SMTPMailer{cfg: cfg, client: client}, nil
}

func (m *SMTPMailer) send(ctx context.Context, email, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail from error: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("mail to error: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail send error: %w", err)
	}

	return nil
}

func (m *SMTPMailer) SendActivation(ctx context.Context, email, confirmationURL string) error {
	body := fmt.Sprintf("Please confirm your registration using this link: %s", confirmationURL)
	return m.send(ctx, email, "Confirm registration", body)
}

func (m *SMTPMailer) SendRecovery(ctx context.Context, email, recoveryURL string) error {
	body := fmt.Sprintf("Reset your password using this link: %s", recoveryURL)
	return m.send(ctx, email, "Password recovery", body)
}
