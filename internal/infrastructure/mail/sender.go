// Package mail delivers rendered notification e-mails.
package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"confhub/internal/domain/notification"
	"confhub/pkg/logger"
)

// Sender delivers one e-mail.
type Sender interface {
	Send(ctx context.Context, email notification.Email) error
}

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromName  string
	FromEmail string
	Timeout   time.Duration
}

// SMTPSender sends through an SMTP relay with mandatory STARTTLS.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates an SMTP sender. FromEmail defaults to User.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.User
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) message(email notification.Email) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("set to %q: %w", email.To, err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, email.TextBody)
	if email.HTMLBody != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, email.HTMLBody)
	}
	return msg, nil
}

func (s *SMTPSender) client() (*gomail.Client, error) {
	return gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.User),
		gomail.WithPassword(s.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(s.cfg.Timeout),
	)
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, email notification.Email) error {
	msg, err := s.message(email)
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", email.To, err)
	}
	return nil
}

// LogSender only logs messages. Used when SMTP is not configured.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(ctx context.Context, email notification.Email) error {
	logger.Info(ctx, "mail not sent, smtp disabled",
		"to", email.To,
		"subject", email.Subject)
	return nil
}
