package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
	"github.com/wneessen/go-mail"
)

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer only logs messages. It is used when no SMTP credentials are set.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email delivery disabled, message dropped")
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends through an authenticated SMTP relay such as Gmail,
// retrying transient failures a few times before giving up.
type SMTPMailer struct {
	cfg     SMTPConfig
	client  *mail.Client
	backoff func() retry.Backoff
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{
		cfg:    cfg,
		client: client,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
		},
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)

	return retry.Do(ctx, m.backoff(), func(ctx context.Context) error {
		if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
			log.Warn().Err(err).Str("to", msg.To).Msg("smtp send failed")
			return retry.RetryableError(err)
		}
		return nil
	})
}
