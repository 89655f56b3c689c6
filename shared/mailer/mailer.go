package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("no recipients specified")

// Sender delivers a single email and returns the message id the transport accepted.
type Sender interface {
	Send(ctx context.Context, email Email) (string, error)
}

// Mailer represents an email sender.
type Mailer struct {
	config *mailerConfig
	dialer dialer
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// NewMailer creates a new Mailer instance with configuration read from the environment.
func NewMailer(logger *zerolog.Logger) *Mailer {
	cfg := newMailerConfig(logger)

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate Mailer configuration")
	}

	d := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &Mailer{
		config: cfg,
		dialer: d,
	}
}

// Send sends a single email. The transport call is bounded by the configured
// send timeout and by ctx.
func (m *Mailer) Send(ctx context.Context, email Email) (string, error) {
	if len(email.To) == 0 {
		return "", ErrNoRecipients
	}

	msg := gomail.NewMessage()
	messageID := m.setEmailMessage(msg, email)

	ctx, cancel := context.WithTimeout(ctx, m.config.SendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", err
		}
		return messageID, nil
	case <-ctx.Done():
		return "", fmt.Errorf("send email: %w", ctx.Err())
	}
}

func (m *Mailer) setEmailMessage(msg *gomail.Message, email Email) string {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.config.domain())

	msg.SetHeader("Message-ID", messageID)
	msg.SetAddressHeader("From", m.config.From, m.config.FromName)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	return messageID
}

// mailerConfig holds SMTP configuration for sending emails.
type mailerConfig struct {
	Host        string        `env:"SMTP_HOST"`
	Port        int           `env:"SMTP_PORT"`
	Username    string        `env:"SMTP_USERNAME"`
	Password    string        `env:"SMTP_PASSWORD"`
	From        string        `env:"SMTP_FROM"`
	FromName    string        `env:"SMTP_FROM_NAME"    envDefault:"Account Team"`
	SendTimeout time.Duration `env:"SMTP_SEND_TIMEOUT" envDefault:"10s"`
}

// newMailerConfig creates a MailerConfig instance from environment variables.
func newMailerConfig(logger *zerolog.Logger) *mailerConfig {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}

func (c *mailerConfig) domain() string {
	if i := strings.LastIndex(c.From, "@"); i >= 0 && i < len(c.From)-1 {
		return c.From[i+1:]
	}
	return "localhost"
}

// validate checks if the Mailer configuration is valid.
func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("SMTP_SEND_TIMEOUT must be positive")
	}

	return nil
}
