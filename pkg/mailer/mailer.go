// Package mailer owns the process-wide SMTP transport. The client is built on
// first send and shared by every request afterwards.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("smtp transport is not configured")

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// FromAddress resolves the sender address: explicit From, then the SMTP
// username, then a local placeholder.
func (c Config) FromAddress() string {
	if c.From != "" {
		return c.From
	}
	if c.Username != "" {
		return c.Username
	}
	return "no-reply@campus.local"
}

type smtpSender struct {
	cfg Config
	cb  *gobreaker.CircuitBreaker

	once      sync.Once
	client    *mail.Client
	clientErr error
}

func NewSMTPSender(cfg Config) Sender {
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotConfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &smtpSender{cfg: cfg, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (s *smtpSender) transport() (*mail.Client, error) {
	s.once.Do(func() {
		if s.cfg.Host == "" || s.cfg.Username == "" {
			s.clientErr = ErrNotConfigured
			return
		}

		opts := []mail.Option{
			mail.WithPort(s.cfg.Port),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
			mail.WithTLSPolicy(mail.TLSMandatory),
		}
		if s.cfg.Timeout > 0 {
			opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
		}

		s.client, s.clientErr = mail.NewClient(s.cfg.Host, opts...)
		if s.clientErr != nil {
			s.clientErr = fmt.Errorf("failed to create smtp client: %w", s.clientErr)
		}
	})
	return s.client, s.clientErr
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	client, err := s.transport()
	if err != nil {
		return err
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.FromAddress()); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, client.DialAndSendWithContext(ctx, m)
	})
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
