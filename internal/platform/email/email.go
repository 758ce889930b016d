package email

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"hrperf/internal/domain/notifications"
	"hrperf/internal/platform/config"
)

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, from, to, subject, body string) error {
	return nil
}

type sendFunc func(addr string, a sasl.Client, from string, to []string, msg *strings.Reader) error

type smtpMailer struct {
	addr string
	auth sasl.Client
	send sendFunc
}

// New returns a no-op mailer unless email delivery is enabled. Port 465 with
// SMTP_USE_TLS uses implicit TLS; other ports upgrade with STARTTLS when the
// server offers it.
func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{}
	}
	m := &smtpMailer{
		addr: cfg.SMTPHost + ":" + strconv.Itoa(cfg.SMTPPort),
		send: func(addr string, a sasl.Client, from string, to []string, msg *strings.Reader) error {
			return smtp.SendMail(addr, a, from, to, msg)
		},
	}
	if cfg.SMTPUseTLS && cfg.SMTPPort == 465 {
		m.send = func(addr string, a sasl.Client, from string, to []string, msg *strings.Reader) error {
			return smtp.SendMailTLS(addr, a, from, to, msg)
		}
	}
	if cfg.SMTPUser != "" {
		m.auth = sasl.NewPlainClient("", cfg.SMTPUser, cfg.SMTPPassword)
	}
	return m
}

func (s *smtpMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(from, to, subject, body)
	if err := s.send(s.addr, s.auth, from, []string{to}, strings.NewReader(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	slog.Debug("mail sent", "to", to, "subject", subject)
	return nil
}

func buildMessage(from, to, subject, body string) string {
	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", sanitizeHeader(subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
	}
	return strings.Join(headers, "\r\n") + "\r\n" + body
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
