package email

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-sasl"

	"hrperf/internal/platform/config"
)

func TestNewDisabledIsNoop(t *testing.T) {
	m := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.example.com"})
	if _, ok := m.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", m)
	}
	if err := m.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"); err != nil {
		t.Fatalf("noop send: %v", err)
	}
}

func TestSendBuildsMessage(t *testing.T) {
	m := New(config.Config{EmailEnabled: true, SMTPHost: "smtp.example.com", SMTPPort: 2525, SMTPUser: "bot", SMTPPassword: "pw"}).(*smtpMailer)
	var gotAddr, gotMsg string
	var gotTo []string
	m.send = func(addr string, a sasl.Client, from string, to []string, msg *strings.Reader) error {
		if a == nil {
			t.Fatal("expected plain auth client")
		}
		gotAddr, gotTo = addr, to
		b, _ := io.ReadAll(msg)
		gotMsg = string(b)
		return nil
	}

	err := m.Send(context.Background(), "hr@example.com", "eli@example.com", "Review\r\nBcc: x", "Your review is ready")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:2525" || len(gotTo) != 1 || gotTo[0] != "eli@example.com" {
		t.Fatalf("unexpected envelope %s %v", gotAddr, gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Review  Bcc: x\r\n") {
		t.Fatalf("subject not sanitized: %q", gotMsg)
	}
	if !strings.HasSuffix(gotMsg, "\r\n\r\nYour review is ready") {
		t.Fatalf("unexpected body: %q", gotMsg)
	}
}

func TestSendSkipsEmptyRecipientAndWrapsErrors(t *testing.T) {
	m := New(config.Config{EmailEnabled: true, SMTPHost: "smtp.example.com", SMTPPort: 25}).(*smtpMailer)
	calls := 0
	m.send = func(string, sasl.Client, string, []string, *strings.Reader) error {
		calls++
		return errors.New("connection refused")
	}
	if err := m.Send(context.Background(), "hr@example.com", " ", "s", "b"); err != nil || calls != 0 {
		t.Fatalf("expected skip, got err=%v calls=%d", err, calls)
	}
	err := m.Send(context.Background(), "hr@example.com", "eli@example.com", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "eli@example.com") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
