package email

import (
	"context"
	"strings"
	"testing"

	"hrleave/internal/platform/config"
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false, SMTPHost: "mail.example.com"})
	if err := mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"); err != nil {
		t.Fatalf("noop mailer must never fail: %v", err)
	}

	mailer = New(config.Config{EmailEnabled: true})
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatal("missing SMTP host must fall back to the noop mailer")
	}
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("hr@example.com", "asha@example.com", "Your casual leave was approved", "3 days starting 2026-03-11."))

	if !strings.Contains(msg, "Subject: [HR Leave] Your casual leave was approved\r\n") {
		t.Fatalf("subject not tagged:\n%s", msg)
	}
	if !strings.Contains(msg, "To: asha@example.com\r\n") {
		t.Fatalf("recipient header missing:\n%s", msg)
	}
	if !strings.HasSuffix(msg, footer+"\r\n") {
		t.Fatalf("footer missing:\n%s", msg)
	}

	tagged := string(buildMessage("hr@example.com", "asha@example.com", "[HR Leave] already tagged", "x"))
	if strings.Contains(tagged, "[HR Leave] [HR Leave]") {
		t.Fatal("subject must not be tagged twice")
	}
}
