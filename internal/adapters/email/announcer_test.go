package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"noticeboard/internal/domain/notice"
)

type failingSender struct{}

// Send implements Sender for testing.
func (failingSender) Send(context.Context, SendRequest) (SendResult, error) {
	return SendResult{}, errors.New("provider unavailable")
}

var drill = notice.Notice{
	ID:           "n-1",
	Title:        "Fire drill",
	Content:      "Evacuate at **noon**\n\n<script>alert(1)</script>",
	Duration:     30,
	CreatedAt:    1772366400000,
	CreatedAtISO: "2026-03-01T12:00:00.000Z",
}

// TestAnnouncer_Announce verifies the rendered message reaches the sender.
func TestAnnouncer_Announce(t *testing.T) {
	sender := NewNoopSender()
	a := NewAnnouncer(sender, []string{"staff@example.com", "ops@example.com"})

	if err := a.Announce(context.Background(), drill); err != nil {
		t.Fatalf("Announce: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	msg := sent[0]
	if len(msg.To) != 2 {
		t.Errorf("To = %v", msg.To)
	}
	if msg.Subject != "New notice: Fire drill" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "<strong>noon</strong>") {
		t.Errorf("markdown not rendered: %s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Errorf("raw HTML leaked into body: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "displayed for 30s") {
		t.Errorf("duration missing: %s", msg.HTML)
	}
	if !strings.HasPrefix(msg.Text, "Fire drill\n\n") {
		t.Errorf("Text = %q", msg.Text)
	}
}

// TestAnnouncer_SenderError verifies sender failures are returned.
func TestAnnouncer_SenderError(t *testing.T) {
	a := NewAnnouncer(failingSender{}, []string{"staff@example.com"})
	if err := a.Announce(context.Background(), drill); err == nil {
		t.Error("expected error from failing sender")
	}
}

// TestAnnouncer_CopiesRecipients verifies later mutation of the caller's slice has no effect.
func TestAnnouncer_CopiesRecipients(t *testing.T) {
	to := []string{"a@example.com"}
	sender := NewNoopSender()
	a := NewAnnouncer(sender, to)
	to[0] = "changed@example.com"
	_ = a.Announce(context.Background(), drill)
	if got := sender.Sent()[0].To[0]; got != "a@example.com" {
		t.Errorf("recipient = %q", got)
	}
}
