package notifier

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/offerhound/internal/model"
)

func TestLogNotifier_Notify_zeroOffers(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.Offer{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLogNotifier_Notify_multipleOffers(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	posted := time.Now().Add(-30 * time.Minute)
	offers := []model.Offer{
		{Company: "Acme", Title: "Engineer", Location: "Remote", JobURL: "https://example.com/1", Source: "remoteok", PostedAt: &posted},
		{Company: "Beta", Title: "Developer", Location: "LATAM", JobURL: "https://example.com/2", Source: "hackernews"},
	}
	if err := n.Notify(offers); err != nil {
		t.Errorf("Notify(offers) = %v, want nil", err)
	}

	out := buf.String()
	if got := strings.Count(out, "msg=\"new offer\""); got != 2 {
		t.Errorf("expected 2 log lines, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "url=https://example.com/2") || !strings.Contains(out, "posted_at=") {
		t.Errorf("missing fields:\n%s", out)
	}
}
