package notifier

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/amishk599/offerhound/internal/model"
)

// fakeBotAPI answers getMe and records sendMessage form posts.
type fakeBotAPI struct {
	mu       sync.Mutex
	messages []map[string]string
	failSend bool
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		w.Write([]byte(`{"ok": true, "result": {"id": 42, "is_bot": true, "first_name": "hound", "username": "hound_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.failSend {
			w.Write([]byte(`{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"}`))
			return
		}
		r.ParseForm()
		f.mu.Lock()
		f.messages = append(f.messages, map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		})
		f.mu.Unlock()
		w.Write([]byte(`{"ok": true, "result": {"message_id": 1, "date": 0, "chat": {"id": 7, "type": "private"}}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestTelegram(t *testing.T, api *fakeBotAPI) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier("123:abc", 7, srv.URL+"/bot%s/%s", srv.Client(), discardLogger())
	if err != nil {
		t.Fatalf("NewTelegramNotifier: %v", err)
	}
	n.pause = 0
	return n
}

func TestTelegramNotifier_SendsHTMLPerOffer(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestTelegram(t, api)

	offer := sampleOffer("Go <Backend> Engineer", "Acme & Co")
	if err := n.Notify([]model.Offer{offer, sampleOffer("SRE", "Beta")}); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	if len(api.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(api.messages))
	}
	m := api.messages[0]
	if m["chat_id"] != "7" || m["parse_mode"] != "HTML" {
		t.Errorf("chat_id=%q parse_mode=%q", m["chat_id"], m["parse_mode"])
	}
	if !strings.Contains(m["text"], "<b>Go &lt;Backend&gt; Engineer</b>") {
		t.Errorf("title not escaped: %q", m["text"])
	}
	if !strings.Contains(m["text"], "Acme &amp; Co") {
		t.Errorf("company not escaped: %q", m["text"])
	}
	if !strings.Contains(m["text"], `<a href="https://example.com/apply">Apply Now</a>`) {
		t.Errorf("missing apply link: %q", m["text"])
	}
}

func TestTelegramNotifier_EmptyOffers(t *testing.T) {
	api := &fakeBotAPI{}
	if err := newTestTelegram(t, api).Notify(nil); err != nil {
		t.Fatalf("Notify(nil) = %v", err)
	}
	if len(api.messages) != 0 {
		t.Errorf("expected no messages, got %d", len(api.messages))
	}
}

func TestTelegramNotifier_AllFail(t *testing.T) {
	n := newTestTelegram(t, &fakeBotAPI{failSend: true})
	if err := n.Notify([]model.Offer{sampleOffer("A", "X")}); err == nil {
		t.Fatal("expected error when every message fails")
	}
}

func TestNewTelegramNotifier_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error_code": 401, "description": "Unauthorized"}`))
	}))
	defer srv.Close()

	if _, err := NewTelegramNotifier("bad", 1, srv.URL+"/bot%s/%s", srv.Client(), discardLogger()); err == nil {
		t.Fatal("expected error for rejected token")
	}
}
