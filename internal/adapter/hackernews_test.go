package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/offerhound/internal/model"
)

// hnServer serves a fake Firebase API: user whoishiring submitted [1, 2],
// item 1 is an unrelated post, item 2 is the hiring thread with the given kids.
type hnServer struct {
	kids     []int64
	comments map[int64]string // id -> JSON body
	slow     map[int64]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (h *hnServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/v0/user/whoishiring.json":
		fmt.Fprint(w, `{"id": "whoishiring", "submitted": [1, 2]}`)
		return
	case strings.HasPrefix(r.URL.Path, "/v0/item/"):
	default:
		http.NotFound(w, r)
		return
	}

	id, _ := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v0/item/"), ".json"), 10, 64)
	switch id {
	case 1:
		fmt.Fprint(w, `{"id": 1, "title": "Ask HN: Who wants to be hired? (March 2026)"}`)
		return
	case 2:
		kids := make([]string, len(h.kids))
		for i, k := range h.kids {
			kids[i] = strconv.FormatInt(k, 10)
		}
		fmt.Fprintf(w, `{"id": 2, "title": "Ask HN: Who is hiring? (March 2026)", "kids": [%s]}`, strings.Join(kids, ","))
		return
	}

	n := h.inFlight.Add(1)
	defer h.inFlight.Add(-1)
	for {
		m := h.maxInFlight.Load()
		if n <= m || h.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if h.slow[id] {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		return
	}
	time.Sleep(5 * time.Millisecond)

	body, ok := h.comments[id]
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, body)
}

func TestHackerNewsSource_Fetch(t *testing.T) {
	h := &hnServer{
		kids: []int64{10, 11, 12, 13, 14},
		comments: map[int64]string{
			10: `{"id": 10, "by": "acme_hr", "time": 1767225600, "text": "Acme | Senior Go Engineer | Remote (EU) | Full-time<p>We build things.</p>"}`,
			11: `{"id": 11, "by": "someone", "text": "We are hiring engineers to work remotely on our platform.<p>Email us.</p>"}`,
			12: `{"id": 12, "deleted": true}`,
			13: `{"id": 13, "by": "x", "dead": true, "text": "spam"}`,
		},
		// 14 is missing: the server answers 500 and the item is skipped
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	src := NewHackerNewsSource(rewriteClient(srv), 2, time.Second, discardLogger())
	offers, err := collect(context.Background(), src, model.SearchStrategy{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d: %+v", len(offers), offers)
	}

	byURL := map[string]model.RawOffer{}
	for _, o := range offers {
		byURL[o.URL] = o
	}

	acme, ok := byURL["https://news.ycombinator.com/item?id=10"]
	if !ok {
		t.Fatal("missing offer for item 10")
	}
	if acme.Company != "Acme" || acme.Title != "Senior Go Engineer" || acme.Location != "Remote (EU) | Full-time" {
		t.Errorf("header not parsed: %+v", acme)
	}
	if acme.PostedAt == nil || acme.PostedAt.Unix() != 1767225600 {
		t.Errorf("PostedAt = %v", acme.PostedAt)
	}

	prose := byURL["https://news.ycombinator.com/item?id=11"]
	if prose.Title != "HN offer by someone" || prose.Company != "" {
		t.Errorf("fallback title not applied: %+v", prose)
	}
}

func TestHackerNewsSource_BoundedPool(t *testing.T) {
	h := &hnServer{comments: map[int64]string{}}
	for i := int64(100); i < 140; i++ {
		h.kids = append(h.kids, i)
		h.comments[i] = fmt.Sprintf(`{"id": %d, "by": "u", "text": "Co | Engineer | Remote"}`, i)
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	src := NewHackerNewsSource(rewriteClient(srv), 3, time.Second, discardLogger())
	offers, err := collect(context.Background(), src, model.SearchStrategy{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 40 {
		t.Fatalf("expected 40 offers, got %d", len(offers))
	}
	if got := h.maxInFlight.Load(); got > 3 {
		t.Errorf("max concurrent item fetches = %d, want <= 3", got)
	}
}

func TestHackerNewsSource_StalledItemDoesNotStallPool(t *testing.T) {
	h := &hnServer{
		kids: []int64{20, 21},
		comments: map[int64]string{
			21: `{"id": 21, "by": "u", "text": "Co | Engineer | Remote"}`,
		},
		slow: map[int64]bool{20: true},
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	src := NewHackerNewsSource(rewriteClient(srv), 2, 100*time.Millisecond, discardLogger())
	start := time.Now()
	offers, err := collect(context.Background(), src, model.SearchStrategy{})
	if err != nil {
		t.Fatalf("timed-out item must not fail the source: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch took %v, per-item timeout not applied", elapsed)
	}
	if len(offers) != 1 || offers[0].URL != "https://news.ycombinator.com/item?id=21" {
		t.Errorf("unexpected offers: %+v", offers)
	}
}

func TestHackerNewsSource_NoThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v0/user/whoishiring.json" {
			fmt.Fprint(w, `{"submitted": [1]}`)
			return
		}
		fmt.Fprint(w, `{"id": 1, "title": "Ask HN: Freelancer? Seeking freelancer?"}`)
	}))
	defer srv.Close()

	offers, err := collect(context.Background(), NewHackerNewsSource(rewriteClient(srv), 0, 0, discardLogger()), model.SearchStrategy{})
	if err != nil || len(offers) != 0 {
		t.Fatalf("expected no offers and no error, got %d, %v", len(offers), err)
	}
}

func TestHackerNewsSource_UserLookupFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := collect(context.Background(), NewHackerNewsSource(rewriteClient(srv), 0, 0, discardLogger()), model.SearchStrategy{})
	if err == nil {
		t.Fatal("expected error when thread discovery fails")
	}
}

func TestHnOffer_HeaderParsing(t *testing.T) {
	tests := []struct {
		name                     string
		text                     string
		title, company, location string
	}{
		{"three parts", "Acme | Backend Engineer | Remote<p>Body", "Backend Engineer", "Acme", "Remote"},
		{"two parts", "Acme | Backend Engineer<p>Body", "Backend Engineer", "Acme", ""},
		{"entity encoded", "Acme &#x2F; Beta | SRE | Remote (US)", "SRE", "Acme / Beta", "Remote (US)"},
		{"no pipes", "Come work with us<p>Body", "HN offer by bob", "", ""},
		{"header too long", strings.Repeat("word ", 50) + "| a | b", "HN offer by bob", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, ok := hnOffer(&hnItem{ID: 1, By: "bob", Text: tc.text})
			if !ok {
				t.Fatal("expected offer")
			}
			if raw.Title != tc.title || raw.Company != tc.company || raw.Location != tc.location {
				t.Errorf("got title=%q company=%q location=%q", raw.Title, raw.Company, raw.Location)
			}
		})
	}
}
