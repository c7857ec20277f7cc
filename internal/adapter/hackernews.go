package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/offerhound/internal/model"
	"github.com/amishk599/offerhound/internal/normalize"
)

const (
	hnAPIBase     = "https://hacker-news.firebaseio.com/v0"
	hnItemURL     = "https://news.ycombinator.com/item?id=%d"
	hnThreadTitle = "Ask HN: Who is hiring?"
	hnThreadScan  = 30

	DefaultHNWorkers     = 20
	DefaultHNItemTimeout = 10 * time.Second

	// A header line longer than this is prose, not "Company | Role | Location".
	hnMaxHeaderLen = 200
)

type hnUser struct {
	Submitted []int64 `json:"submitted"`
}

type hnItem struct {
	ID      int64   `json:"id"`
	By      string  `json:"by"`
	Time    int64   `json:"time"`
	Title   string  `json:"title"`
	Text    string  `json:"text"`
	Kids    []int64 `json:"kids"`
	Deleted bool    `json:"deleted"`
	Dead    bool    `json:"dead"`
}

// HackerNewsSource reads the latest "Who is hiring?" thread. Every top-level
// comment is one offer, fetched individually through a bounded worker pool.
type HackerNewsSource struct {
	client      *http.Client
	workers     int
	itemTimeout time.Duration
	logger      *slog.Logger
}

// NewHackerNewsSource creates the source. Non-positive workers or itemTimeout
// fall back to DefaultHNWorkers and DefaultHNItemTimeout.
func NewHackerNewsSource(client *http.Client, workers int, itemTimeout time.Duration, logger *slog.Logger) *HackerNewsSource {
	if workers <= 0 {
		workers = DefaultHNWorkers
	}
	if itemTimeout <= 0 {
		itemTimeout = DefaultHNItemTimeout
	}
	return &HackerNewsSource{
		client:      client,
		workers:     workers,
		itemTimeout: itemTimeout,
		logger:      logger,
	}
}

func (s *HackerNewsSource) Name() string { return "hackernews" }

// Fetch emits offers in completion order. A comment that fails or times out
// is skipped; only thread discovery errors are returned.
func (s *HackerNewsSource) Fetch(ctx context.Context, _ model.SearchStrategy, emit model.Emit) error {
	thread, err := s.latestThread(ctx)
	if err != nil {
		return err
	}
	if thread == nil {
		s.logger.Warn("no hiring thread found", "source", s.Name())
		return nil
	}
	s.logger.Info("hiring thread found", "source", s.Name(), "thread_id", thread.ID, "title", thread.Title, "comments", len(thread.Kids))

	var skipped atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for _, id := range thread.Kids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ictx, cancel := context.WithTimeout(ctx, s.itemTimeout)
			defer cancel()

			item, err := s.item(ictx, id)
			if err != nil {
				skipped.Add(1)
				s.logger.Debug("skipping comment", "source", s.Name(), "item_id", id, "error", err)
				return nil
			}
			if raw, ok := hnOffer(item); ok {
				emit(raw)
			}
			return nil
		})
	}
	g.Wait()

	if n := skipped.Load(); n > 0 {
		s.logger.Warn("comments skipped", "source", s.Name(), "count", n)
	}
	return ctx.Err()
}

func (s *HackerNewsSource) latestThread(ctx context.Context) (*hnItem, error) {
	var user hnUser
	if err := getJSON(ctx, s.client, hnAPIBase+"/user/whoishiring.json", "hackernews user", &user); err != nil {
		return nil, err
	}

	ids := user.Submitted
	if len(ids) > hnThreadScan {
		ids = ids[:hnThreadScan]
	}
	for _, id := range ids {
		item, err := s.item(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("hackernews thread lookup: %w", err)
		}
		if strings.Contains(item.Title, hnThreadTitle) {
			return item, nil
		}
	}
	return nil, nil
}

func (s *HackerNewsSource) item(ctx context.Context, id int64) (*hnItem, error) {
	var item hnItem
	url := fmt.Sprintf("%s/item/%d.json", hnAPIBase, id)
	if err := getJSON(ctx, s.client, url, fmt.Sprintf("hackernews item %d", id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// hnOffer maps a comment. By convention the first paragraph is a header like
// "Acme | Senior Go Engineer | Remote (EU) | Full-time".
func hnOffer(item *hnItem) (model.RawOffer, bool) {
	if item == nil || item.Deleted || item.Dead || strings.TrimSpace(item.Text) == "" {
		return model.RawOffer{}, false
	}

	raw := model.RawOffer{
		Title:       "HN offer by " + item.By,
		Description: item.Text,
		URL:         fmt.Sprintf(hnItemURL, item.ID),
	}
	if item.Time > 0 {
		t := time.Unix(item.Time, 0).UTC()
		raw.PostedAt = &t
	}

	first, _, _ := strings.Cut(item.Text, "<p>")
	header := normalize.PlainText(first)
	if len(header) > hnMaxHeaderLen {
		return raw, true
	}
	var parts []string
	for p := range strings.SplitSeq(header, "|") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return raw, true
	}
	raw.Company = parts[0]
	raw.Title = parts[1]
	raw.Location = strings.Join(parts[2:], " | ")
	return raw, true
}
