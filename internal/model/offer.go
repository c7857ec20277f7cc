package model

import (
	"context"
	"strings"
	"time"
)

// Offer is the canonical, normalized job listing every source maps into.
// JobURL is the identity used for deduplication across sources and runs.
type Offer struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description"` // plain text, markup already stripped
	JobURL      string     `json:"job_url"`
	Source      string     `json:"source"`
	Tags        []string   `json:"tags,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	FirstSeen   time.Time  `json:"first_seen"`
}

// SearchText is the lowercased text the eligibility stages match against.
func (o Offer) SearchText() string {
	var b strings.Builder
	b.WriteString(o.Title)
	b.WriteByte(' ')
	b.WriteString(o.Description)
	for _, t := range o.Tags {
		b.WriteByte(' ')
		b.WriteString(t)
	}
	return strings.ToLower(b.String())
}

// GeoText is the title and location only. Descriptions are left out because
// incidental place names there produce false positives.
func (o Offer) GeoText() string {
	return o.Title + " " + o.Location
}

// RawOffer is what a source adapter produces before normalization. Any field
// may be empty; the normalizer fills in defaults.
type RawOffer struct {
	Title       string
	Company     string
	Location    string
	Description string // may contain HTML
	URL         string
	Tags        []string
	PostedAt    *time.Time
}

// Emit receives raw records from a source. Sources that fetch item-by-item may
// call it concurrently from several goroutines.
type Emit func(RawOffer)

// Source fetches listings from one upstream site or API.
type Source interface {
	Name() string
	Fetch(ctx context.Context, strategy SearchStrategy, emit Emit) error
}

// RemoteOnlySource is implemented by sources whose listings are remote by
// construction. The remote-requirement stage is skipped for them.
type RemoteOnlySource interface {
	RemoteOnly() bool
}

// Notifier sends notifications for newly accepted offers.
type Notifier interface {
	Notify(offers []Offer) error
}
