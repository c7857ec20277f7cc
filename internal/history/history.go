// Package history remembers every offer URL ever shown so that each run
// surfaces only net-new offers. The record only grows.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/amishk599/offerhound/internal/model"
)

// ErrCorrupt is returned by Load when the persisted history cannot be parsed.
// The store is still usable and starts empty.
var ErrCorrupt = errors.New("history is corrupt")

// Store is a durable, monotonic record of seen offer URLs.
type Store interface {
	// Load reads the persisted history into memory. It is called once per process.
	Load(ctx context.Context) error
	// FilterNew returns offers whose URL has not been seen, marking each one
	// seen in memory. Check and insert are atomic per URL.
	FilterNew(offers []model.Offer) []model.Offer
	// Persist durably records the offers. Already recorded URLs are ignored.
	Persist(ctx context.Context, offers []model.Offer) error
	// Recent returns up to n recorded offers, newest first.
	Recent(ctx context.Context, n int) ([]model.Offer, error)
	Len() int
	Close() error
}

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string
	Path      string // file and sqlite
	DSN       string // postgres
	RedisURL  string
	KeyPrefix string // redis
}

// Open constructs the configured backend. It does not call Load.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path), nil
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.KeyPrefix)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

type runIDKey struct{}

// WithRunID attaches the aggregation run ID so backends can record it.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run ID attached to ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// seenSet is the in-memory membership every backend shares.
type seenSet struct {
	urls mapset.Set[string]
}

func newSeenSet() seenSet {
	return seenSet{urls: mapset.NewSet[string]()}
}

// MarkIfNew adds url and reports whether it was absent. Safe for concurrent use.
func (s seenSet) MarkIfNew(url string) bool {
	return s.urls.Add(url)
}

func (s seenSet) Has(url string) bool {
	return s.urls.Contains(url)
}

func (s seenSet) FilterNew(offers []model.Offer) []model.Offer {
	var fresh []model.Offer
	for _, o := range offers {
		if o.JobURL == "" {
			continue
		}
		if s.MarkIfNew(o.JobURL) {
			fresh = append(fresh, o)
		}
	}
	return fresh
}

func (s seenSet) Len() int {
	return s.urls.Cardinality()
}

// stamp drops offers without a URL and sets a missing FirstSeen to now.
func stamp(offers []model.Offer, now time.Time) []model.Offer {
	out := make([]model.Offer, 0, len(offers))
	for _, o := range offers {
		if o.JobURL == "" {
			continue
		}
		if o.FirstSeen.IsZero() {
			o.FirstSeen = now
		}
		out = append(out, o)
	}
	return out
}
