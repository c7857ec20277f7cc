// Package aggregator runs one aggregation: fetch every source concurrently,
// normalize and filter what they emit, then deduplicate against history,
// optionally score, and persist, one source at a time in configured order.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/offerhound/internal/ai"
	"github.com/amishk599/offerhound/internal/filter"
	"github.com/amishk599/offerhound/internal/geo"
	"github.com/amishk599/offerhound/internal/history"
	"github.com/amishk599/offerhound/internal/model"
)

const DefaultSourceTimeout = 5 * time.Minute

// Scorer judges whether a net-new offer is worth surfacing.
type Scorer interface {
	Score(ctx context.Context, offer model.Offer) (ai.Verdict, error)
}

// SourceSpec is one configured source and its per-source settings.
type SourceSpec struct {
	Source     model.Source
	SkipStages []string
	Timeout    time.Duration // zero uses Options.SourceTimeout
}

type Options struct {
	// SourceWorkers caps concurrent source fetches. Zero fetches all at once.
	SourceWorkers int
	SourceTimeout time.Duration
	Overrides     filter.Overrides
	// DryRun skips Persist. Offers are still marked seen in memory.
	DryRun   bool
	Notifier model.Notifier
}

// SourceStats describes what happened to one source's records.
type SourceStats struct {
	Name        string
	Fetched     int
	Rejected    map[string]int // by filter stage
	Accepted    int
	GeoRejected int
	New         int
	ScoredOut   int
	Persisted   int
	Duration    time.Duration
	Err         error
}

// Result of one run. Offers are ordered by source, then by arrival.
type Result struct {
	RunID    string
	Offers   []model.Offer
	Sources  []SourceStats
	Warnings []error
}

type Aggregator struct {
	sources []SourceSpec
	store   history.Store
	scorer  Scorer
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	loadOnce sync.Once
	loadErr  error
}

// New wires an Aggregator. scorer may be nil.
func New(sources []SourceSpec, store history.Store, scorer Scorer, opts Options, logger *slog.Logger) *Aggregator {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	return &Aggregator{
		sources: sources,
		store:   store,
		scorer:  scorer,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Run performs one aggregation. Individual source, scorer, persist and
// notification failures are reported in the Result, never returned. The
// error is non-nil only when ctx ends before the run completes.
func (a *Aggregator) Run(ctx context.Context, strategy model.SearchStrategy) (Result, error) {
	res := Result{RunID: a.newID()}
	ctx = history.WithRunID(ctx, res.RunID)
	logger := a.logger.With("run_id", res.RunID)
	strategy = strategy.WithDefaults()

	cfg, warnings := filter.BuildConfig(strategy, a.opts.Overrides)
	for _, w := range warnings {
		logger.Warn("ignoring filter setting", "error", w)
	}
	res.Warnings = append(res.Warnings, warnings...)
	guard := geo.NewGuard(cfg.GeoGreen, cfg.GeoRed)

	loaded := false
	a.loadOnce.Do(func() {
		loaded = true
		a.loadErr = a.store.Load(ctx)
	})
	if loaded && a.loadErr != nil {
		logger.Warn("history load failed, continuing with empty history", "error", a.loadErr)
		res.Warnings = append(res.Warnings, fmt.Errorf("loading history: %w", a.loadErr))
	}

	logger.Info("aggregation started", "sources", len(a.sources), "history", a.store.Len())

	runs := a.fetchAll(ctx, strategy, cfg, logger)

	for _, run := range runs {
		stats := run.stats

		kept, rejected := guard.Filter(run.accepted)
		stats.GeoRejected = len(rejected)

		fresh := a.store.FilterNew(kept)
		stats.New = len(fresh)
		now := a.now().UTC()
		for i := range fresh {
			fresh[i].FirstSeen = now
		}

		viable := a.score(ctx, fresh, logger)
		stats.ScoredOut = len(fresh) - len(viable)

		if !a.opts.DryRun && len(viable) > 0 {
			if err := a.store.Persist(ctx, viable); err != nil {
				logger.Error("persisting offers failed", "source", stats.Name, "error", err)
				res.Warnings = append(res.Warnings, fmt.Errorf("persisting %s: %w", stats.Name, err))
			} else {
				stats.Persisted = len(viable)
			}
		}

		if stats.Err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("source %s: %w", stats.Name, stats.Err))
		}
		logger.Info("source done",
			"source", stats.Name,
			"fetched", stats.Fetched,
			"accepted", stats.Accepted,
			"geo_rejected", stats.GeoRejected,
			"new", stats.New,
			"scored_out", stats.ScoredOut,
			"duration", stats.Duration.Round(time.Millisecond).String(),
		)

		res.Offers = append(res.Offers, viable...)
		res.Sources = append(res.Sources, stats)
	}

	if a.opts.Notifier != nil && len(res.Offers) > 0 {
		if err := a.opts.Notifier.Notify(res.Offers); err != nil {
			logger.Error("notification failed", "error", err)
			res.Warnings = append(res.Warnings, fmt.Errorf("notifying: %w", err))
		}
	}

	logger.Info("aggregation finished", "new", len(res.Offers), "warnings", len(res.Warnings))
	return res, ctx.Err()
}

// score drops offers the scorer judges ineligible. Scorer errors keep the offer.
func (a *Aggregator) score(ctx context.Context, offers []model.Offer, logger *slog.Logger) []model.Offer {
	if a.scorer == nil {
		return offers
	}
	kept := make([]model.Offer, 0, len(offers))
	for _, o := range offers {
		v, err := a.scorer.Score(ctx, o)
		if err != nil {
			logger.Warn("scoring failed, keeping offer", "url", o.JobURL, "error", err)
			kept = append(kept, o)
			continue
		}
		if !v.Eligible {
			logger.Info("offer scored out", "url", o.JobURL, "reason", v.Reason)
			continue
		}
		kept = append(kept, o)
	}
	return kept
}
