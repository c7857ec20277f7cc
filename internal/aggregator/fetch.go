package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/offerhound/internal/filter"
	"github.com/amishk599/offerhound/internal/model"
	"github.com/amishk599/offerhound/internal/normalize"
)

// sourceRun collects one source's accepted offers in arrival order.
type sourceRun struct {
	mu       sync.Mutex
	closed   bool
	stats    SourceStats
	accepted []model.Offer
}

// fetchAll fetches every source concurrently and returns their runs in
// configured order. A failing source never affects the others.
func (a *Aggregator) fetchAll(ctx context.Context, strategy model.SearchStrategy, cfg filter.Config, logger *slog.Logger) []*sourceRun {
	runs := make([]*sourceRun, len(a.sources))

	var g errgroup.Group
	if a.opts.SourceWorkers > 0 {
		g.SetLimit(a.opts.SourceWorkers)
	}
	for i, spec := range a.sources {
		runs[i] = &sourceRun{stats: SourceStats{Name: spec.Source.Name(), Rejected: make(map[string]int)}}
		g.Go(func() error {
			a.fetchOne(ctx, spec, strategy, cfg, runs[i], logger)
			return nil
		})
	}
	g.Wait()
	return runs
}

func (a *Aggregator) fetchOne(ctx context.Context, spec SourceSpec, strategy model.SearchStrategy, cfg filter.Config, run *sourceRun, logger *slog.Logger) {
	name := spec.Source.Name()
	pipeline := filter.NewPipeline(cfg, filter.WithoutStages(skipStages(spec)...))

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = a.opts.SourceTimeout
	}
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	emit := func(raw model.RawOffer) {
		o := normalize.Normalize(raw, name)
		v := pipeline.Evaluate(o)

		run.mu.Lock()
		defer run.mu.Unlock()
		if run.closed {
			return
		}
		run.stats.Fetched++
		if !v.Accepted {
			run.stats.Rejected[v.Stage]++
			logger.Debug("offer rejected", "source", name, "stage", v.Stage, "url", o.JobURL)
			return
		}
		run.stats.Accepted++
		run.accepted = append(run.accepted, o)
	}

	start := time.Now()
	err := fetchRecovering(fctx, spec.Source, strategy, emit)

	run.mu.Lock()
	run.closed = true
	run.stats.Duration = time.Since(start)
	run.stats.Err = err
	run.mu.Unlock()

	if err != nil {
		logger.Error("source failed", "source", name, "fetched", run.stats.Fetched, "error", err)
	}
}

// fetchRecovering turns a panic on the fetching goroutine into an error so one
// broken adapter cannot end the run.
func fetchRecovering(ctx context.Context, src model.Source, strategy model.SearchStrategy, emit model.Emit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return src.Fetch(ctx, strategy, emit)
}

func skipStages(spec SourceSpec) []string {
	skip := append([]string(nil), spec.SkipStages...)
	if ro, ok := spec.Source.(model.RemoteOnlySource); ok && ro.RemoteOnly() {
		skip = append(skip, filter.StageRemote)
	}
	return skip
}
