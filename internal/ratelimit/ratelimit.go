package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/amishk599/offerhound/internal/model"
)

// Limiter enforces a minimum delay between calls sharing a key, typically the
// upstream host family ("greenhouse", "lever", "hackernews").
type Limiter struct {
	mu        sync.Mutex
	next      map[string]time.Time // earliest start for the next call per key
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewLimiter creates a limiter with minDelay between consecutive calls on the
// same key. overrides replaces the delay for specific keys.
func NewLimiter(minDelay time.Duration, overrides map[string]time.Duration) *Limiter {
	return &Limiter{
		next:      make(map[string]time.Time),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

func (l *Limiter) delayFor(key string) time.Duration {
	if d, ok := l.overrides[key]; ok {
		return d
	}
	return l.minDelay
}

// Wait blocks until the caller's reserved slot for key arrives. Slots are
// reserved under the lock, so concurrent callers queue up instead of all
// waking at the same instant.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	now := time.Now()
	start := now
	if n, ok := l.next[key]; ok && n.After(now) {
		start = n
	}
	l.next[key] = start.Add(l.delayFor(key))
	l.mu.Unlock()

	return sleep(ctx, start.Sub(now), key)
}

// Source decorates a model.Source with a Limiter wait before each Fetch.
// All sources hitting the same upstream should share one Limiter and key.
type Source struct {
	inner   model.Source
	limiter *Limiter
	key     string
}

func NewSource(inner model.Source, limiter *Limiter, key string) *Source {
	return &Source{inner: inner, limiter: limiter, key: key}
}

func (s *Source) Name() string { return s.inner.Name() }

func (s *Source) Fetch(ctx context.Context, strategy model.SearchStrategy, emit model.Emit) error {
	if err := s.limiter.Wait(ctx, s.key); err != nil {
		return err
	}
	return s.inner.Fetch(ctx, strategy, emit)
}

// RemoteOnly forwards the wrapped source's answer.
func (s *Source) RemoteOnly() bool {
	r, ok := s.inner.(model.RemoteOnlySource)
	return ok && r.RemoteOnly()
}

// Pacer spaces out sequential calls with a random delay in [min, max].
// The first call never waits. A Pacer is meant for one sequential loop and
// is not safe for concurrent use.
type Pacer struct {
	min, max time.Duration
	started  bool
	jitter   func(n int64) int64
}

func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{min: min, max: max, jitter: rand.Int64N}
}

// Wait sleeps for the jittered delay, except on the first call.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.started {
		p.started = true
		return ctx.Err()
	}
	return sleep(ctx, p.delay(), "pacer")
}

func (p *Pacer) delay() time.Duration {
	span := int64(p.max - p.min)
	if span <= 0 {
		return p.min
	}
	return p.min + time.Duration(p.jitter(span+1))
}

func sleep(ctx context.Context, d time.Duration, key string) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-t.C:
		return nil
	}
}
