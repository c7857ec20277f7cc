package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/amishk599/offerhound/internal/model"
)

// Policy configures retries. MaxRetries is the number of additional attempts
// after the first failure. BaseDelay is doubled on each subsequent retry.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultPolicy retries twice, starting at 5s.
var DefaultPolicy = Policy{MaxRetries: 2, BaseDelay: 5 * time.Second}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn, retrying transient failures with exponential backoff and jitter.
func Do(ctx context.Context, p Policy, logger *slog.Logger, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}
	if !isRetryable(err) {
		return unwrapPermanent(err)
	}

	lastErr := err
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		delay := p.backoffDelay(attempt, lastErr)

		logger.Warn("retrying after transient error",
			"attempt", attempt,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return unwrapPermanent(err)
		}
		lastErr = err
	}

	return lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (p Policy) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: BaseDelay * 2^(attempt-1)
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}

	// Context cancellation: never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Transient()
	}

	// Non-HTTP errors (network, DNS, etc.) are retryable.
	return true
}

func unwrapPermanent(err error) error {
	var perm *permanentError
	if errors.As(err, &perm) {
		return perm.err
	}
	return err
}

// Source decorates a model.Source with retries. An attempt that already
// emitted records is not retried: the records are downstream and replaying
// the fetch would only duplicate them.
type Source struct {
	inner  model.Source
	policy Policy
	logger *slog.Logger
}

func NewSource(inner model.Source, policy Policy, logger *slog.Logger) *Source {
	return &Source{inner: inner, policy: policy, logger: logger}
}

func (s *Source) Name() string { return s.inner.Name() }

func (s *Source) Fetch(ctx context.Context, strategy model.SearchStrategy, emit model.Emit) error {
	logger := s.logger.With("source", s.inner.Name())
	return Do(ctx, s.policy, logger, func(ctx context.Context) error {
		var emitted atomic.Bool
		err := s.inner.Fetch(ctx, strategy, func(r model.RawOffer) {
			emitted.Store(true)
			emit(r)
		})
		if err != nil && emitted.Load() {
			return Permanent(err)
		}
		return err
	})
}

// RemoteOnly forwards the wrapped source's answer.
func (s *Source) RemoteOnly() bool {
	r, ok := s.inner.(model.RemoteOnlySource)
	return ok && r.RemoteOnly()
}
