package ai

import (
	"context"
	"log/slog"

	"github.com/amishk599/offerhound/internal/retry"
)

type retryingProvider struct {
	inner  Provider
	policy retry.Policy
	logger *slog.Logger
}

// WithRetry retries transient provider failures (429, 5xx, network) under
// policy. Rejections such as 401 are returned at once.
func WithRetry(p Provider, policy retry.Policy, logger *slog.Logger) Provider {
	return &retryingProvider{inner: p, policy: policy, logger: logger.With("component", "ai")}
}

func (r *retryingProvider) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	err := retry.Do(ctx, r.policy, r.logger, func(ctx context.Context) error {
		s, err := r.inner.Complete(ctx, prompt)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}
