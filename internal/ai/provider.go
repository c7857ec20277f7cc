package ai

import "context"

// Provider completes a prompt with a chat model. The answer is expected to be
// the JSON verdict object described in the prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
