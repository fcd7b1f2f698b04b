package agent

import (
	"context"
	"errors"
)

// ErrProviderFailure marks a provider error or timeout. The pipeline logs it
// and falls back to the persona default; it is never returned to callers.
var ErrProviderFailure = errors.New("provider failure")

// Provider produces a free-text reply for a decision request. It must
// honour ctx cancellation.
type Provider interface {
	RequestDecision(ctx context.Context, req Request) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (string, error)

func (f ProviderFunc) RequestDecision(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
