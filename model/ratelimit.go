package model

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedModelOptions configures NewRateLimitedModel.
type RateLimitedModelOptions struct {
	// Burst is the number of requests that may be issued at once before
	// the per-minute rate applies.
	Burst int
}

// RateLimitedModel wraps a Model and throttles Generate calls with a token
// bucket. Providers meter chat completions per minute; wrapping the model
// here keeps every agent sharing it within the provider's quota without
// each call site caring.
type RateLimitedModel struct {
	inner   Model
	limiter *rate.Limiter
}

// NewRateLimitedModel wraps inner so at most requestsPerMinute Generate
// calls start per minute. Waiting respects the caller's context.
func NewRateLimitedModel(inner Model, requestsPerMinute int, optFns ...func(o *RateLimitedModelOptions)) *RateLimitedModel {
	opts := RateLimitedModelOptions{
		Burst: 1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	perSec := float64(requestsPerMinute) / 60.0

	return &RateLimitedModel{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSec), opts.Burst),
	}
}

// Generate blocks until the limiter grants a slot, then delegates to the
// wrapped model. A context cancellation while waiting is reported on the
// error channel like any other provider failure.
func (m *RateLimitedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	if err := m.limiter.Wait(ctx); err != nil {
		respCh := make(chan Response)
		errCh := make(chan error, 1)
		errCh <- fmt.Errorf("rate limit wait: %w", err)
		close(respCh)
		close(errCh)
		return respCh, errCh
	}

	return m.inner.Generate(ctx, req)
}

// Info returns the wrapped model's info.
func (m *RateLimitedModel) Info() Info {
	return m.inner.Info()
}
