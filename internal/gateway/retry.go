package gateway

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts bounds retries of transient failures.
	DefaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// Retrier wraps a Gateway with bounded exponential backoff on transient
// failures. Protocol errors and context cancellation pass through
// immediately.
type Retrier struct {
	inner       Gateway
	maxAttempts int
	baseDelay   time.Duration
}

// WithRetry decorates g. maxAttempts <= 0 selects DefaultMaxAttempts.
func WithRetry(g Gateway, maxAttempts int) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Retrier{inner: g, maxAttempts: maxAttempts, baseDelay: defaultBaseDelay}
}

func (r *Retrier) Name() string { return r.inner.Name() }

func (r *Retrier) Translate(ctx context.Context, req Request) ([]string, error) {
	var lastErr error
	delay := r.baseDelay
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		out, err := r.inner.Translate(ctx, req)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
