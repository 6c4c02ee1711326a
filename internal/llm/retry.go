package llm

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryProvider re-sends a classification request after transient failures.
// Requests with an unusable frame attachment are refused without a call.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p with retries governed by cfg.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := checkImages(req); err != nil {
		return nil, err
	}

	attempts := max(r.config.MaxAttempts, 1)
	resampled := false
	var err error
	for attempt := 1; ; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch policyFor(err) {
		case giveUp:
			return nil, err
		case resample:
			if resampled {
				return nil, err
			}
			resampled = true
		}
		if attempt >= attempts {
			return nil, err
		}

		wait := r.wait(attempt, err)
		slog.Debug("retrying vision request",
			"purpose", PurposeFrom(ctx), "attempt", attempt, "wait", wait, "error", err)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// wait is the pause after the given failed attempt (1-based). A rate limit's
// RetryAfter wins; otherwise the wait grows by Multiplier from InitialWait,
// is capped at MaxWait, and jittered by up to a fifth either way.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	d := float64(r.config.InitialWait)
	for i := 1; i < attempt; i++ {
		d *= r.config.Multiplier
	}
	if limit := float64(r.config.MaxWait); limit > 0 && d > limit {
		d = limit
	}
	d *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(max(d, 0))
}
