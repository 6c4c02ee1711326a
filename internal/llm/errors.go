package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit reports an HTTP 429 from the vision provider. RetryAfter is
// the server's hint, zero when it gave none.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("vision provider rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("vision provider rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the model answered, but not with scores the
// request's schema accepts. Content keeps the answer for the event log.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("vision model returned unusable scores: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures and 5xx answers.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "vision provider unavailable"
	}
	return fmt.Sprintf("vision provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the answer was cut off before its JSON closed.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
	Limit   int
}

func (e *ErrMaxTokensExceeded) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("vision model answer truncated at %d tokens", e.Limit)
	}
	return "vision model answer truncated"
}

// ErrRefused means the provider's safety filter declined to look at the
// frame. The same frame will be declined again.
type ErrRefused struct {
	Content json.RawMessage
}

func (e *ErrRefused) Error() string {
	return "vision provider refused to classify the frame"
}

// ErrUnsupportedImage rejects a frame attachment before it is sent.
type ErrUnsupportedImage struct {
	MIMEType string
	Reason   string
}

func (e *ErrUnsupportedImage) Error() string {
	if e.MIMEType == "" {
		return "unsupported frame image: " + e.Reason
	}
	return fmt.Sprintf("unsupported frame image %q: %s", e.MIMEType, e.Reason)
}

// retryPolicy is how the retry decorator treats one failed attempt.
type retryPolicy int

const (
	// giveUp: sending the same frame again cannot help.
	giveUp retryPolicy = iota
	// resample: the model may score the frame properly on a second look, but
	// not on a third.
	resample
	// backOff: the provider is struggling; wait and try again.
	backOff
)

func policyFor(err error) retryPolicy {
	var (
		maxTok  *ErrMaxTokensExceeded
		badImg  *ErrUnsupportedImage
		refused *ErrRefused
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return giveUp
	case errors.As(err, &maxTok), errors.As(err, &badImg), errors.As(err, &refused):
		return giveUp
	case errors.As(err, &invalid):
		return resample
	default:
		// Rate limits, outages and bare network errors.
		return backOff
	}
}
