package llm

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/abhisek/rpscam/internal/move"
)

// MockResponse is one scripted answer.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider stands in for a vision API. Scripted responses are returned in
// order; once they run out it answers with Fallback, or fails as unavailable
// when Fallback is nil. Every request is recorded in Calls.
type MockProvider struct {
	mu       sync.Mutex
	script   []MockResponse
	Fallback func(Request) MockResponse
	Calls    []Request
}

// NewMockProvider returns a MockProvider that plays responses in order.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{script: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	var next MockResponse
	switch {
	case len(m.script) > 0:
		next, m.script = m.script[0], m.script[1:]
	case m.Fallback != nil:
		next = m.Fallback(req)
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// CallCount returns the number of Generate calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// FrameDigestScores answers a gesture request with scores derived from the
// bytes of its first image, so a given frame always scores the same. Usage
// bills one input token per 750 image bytes.
func FrameDigestScores(req Request) MockResponse {
	var img []byte
	for _, m := range req.Messages {
		if len(m.Images) > 0 {
			img = m.Images[0].Data
			break
		}
	}
	if len(img) == 0 {
		return MockResponse{Err: &ErrInvalidResponse{Err: errNoFrame}}
	}

	h := fnv.New64a()
	h.Write(img)
	sum := h.Sum64()

	labels := move.Labels()
	weights := make([]float64, len(labels))
	var total float64
	for i := range weights {
		weights[i] = float64(sum>>(16*i)&0xffff) + 1
		total += weights[i]
	}
	scores := make(map[string]float64, len(labels))
	for i, l := range labels {
		scores[l] = weights[i] / total
	}
	content, err := json.Marshal(scores)
	if err != nil {
		return MockResponse{Err: err}
	}
	in := len(img)/750 + 1
	return MockResponse{
		Content: content,
		Usage:   Usage{InputTokens: in, OutputTokens: len(labels) * 4, TotalTokens: in + len(labels)*4},
	}
}

var errNoFrame = errors.New("request carries no frame")
