package classify

import (
	"context"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abhisek/rpscam/internal/move"
)

// MockResult is a canned outcome for MockClassifier.
type MockResult struct {
	Scores []float64
	Err    error
}

// MockClassifier returns canned results in FIFO order and records calls.
// Once the queue is drained it keeps returning the last result.
type MockClassifier struct {
	mu      sync.Mutex
	results []MockResult
	last    *MockResult
	calls   int
}

// NewMockClassifier creates a MockClassifier with the given results.
func NewMockClassifier(results ...MockResult) *MockClassifier {
	return &MockClassifier{results: results}
}

// PredictMoves is a shorthand that queues a one-hot result per move.
func PredictMoves(moves ...move.Move) *MockClassifier {
	m := NewMockClassifier()
	for _, mv := range moves {
		m.Add(MockResult{Scores: OneHot(mv)})
	}
	return m
}

func (m *MockClassifier) Classify(_ context.Context, _ image.Image) (*Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	var r MockResult
	switch {
	case len(m.results) > 0:
		r = m.results[0]
		m.results = m.results[1:]
		m.last = &r
	case m.last != nil:
		r = *m.last
	}

	if r.Err != nil {
		return nil, r.Err
	}
	return Resolve(r.Scores)
}

// Add appends a canned result to the queue.
func (m *MockClassifier) Add(r MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
}

// CallCount returns the number of Classify calls made.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// OneHot returns a score vector that fully favours mv.
func OneHot(mv move.Move) []float64 {
	scores := make([]float64, len(move.All()))
	if mv.Valid() {
		scores[mv] = 1
	}
	return scores
}

// RandomClassifier ignores the frame and predicts a uniformly random move.
// It backs the demo mode when no model asset is available.
type RandomClassifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomClassifier seeds the generator; seed 0 uses the clock.
func NewRandomClassifier(seed uint64) *RandomClassifier {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomClassifier{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomClassifier) Classify(ctx context.Context, _ image.Image) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	mv := move.Move(r.rng.IntN(len(move.All())))
	r.mu.Unlock()
	return Resolve(OneHot(mv))
}
