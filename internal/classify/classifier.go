package classify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/abhisek/rpscam/internal/move"
)

var (
	ErrNotReady         = errors.New("classifier is still loading")
	ErrModelUnavailable = errors.New("classifier model unavailable")
	ErrPredictionFailed = errors.New("failed to predict the move")
)

//go:generate mockgen -package=mocks -destination=mocks/mock_classifier.go github.com/abhisek/rpscam/internal/classify Classifier

// Classifier maps a captured frame to a move with a confidence distribution.
type Classifier interface {
	// Classify returns the predicted move. An unresolvable prediction is
	// reported as ErrPredictionFailed.
	Classify(ctx context.Context, img image.Image) (*Prediction, error)
}

// Prediction is a resolved classification.
type Prediction struct {
	Move move.Move

	// Scores holds one confidence per move, in move.Labels() order.
	Scores []float64
}

// Confidence returns the score of the predicted move.
func (p *Prediction) Confidence() float64 {
	if p == nil || int(p.Move) >= len(p.Scores) {
		return 0
	}
	return p.Scores[p.Move]
}

// Argmax picks the move with the highest score. Ties go to the move declared
// first. It reports false when scores is not one finite value per move.
func Argmax(scores []float64) (move.Move, bool) {
	if len(scores) != len(move.All()) {
		return 0, false
	}
	best := 0
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return 0, false
		}
		if s > scores[best] {
			best = i
		}
	}
	return move.Move(best), true
}

// Resolve builds a Prediction from raw scores, or fails with
// ErrPredictionFailed when the distribution is degenerate.
func Resolve(scores []float64) (*Prediction, error) {
	m, ok := Argmax(scores)
	if !ok {
		return nil, fmt.Errorf("%w: unusable scores %v", ErrPredictionFailed, scores)
	}
	out := make([]float64, len(scores))
	copy(out, scores)
	return &Prediction{Move: m, Scores: out}, nil
}

// ModelLoadError reports a classifier backend that could not be loaded.
type ModelLoadError struct {
	Source string
	Err    error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Source, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }
