package play

import (
	"time"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/round"
)

// modelLoadedMsg carries the outcome of the asynchronous classifier load.
type modelLoadedMsg struct {
	Classifier classify.Classifier
	Err        error
}

// taskMsg is a round timer that has elapsed.
type taskMsg struct {
	Task round.Task
}

// captureMsg is a finished classification.
type captureMsg struct {
	Round      uint64
	Prediction *classify.Prediction
	Err        error
	Took       time.Duration
}
