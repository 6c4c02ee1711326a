package round

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/score"
)

// ErrRoundInProgress is returned by Start while a round is counting down,
// capturing or resolving.
var ErrRoundInProgress = errors.New("round already in progress")

// State is the phase of the current round.
type State int

const (
	Idle State = iota
	Countdown
	Capturing
	Resolving
	ShowingResult
)

func (s State) String() string {
	switch s {
	case Countdown:
		return "countdown"
	case Capturing:
		return "capturing"
	case Resolving:
		return "resolving"
	case ShowingResult:
		return "showing_result"
	default:
		return "idle"
	}
}

// Busy reports whether a new round must be refused in this state.
func (s State) Busy() bool {
	return s == Countdown || s == Capturing || s == Resolving
}

// TaskKind identifies a scheduled callback.
type TaskKind int

const (
	// TaskTick advances the countdown by one.
	TaskTick TaskKind = iota
	// TaskHideResult hides the outcome banner after the result delay.
	TaskHideResult
)

func (k TaskKind) String() string {
	if k == TaskHideResult {
		return "hide_result"
	}
	return "tick"
}

// Task is a one-shot timer owned by a round. Round is the token of the round
// that scheduled it; a task whose token is no longer current is ignored.
type Task struct {
	Kind  TaskKind
	Round uint64
	After time.Duration
}

// Runtime is the host event loop driving a Controller. Every callback it
// produces must be delivered on the same goroutine that calls the
// Controller.
type Runtime interface {
	// Schedule arranges for Controller.Fire(t) after t.After.
	Schedule(t Task)

	// Cancel drops every pending task and classification of round.
	Cancel(round uint64)

	// Classify runs clf on img off the loop and delivers the outcome through
	// Controller.CaptureDone.
	Classify(round uint64, clf classify.Classifier, img image.Image)
}

// NoticeKind classifies a user-visible failure.
type NoticeKind int

const (
	NoticeModelLoadFailure NoticeKind = iota
	NoticePredictionFailure
	NoticeCameraUnavailable
	NoticeNotReady
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeModelLoadFailure:
		return "model_load_failure"
	case NoticePredictionFailure:
		return "prediction_failure"
	case NoticeCameraUnavailable:
		return "camera_unavailable"
	default:
		return "not_ready"
	}
}

// Notice is a failure surfaced to the player.
type Notice struct {
	Kind  NoticeKind
	Round uint64
	Err   error
}

// Message is the alert text shown to the player.
func (n Notice) Message() string {
	switch n.Kind {
	case NoticeModelLoadFailure:
		return "Failed to load the model."
	case NoticePredictionFailure:
		return "Failed to predict the move."
	case NoticeCameraUnavailable:
		return "Camera unavailable."
	default:
		return "The model is still loading."
	}
}

func (n Notice) String() string {
	if n.Err == nil {
		return n.Message()
	}
	return fmt.Sprintf("%s (%v)", n.Message(), n.Err)
}

// Result is a resolved round.
type Result struct {
	Round      uint64
	Player     move.Move
	Opponent   move.Move
	Outcome    move.Outcome
	Prediction *classify.Prediction
	Scores     score.Snapshot
}

// Listener observes round lifecycle events. Calls happen on the loop
// goroutine and must not block.
type Listener interface {
	RoundStarted(round uint64)
	RoundResolved(r Result)
	Notice(n Notice)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) RoundStarted(uint64)  {}
func (NopListener) RoundResolved(Result) {}
func (NopListener) Notice(Notice)        {}

// Config holds the round timings.
type Config struct {
	// CountdownFrom is the first number shown.
	CountdownFrom int

	// TickInterval is the time between countdown steps.
	TickInterval time.Duration

	// ResultDelay is how long the outcome banner stays up.
	ResultDelay time.Duration
}

// DefaultConfig counts down from 3 in one-second steps and shows the result
// for five seconds.
func DefaultConfig() Config {
	return Config{
		CountdownFrom: 3,
		TickInterval:  time.Second,
		ResultDelay:   5 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.CountdownFrom < 1 {
		return fmt.Errorf("countdown must start at 1 or more, got %d", c.CountdownFrom)
	}
	if c.TickInterval <= 0 || c.ResultDelay <= 0 {
		return fmt.Errorf("tick interval and result delay must be positive")
	}
	return nil
}
