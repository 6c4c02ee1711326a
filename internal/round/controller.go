package round

import (
	"context"
	"fmt"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/score"
)

// View is the observable state the display renders.
type View struct {
	State State
	Round uint64

	Countdown        int
	CountdownVisible bool

	// PlayerGlyph is empty and OpponentGlyph is move.Placeholder until the
	// moves are revealed.
	PlayerGlyph   string
	OpponentGlyph string
	MovesVisible  bool

	Scores score.Snapshot

	// Outcome and Banner are set once BannerVisible.
	Outcome       move.Outcome
	Banner        string
	BannerVisible bool
}

// Deps are the collaborators a Controller drives.
type Deps struct {
	Runtime  Runtime
	Video    frame.Source
	Opponent move.Source
	Model    *classify.Model
	Board    *score.Board
	Listener Listener
}

// Controller runs the round state machine. It is not safe for concurrent use:
// every method, including the Runtime callbacks, must be called from one
// event loop.
type Controller struct {
	cfg Config
	Deps

	state State
	round uint64

	countdown        int
	countdownVisible bool

	player, opponent       move.Move
	hasPlayer, hasOpponent bool
	movesVisible           bool

	outcome       move.Outcome
	bannerVisible bool

	cameraDown bool
}

// NewController creates an idle controller. A nil Listener is replaced by
// NopListener.
func NewController(cfg Config, deps Deps) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Runtime == nil:
		return nil, fmt.Errorf("round: runtime is required")
	case deps.Video == nil:
		return nil, fmt.Errorf("round: video source is required")
	case deps.Opponent == nil:
		return nil, fmt.Errorf("round: opponent source is required")
	case deps.Model == nil:
		return nil, fmt.Errorf("round: model gate is required")
	}
	if deps.Board == nil {
		deps.Board = score.NewBoard()
	}
	if deps.Listener == nil {
		deps.Listener = NopListener{}
	}
	return &Controller{cfg: cfg, Deps: deps}, nil
}

func (c *Controller) State() State  { return c.state }
func (c *Controller) Round() uint64 { return c.round }

// advance supersedes the current round so its pending tasks and capture
// become stale.
func (c *Controller) advance() {
	c.Runtime.Cancel(c.round)
	c.round++
}

func (c *Controller) clearMoves() {
	c.hasPlayer, c.hasOpponent = false, false
	c.movesVisible = false
	c.bannerVisible = false
}

// Start begins a new round: IDLE or SHOWING_RESULT to COUNTDOWN.
func (c *Controller) Start() error {
	if c.state.Busy() {
		return ErrRoundInProgress
	}
	if c.cameraDown {
		return frame.ErrCameraUnavailable
	}

	c.advance()
	c.state = Countdown
	c.countdown = c.cfg.CountdownFrom
	c.countdownVisible = true
	c.clearMoves()
	c.Video.Play()

	c.Runtime.Schedule(Task{Kind: TaskTick, Round: c.round, After: c.cfg.TickInterval})
	c.Listener.RoundStarted(c.round)
	return nil
}

// Fire delivers a scheduled task. Tasks from superseded rounds are ignored.
func (c *Controller) Fire(t Task) {
	if t.Round != c.round {
		return
	}

	switch t.Kind {
	case TaskTick:
		if c.state != Countdown {
			return
		}
		c.countdown--
		if c.countdown > 0 {
			c.Runtime.Schedule(Task{Kind: TaskTick, Round: c.round, After: c.cfg.TickInterval})
			return
		}
		c.capture()

	case TaskHideResult:
		if c.state != ShowingResult {
			return
		}
		c.bannerVisible = false
		c.state = Idle
	}
}

// capture runs when the countdown reaches zero.
func (c *Controller) capture() {
	c.countdownVisible = false
	c.state = Capturing

	// Drawn only now so nothing about it can leak during the countdown.
	c.opponent = c.Opponent.Draw()
	c.hasOpponent = true

	if err := c.Model.Check(); err != nil {
		kind := NoticeNotReady
		if c.Model.Status() == classify.StatusFailed {
			kind = NoticeModelLoadFailure
		}
		c.abort(kind, err)
		return
	}

	c.Video.Pause()
	img, err := c.Video.Frame(context.Background())
	if err != nil {
		// Start refuses new rounds from here on, so the notice shows once.
		c.cameraDown = true
		c.abort(NoticeCameraUnavailable, err)
		return
	}

	c.Runtime.Classify(c.round, c.Model.Classifier(), img)
}

// CaptureDone delivers the classification of round's frame. Results for a
// superseded round, or arriving outside CAPTURING, are dropped. The player's
// move is the argmax of the prediction's scores; the classifier's own Move
// field is not trusted.
func (c *Controller) CaptureDone(round uint64, pred *classify.Prediction, err error) {
	if round != c.round || c.state != Capturing {
		return
	}
	if err == nil {
		pred, err = resolvePrediction(pred)
	}
	if err != nil {
		c.abort(NoticePredictionFailure, err)
		return
	}

	c.state = Resolving
	c.player = pred.Move
	c.hasPlayer = true
	c.outcome = move.Resolve(c.player, c.opponent)
	c.Board.Record(c.outcome)

	c.movesVisible = true
	c.bannerVisible = true
	c.state = ShowingResult
	c.Runtime.Schedule(Task{Kind: TaskHideResult, Round: c.round, After: c.cfg.ResultDelay})

	c.Listener.RoundResolved(Result{
		Round:      c.round,
		Player:     c.player,
		Opponent:   c.opponent,
		Outcome:    c.outcome,
		Prediction: pred,
		Scores:     c.Board.Snapshot(),
	})
}

// resolvePrediction rebuilds pred from its scores so the move always agrees
// with the distribution.
func resolvePrediction(pred *classify.Prediction) (*classify.Prediction, error) {
	if pred == nil {
		return nil, fmt.Errorf("%w: no prediction", classify.ErrPredictionFailed)
	}
	return classify.Resolve(pred.Scores)
}

// abort drops the round back to IDLE without touching the scores.
func (c *Controller) abort(kind NoticeKind, err error) {
	c.state = Idle
	c.countdownVisible = false
	c.clearMoves()
	c.Listener.Notice(Notice{Kind: kind, Round: c.round, Err: err})
}

// CameraDown reports whether a frame grab has failed. Only Reset does not
// clear it; the video source has to be replaced.
func (c *Controller) CameraDown() bool { return c.cameraDown }

// Reset returns to IDLE from any state, zeroes the scores, clears the moves
// and resumes the video. Pending tasks and captures are cancelled.
func (c *Controller) Reset() {
	c.advance()
	c.state = Idle
	c.countdown = 0
	c.countdownVisible = false
	c.clearMoves()
	c.Board.Reset()
	c.Video.Play()
}

// View returns the current observable state.
func (c *Controller) View() View {
	v := View{
		State:            c.state,
		Round:            c.round,
		Countdown:        c.countdown,
		CountdownVisible: c.countdownVisible,
		OpponentGlyph:    move.Placeholder,
		MovesVisible:     c.movesVisible,
		Scores:           c.Board.Snapshot(),
		BannerVisible:    c.bannerVisible,
	}
	if c.movesVisible {
		if c.hasPlayer {
			v.PlayerGlyph = move.Glyph(c.player)
		}
		if c.hasOpponent {
			v.OpponentGlyph = move.Glyph(c.opponent)
		}
	}
	if c.bannerVisible {
		v.Outcome = c.outcome
		v.Banner = c.outcome.Banner()
	}
	return v
}
