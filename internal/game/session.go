// Package game is the facade the display drives: it owns a round controller,
// the model readiness gate and the score board, and records what happens.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/metrics"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/round"
	"github.com/abhisek/rpscam/internal/score"
	"github.com/abhisek/rpscam/internal/store"
)

// ErrRoundInProgress is returned by StartRound while a round is counting
// down, capturing or resolving.
var ErrRoundInProgress = round.ErrRoundInProgress

// storeTimeout bounds each event-log write made from the loop.
const storeTimeout = 2 * time.Second

// Options configures a Session.
type Options struct {
	Round round.Config

	Video    frame.Source
	Opponent move.Source

	// Model is the readiness gate. Nil starts a fresh gate in the loading
	// state that ModelLoaded resolves.
	Model *classify.Model

	// Backend names the classifier for the session log.
	Backend string

	// Repo and Metrics are optional sinks.
	Repo    store.GameRepo
	Metrics *metrics.Metrics

	// Observer, if set, receives every round event after the session has
	// handled it.
	Observer round.Listener

	Logger *slog.Logger
}

// Session is a single game: a sequence of rounds with cumulative scores.
// Like the controller it wraps, it must only be used from one event loop.
type Session struct {
	id      string
	backend string

	ctrl  *round.Controller
	model *classify.Model
	board *score.Board

	repo     store.GameRepo
	metrics  *metrics.Metrics
	observer round.Listener
	log      *slog.Logger

	notices    []round.Notice
	lastResult *round.Result
	lastTook   time.Duration
}

// NewSession creates a session whose timers and classifications run on rt.
func NewSession(rt round.Runtime, opts Options) (*Session, error) {
	if opts.Model == nil {
		opts.Model = classify.NewModel()
	}
	if opts.Opponent == nil {
		opts.Opponent = move.NewRandomSource(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Round == (round.Config{}) {
		opts.Round = round.DefaultConfig()
	}
	if opts.Observer == nil {
		opts.Observer = round.NopListener{}
	}

	s := &Session{
		id:       uuid.NewString(),
		backend:  opts.Backend,
		model:    opts.Model,
		board:    score.NewBoard(),
		repo:     opts.Repo,
		metrics:  opts.Metrics,
		observer: opts.Observer,
	}
	s.log = opts.Logger.With("session", s.id)

	ctrl, err := round.NewController(opts.Round, round.Deps{
		Runtime:  rt,
		Video:    opts.Video,
		Opponent: opts.Opponent,
		Model:    s.model,
		Board:    s.board,
		Listener: s,
	})
	if err != nil {
		return nil, fmt.Errorf("create round controller: %w", err)
	}
	s.ctrl = ctrl

	s.log.Info("session started", "classifier", s.backend)
	s.record(func(ctx context.Context) error {
		return s.repo.AppendSession(ctx, s.sessionEvent(store.SessionStart))
	})
	return s, nil
}

// ID returns the session's UUID.
func (s *Session) ID() string { return s.id }

// Model returns the readiness gate.
func (s *Session) Model() *classify.Model { return s.model }

// StartRound begins a round. It is a no-op returning ErrRoundInProgress
// while a round is running, and refuses with the model gate's error while
// the classifier is loading or failed to load.
func (s *Session) StartRound() error {
	if s.ctrl.State().Busy() {
		return ErrRoundInProgress
	}
	if err := s.model.Check(); err != nil {
		return err
	}
	return s.ctrl.Start()
}

// ResetGame zeroes the scores and returns to IDLE from any state.
func (s *Session) ResetGame() {
	s.ctrl.Reset()
	s.lastResult = nil
	s.log.Info("game reset")
	s.record(func(ctx context.Context) error {
		return s.repo.AppendSession(ctx, s.sessionEvent(store.SessionReset))
	})
}

// End records the final scores.
func (s *Session) End() {
	snap := s.board.Snapshot()
	s.log.Info("session ended", "player_wins", snap.PlayerWins, "opponent_wins", snap.OpponentWins)
	s.record(func(ctx context.Context) error {
		return s.repo.AppendSession(ctx, s.sessionEvent(store.SessionEnd))
	})
}

// ModelLoaded resolves the readiness gate with the outcome of the
// asynchronous load. Only the first call counts.
func (s *Session) ModelLoaded(clf classify.Classifier, err error) {
	if s.model.Status() != classify.StatusLoading {
		return
	}
	s.model.Resolve(clf, err)
	if s.model.Ready() {
		s.log.Info("classifier ready", "classifier", s.backend)
		return
	}
	s.Notice(round.Notice{Kind: round.NoticeModelLoadFailure, Round: s.ctrl.Round(), Err: s.model.Err()})
}

// Fire delivers a scheduled task.
func (s *Session) Fire(t round.Task) {
	s.ctrl.Fire(t)
}

// CaptureDone delivers a classification outcome and how long it took.
func (s *Session) CaptureDone(roundID uint64, pred *classify.Prediction, err error, took time.Duration) {
	if roundID == s.ctrl.Round() && s.ctrl.State() == round.Capturing {
		s.lastTook = took
		s.metrics.ObserveClassify(took)
	}
	s.ctrl.CaptureDone(roundID, pred, err)
}

// View returns the state the display renders.
func (s *Session) View() round.View {
	return s.ctrl.View()
}

// LastResult returns the most recent resolved round since the last reset.
func (s *Session) LastResult() *round.Result {
	return s.lastResult
}

// Notices returns the undismissed notices, oldest first.
func (s *Session) Notices() []round.Notice {
	out := make([]round.Notice, len(s.notices))
	copy(out, s.notices)
	return out
}

// DismissNotice drops the oldest notice.
func (s *Session) DismissNotice() {
	if len(s.notices) > 0 {
		s.notices = s.notices[1:]
	}
}

// RoundStarted implements round.Listener.
func (s *Session) RoundStarted(roundID uint64) {
	s.log.Debug("round started", "round", roundID)
	s.observer.RoundStarted(roundID)
}

// RoundResolved implements round.Listener.
func (s *Session) RoundResolved(r round.Result) {
	s.lastResult = &r
	s.log.Info("round resolved",
		"round", r.Round,
		"player", r.Player.String(),
		"opponent", r.Opponent.String(),
		"outcome", r.Outcome.String(),
		"player_wins", r.Scores.PlayerWins,
		"opponent_wins", r.Scores.OpponentWins,
	)
	s.metrics.RoundResolved(r.Outcome.String())

	data := store.RoundEventData{
		SessionID:    s.id,
		Round:        r.Round,
		PlayerMove:   r.Player.String(),
		OpponentMove: r.Opponent.String(),
		Outcome:      r.Outcome.String(),
		PlayerWins:   r.Scores.PlayerWins,
		OpponentWins: r.Scores.OpponentWins,
		ClassifyMs:   s.lastTook.Milliseconds(),
	}
	if r.Prediction != nil {
		data.Scores = r.Prediction.Scores
	}
	s.record(func(ctx context.Context) error {
		return s.repo.AppendRound(ctx, data)
	})
	s.observer.RoundResolved(r)
}

// Notice implements round.Listener.
func (s *Session) Notice(n round.Notice) {
	s.notices = append(s.notices, n)
	s.log.Warn("notice", "kind", n.Kind.String(), "round", n.Round, "error", n.Err)
	s.metrics.Notice(n.Kind.String())
	s.record(func(ctx context.Context) error {
		return s.repo.AppendNotice(ctx, store.NoticeEventData{
			SessionID: s.id,
			Round:     n.Round,
			Kind:      n.Kind.String(),
			Message:   n.Message(),
		})
	})
	s.observer.Notice(n)
}

func (s *Session) sessionEvent(action string) store.SessionEventData {
	snap := s.board.Snapshot()
	return store.SessionEventData{
		SessionID:    s.id,
		Action:       action,
		PlayerWins:   snap.PlayerWins,
		OpponentWins: snap.OpponentWins,
		Classifier:   s.backend,
	}
}

// record writes to the event log. Failures are logged and never affect the
// game.
func (s *Session) record(write func(ctx context.Context) error) {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := write(ctx); err != nil {
		s.log.Warn("failed to record event", "error", err)
	}
}
