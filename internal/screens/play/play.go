package play

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/game"
	"github.com/abhisek/rpscam/internal/metrics"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/round"
	"github.com/abhisek/rpscam/internal/screen"
	"github.com/abhisek/rpscam/internal/store"
	"github.com/abhisek/rpscam/internal/ui/layout"
)

// Deps are the collaborators of a play screen.
type Deps struct {
	Round    round.Config
	Video    frame.Source
	Opponent move.Source

	// Loader opens the classifier off the update loop.
	Loader  classify.Loader
	Backend string

	Repo    store.GameRepo
	Metrics *metrics.Metrics
}

// PlayScreen runs a game session in the terminal.
type PlayScreen struct {
	deps    Deps
	rt      *teaRuntime
	sess    *game.Session
	spinner spinner.Model

	// hint is a one-line response to the last key, such as a refused start.
	hint   string
	errMsg string
	closed bool
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)
var _ screen.StatusProvider = (*PlayScreen)(nil)
var _ screen.Closer = (*PlayScreen)(nil)

// New creates a play screen with a fresh session.
func New(deps Deps) *PlayScreen {
	s := &PlayScreen{
		deps:    deps,
		rt:      newTeaRuntime(),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	sess, err := game.NewSession(s.rt, game.Options{
		Round:    deps.Round,
		Video:    deps.Video,
		Opponent: deps.Opponent,
		Backend:  deps.Backend,
		Repo:     deps.Repo,
		Metrics:  deps.Metrics,
	})
	if err != nil {
		s.errMsg = err.Error()
		return s
	}
	s.sess = sess
	return s
}

func (s *PlayScreen) Init() tea.Cmd {
	if s.sess == nil {
		return nil
	}
	return tea.Batch(s.loadModel(), s.spinner.Tick)
}

func (s *PlayScreen) loadModel() tea.Cmd {
	loader := s.deps.Loader
	return func() tea.Msg {
		if loader == nil {
			return modelLoadedMsg{Err: errors.New("no classifier configured")}
		}
		clf, err := loader(context.Background())
		return modelLoadedMsg{Classifier: clf, Err: err}
	}
}

func (s *PlayScreen) Title() string {
	return "Rock Paper Scissors"
}

func (s *PlayScreen) Status() string {
	if s.sess == nil {
		return ""
	}
	sc := s.sess.View().Scores
	return fmt.Sprintf("You %d : %d CPU", sc.PlayerWins, sc.OpponentWins)
}

func (s *PlayScreen) KeyHints() []layout.KeyHint {
	if s.sess != nil && len(s.sess.Notices()) > 0 {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Dismiss"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Play round"},
		{Key: "R", Description: "Reset"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.sess == nil || s.closed {
		return s, nil
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case modelLoadedMsg:
		s.sess.ModelLoaded(msg.Classifier, msg.Err)

	case taskMsg:
		s.sess.Fire(msg.Task)

	case captureMsg:
		s.rt.done(msg.Round)
		s.sess.CaptureDone(msg.Round, msg.Prediction, msg.Err, msg.Took)

	case spinner.TickMsg:
		if s.sess.Model().Status() == classify.StatusLoading {
			s.spinner, cmd = s.spinner.Update(msg)
		}

	case tea.KeyMsg:
		s.handleKey(msg.String())
	}

	return s, tea.Batch(cmd, s.rt.drain())
}

func (s *PlayScreen) handleKey(key string) {
	if len(s.sess.Notices()) > 0 {
		if key == "enter" || key == "space" {
			s.sess.DismissNotice()
		}
		return
	}

	switch key {
	case "space", "enter":
		s.hint = ""
		if err := s.sess.StartRound(); err != nil {
			s.hint = startRefusal(err)
		}
	case "r":
		s.hint = ""
		s.sess.ResetGame()
	}
}

func startRefusal(err error) string {
	switch {
	case errors.Is(err, game.ErrRoundInProgress):
		return "A round is already in progress."
	case errors.Is(err, classify.ErrNotReady):
		return "The model is still loading."
	case errors.Is(err, classify.ErrModelUnavailable):
		return "The model failed to load; rounds are disabled."
	case errors.Is(err, frame.ErrCameraUnavailable):
		return "Camera unavailable."
	default:
		slog.Warn("start round refused", "error", err)
		return err.Error()
	}
}

// Close ends the session and aborts any in-flight classification.
func (s *PlayScreen) Close() {
	if s.closed || s.sess == nil {
		return
	}
	s.closed = true
	s.rt.cancelAll()
	s.sess.End()
}
