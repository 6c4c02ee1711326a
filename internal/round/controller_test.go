package round

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/abhisek/rpscam/internal/classify"
	clfmocks "github.com/abhisek/rpscam/internal/classify/mocks"
	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/frame/mocks"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/score"
)

// manualRuntime queues tasks and classifications until the test delivers them.
type manualRuntime struct {
	tasks     []Task
	cancelled []uint64
	captures  []capture
}

type capture struct {
	round uint64
	clf   classify.Classifier
	img   image.Image
}

func (r *manualRuntime) Schedule(t Task) { r.tasks = append(r.tasks, t) }

func (r *manualRuntime) Cancel(round uint64) { r.cancelled = append(r.cancelled, round) }

func (r *manualRuntime) Classify(round uint64, clf classify.Classifier, img image.Image) {
	r.captures = append(r.captures, capture{round: round, clf: clf, img: img})
}

// next pops the oldest pending task.
func (r *manualRuntime) next(t *testing.T) Task {
	t.Helper()
	require.NotEmpty(t, r.tasks, "no pending task")
	task := r.tasks[0]
	r.tasks = r.tasks[1:]
	return task
}

type fakeVideo struct {
	playing bool
	img     image.Image
	err     error
	grabs   int
}

func (v *fakeVideo) Play()         { v.playing = true }
func (v *fakeVideo) Pause()        { v.playing = false }
func (v *fakeVideo) Playing() bool { return v.playing }
func (v *fakeVideo) Frame(context.Context) (image.Image, error) {
	v.grabs++
	return v.img, v.err
}

type recordingListener struct {
	started  []uint64
	resolved []Result
	notices  []Notice
}

func (l *recordingListener) RoundStarted(r uint64)    { l.started = append(l.started, r) }
func (l *recordingListener) RoundResolved(res Result) { l.resolved = append(l.resolved, res) }
func (l *recordingListener) Notice(n Notice)          { l.notices = append(l.notices, n) }

type harness struct {
	ctrl     *Controller
	rt       *manualRuntime
	video    *fakeVideo
	model    *classify.Model
	board    *score.Board
	listener *recordingListener
}

func newHarness(t *testing.T, model *classify.Model, opponent ...move.Move) *harness {
	t.Helper()
	h := &harness{
		rt:       &manualRuntime{},
		video:    &fakeVideo{playing: true, img: image.NewRGBA(image.Rect(0, 0, 4, 4))},
		model:    model,
		board:    score.NewBoard(),
		listener: &recordingListener{},
	}
	ctrl, err := NewController(DefaultConfig(), Deps{
		Runtime:  h.rt,
		Video:    h.video,
		Opponent: move.NewFixedSource(opponent...),
		Model:    model,
		Board:    h.board,
		Listener: h.listener,
	})
	require.NoError(t, err)
	h.ctrl = ctrl
	return h
}

// countdown starts a round and fires every tick until capture.
func (h *harness) countdown(t *testing.T) {
	t.Helper()
	require.NoError(t, h.ctrl.Start())
	for h.ctrl.State() == Countdown {
		h.ctrl.Fire(h.rt.next(t))
	}
}

// finish delivers the pending classification through its classifier.
func (h *harness) finish(t *testing.T) {
	t.Helper()
	require.NotEmpty(t, h.rt.captures)
	c := h.rt.captures[0]
	h.rt.captures = h.rt.captures[1:]
	pred, err := c.clf.Classify(context.Background(), c.img)
	h.ctrl.CaptureDone(c.round, pred, err)
}

func TestController_InitialView(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)))

	v := h.ctrl.View()
	assert.Equal(t, Idle, v.State)
	assert.False(t, v.CountdownVisible)
	assert.False(t, v.MovesVisible)
	assert.False(t, v.BannerVisible)
	assert.Equal(t, move.Placeholder, v.OpponentGlyph)
	assert.Empty(t, v.PlayerGlyph)
	assert.Equal(t, score.Snapshot{}, v.Scores)
}

func TestController_CountdownSequence(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)), move.Scissors)

	require.NoError(t, h.ctrl.Start())
	v := h.ctrl.View()
	assert.Equal(t, Countdown, v.State)
	assert.True(t, v.CountdownVisible)
	assert.Equal(t, 3, v.Countdown)
	assert.Equal(t, []uint64{1}, h.listener.started)

	var seen []int
	for h.ctrl.State() == Countdown {
		seen = append(seen, h.ctrl.View().Countdown)
		task := h.rt.next(t)
		assert.Equal(t, TaskTick, task.Kind)
		assert.Equal(t, DefaultConfig().TickInterval, task.After)
		h.ctrl.Fire(task)
	}
	assert.Equal(t, []int{3, 2, 1}, seen)
	assert.Equal(t, Capturing, h.ctrl.State())
	assert.False(t, h.ctrl.View().CountdownVisible)
	assert.False(t, h.video.playing, "video must freeze on the captured frame")
	assert.Len(t, h.rt.captures, 1)
}

func TestController_PlayerWins(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)), move.Scissors)

	h.countdown(t)
	h.finish(t)

	v := h.ctrl.View()
	assert.Equal(t, ShowingResult, v.State)
	assert.True(t, v.MovesVisible)
	assert.Equal(t, move.Glyph(move.Rock), v.PlayerGlyph)
	assert.Equal(t, move.Glyph(move.Scissors), v.OpponentGlyph)
	assert.True(t, v.BannerVisible)
	assert.Equal(t, move.PlayerWin.Banner(), v.Banner)
	assert.Equal(t, score.Snapshot{PlayerWins: 1}, v.Scores)

	require.Len(t, h.listener.resolved, 1)
	res := h.listener.resolved[0]
	assert.Equal(t, move.PlayerWin, res.Outcome)
	assert.Equal(t, move.Rock, res.Player)
	assert.Equal(t, move.Scissors, res.Opponent)
}

func TestController_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		player   move.Move
		opponent move.Move
		want     score.Snapshot
	}{
		{"tie leaves scores", move.Paper, move.Paper, score.Snapshot{}},
		{"opponent wins", move.Paper, move.Scissors, score.Snapshot{OpponentWins: 1}},
		{"player wins", move.Scissors, move.Paper, score.Snapshot{PlayerWins: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(tt.player)), tt.opponent)
			h.countdown(t)
			h.finish(t)
			assert.Equal(t, tt.want, h.ctrl.View().Scores)
		})
	}
}

func TestController_ResultHidesAfterDelay(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)), move.Paper)
	h.countdown(t)
	h.finish(t)

	task := h.rt.next(t)
	assert.Equal(t, TaskHideResult, task.Kind)
	assert.Equal(t, DefaultConfig().ResultDelay, task.After)
	h.ctrl.Fire(task)

	v := h.ctrl.View()
	assert.Equal(t, Idle, v.State)
	assert.False(t, v.BannerVisible)
	assert.Empty(t, v.Banner)
	assert.True(t, v.MovesVisible, "moves stay on screen until the next round")
	assert.Equal(t, move.Glyph(move.Paper), v.OpponentGlyph)
}

func TestController_StartRefusedWhileBusy(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)))

	require.NoError(t, h.ctrl.Start())
	assert.ErrorIs(t, h.ctrl.Start(), ErrRoundInProgress)

	h.ctrl.Fire(h.rt.next(t))
	h.ctrl.Fire(h.rt.next(t))
	h.ctrl.Fire(h.rt.next(t))
	require.Equal(t, Capturing, h.ctrl.State())
	assert.ErrorIs(t, h.ctrl.Start(), ErrRoundInProgress)
	assert.Equal(t, uint64(1), h.ctrl.Round())
	assert.Len(t, h.listener.started, 1)
}

func TestController_StartDuringResultBeginsNextRound(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)), move.Scissors)
	h.countdown(t)
	h.finish(t)
	require.Equal(t, ShowingResult, h.ctrl.State())

	require.NoError(t, h.ctrl.Start())
	v := h.ctrl.View()
	assert.Equal(t, Countdown, v.State)
	assert.False(t, v.MovesVisible)
	assert.False(t, v.BannerVisible)
	assert.Equal(t, move.Placeholder, v.OpponentGlyph)
	assert.True(t, h.video.playing)
	assert.Contains(t, h.rt.cancelled, uint64(1))

	// The first round's hide task is now stale.
	stale := h.rt.next(t)
	require.Equal(t, TaskHideResult, stale.Kind)
	h.ctrl.Fire(stale)
	assert.Equal(t, Countdown, h.ctrl.State())
	assert.Equal(t, 3, h.ctrl.View().Countdown)
}

func TestController_ScoresAccumulate(t *testing.T) {
	clf := classify.PredictMoves(move.Rock, move.Rock, move.Paper)
	h := newHarness(t, classify.NewReadyModel(clf), move.Scissors, move.Paper, move.Scissors)

	for range 3 {
		h.countdown(t)
		h.finish(t)
		h.rt.tasks = nil
	}
	assert.Equal(t, score.Snapshot{PlayerWins: 1, OpponentWins: 2}, h.ctrl.View().Scores)
	assert.Equal(t, 3, clf.CallCount())
}

func TestController_ResetAnyState(t *testing.T) {
	tests := []struct {
		name  string
		drive func(t *testing.T, h *harness)
	}{
		{"idle", func(*testing.T, *harness) {}},
		{"countdown", func(t *testing.T, h *harness) { require.NoError(t, h.ctrl.Start()) }},
		{"capturing", func(t *testing.T, h *harness) { h.countdown(t) }},
		{"showing result", func(t *testing.T, h *harness) { h.countdown(t); h.finish(t) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)), move.Scissors)
			h.board.Record(move.OpponentWin)
			tt.drive(t, h)

			h.ctrl.Reset()
			v := h.ctrl.View()
			assert.Equal(t, Idle, v.State)
			assert.Equal(t, score.Snapshot{}, v.Scores)
			assert.False(t, v.CountdownVisible)
			assert.False(t, v.MovesVisible)
			assert.False(t, v.BannerVisible)
			assert.Equal(t, move.Placeholder, v.OpponentGlyph)
			assert.True(t, h.video.playing)
		})
	}
}

func TestController_ResetDropsPendingWork(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)), move.Scissors)
	h.countdown(t)
	require.Len(t, h.rt.captures, 1)

	h.ctrl.Reset()
	assert.Contains(t, h.rt.cancelled, uint64(1))

	// A capture finishing after the reset must not score.
	h.finish(t)
	assert.Equal(t, Idle, h.ctrl.State())
	assert.Equal(t, score.Snapshot{}, h.ctrl.View().Scores)
	assert.Empty(t, h.listener.resolved)
	assert.Empty(t, h.rt.tasks)
}

func TestController_StaleTickIgnored(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)))
	require.NoError(t, h.ctrl.Start())
	first := h.rt.next(t)

	h.ctrl.Reset()
	require.NoError(t, h.ctrl.Start())
	h.ctrl.Fire(first)
	assert.Equal(t, 3, h.ctrl.View().Countdown)
}

func TestController_PredictionFailure(t *testing.T) {
	tests := []struct {
		name   string
		result classify.MockResult
	}{
		{"classifier error", classify.MockResult{Err: classify.ErrPredictionFailed}},
		{"degenerate scores", classify.MockResult{Scores: []float64{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, classify.NewReadyModel(classify.NewMockClassifier(tt.result)), move.Rock)
			h.board.Record(move.PlayerWin)
			h.countdown(t)
			h.finish(t)

			v := h.ctrl.View()
			assert.Equal(t, Idle, v.State)
			assert.False(t, v.MovesVisible)
			assert.Equal(t, move.Placeholder, v.OpponentGlyph)
			assert.Equal(t, score.Snapshot{PlayerWins: 1}, v.Scores)
			require.Len(t, h.listener.notices, 1)
			assert.Equal(t, NoticePredictionFailure, h.listener.notices[0].Kind)
			assert.Equal(t, "Failed to predict the move.", h.listener.notices[0].Message())
			assert.Empty(t, h.listener.resolved)

			// A new round can be started right away.
			assert.NoError(t, h.ctrl.Start())
		})
	}
}

func TestController_RawPredictionWithoutUsableScores(t *testing.T) {
	tests := []struct {
		name string
		pred *classify.Prediction
	}{
		{"zero value", &classify.Prediction{}},
		{"move without scores", &classify.Prediction{Move: move.Paper}},
		{"short scores", &classify.Prediction{Move: move.Rock, Scores: []float64{1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			clf := clfmocks.NewMockClassifier(ctrl)
			clf.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(tt.pred, nil)

			h := newHarness(t, classify.NewReadyModel(clf), move.Scissors)
			h.countdown(t)
			h.finish(t)

			v := h.ctrl.View()
			assert.Equal(t, Idle, v.State)
			assert.Equal(t, score.Snapshot{}, v.Scores)
			assert.Empty(t, h.listener.resolved)
			require.Len(t, h.listener.notices, 1)
			assert.Equal(t, NoticePredictionFailure, h.listener.notices[0].Kind)
			assert.ErrorIs(t, h.listener.notices[0].Err, classify.ErrPredictionFailed)
		})
	}
}

func TestController_MoveFollowsScoreArgmax(t *testing.T) {
	ctrl := gomock.NewController(t)
	clf := clfmocks.NewMockClassifier(ctrl)
	clf.EXPECT().Classify(gomock.Any(), gomock.Any()).
		Return(&classify.Prediction{Move: move.Scissors, Scores: []float64{0.9, 0.05, 0.05}}, nil)

	h := newHarness(t, classify.NewReadyModel(clf), move.Scissors)
	h.countdown(t)
	h.finish(t)

	require.Len(t, h.listener.resolved, 1)
	r := h.listener.resolved[0]
	assert.Equal(t, move.Rock, r.Player)
	assert.Equal(t, move.PlayerWin, r.Outcome)
	assert.Equal(t, move.Rock, r.Prediction.Move)
	assert.Equal(t, move.Glyph(move.Rock), h.ctrl.View().PlayerGlyph)
	assert.Equal(t, score.Snapshot{PlayerWins: 1}, h.ctrl.View().Scores)
}

func TestController_NilPredictionIsFailure(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)))
	h.countdown(t)
	h.ctrl.CaptureDone(h.ctrl.Round(), nil, nil)

	require.Len(t, h.listener.notices, 1)
	assert.Equal(t, NoticePredictionFailure, h.listener.notices[0].Kind)
	assert.ErrorIs(t, h.listener.notices[0].Err, classify.ErrPredictionFailed)
}

func TestController_DuplicateCaptureDone(t *testing.T) {
	h := newHarness(t, classify.NewReadyModel(classify.PredictMoves(move.Rock)), move.Scissors)
	h.countdown(t)

	pred, err := classify.Resolve(classify.OneHot(move.Rock))
	require.NoError(t, err)
	h.ctrl.CaptureDone(h.ctrl.Round(), pred, nil)
	h.ctrl.CaptureDone(h.ctrl.Round(), pred, nil)
	assert.Equal(t, score.Snapshot{PlayerWins: 1}, h.ctrl.View().Scores)
}

func TestController_ModelGate(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		h := newHarness(t, classify.NewModel())
		h.countdown(t)

		assert.Equal(t, Idle, h.ctrl.State())
		assert.Empty(t, h.rt.captures)
		require.Len(t, h.listener.notices, 1)
		assert.Equal(t, NoticeNotReady, h.listener.notices[0].Kind)
		assert.ErrorIs(t, h.listener.notices[0].Err, classify.ErrNotReady)
	})

	t.Run("failed", func(t *testing.T) {
		model := classify.NewModel()
		model.Resolve(nil, errors.New("no such file"))
		h := newHarness(t, model)
		h.countdown(t)

		assert.Equal(t, Idle, h.ctrl.State())
		assert.Equal(t, 0, h.video.grabs)
		require.Len(t, h.listener.notices, 1)
		assert.Equal(t, NoticeModelLoadFailure, h.listener.notices[0].Kind)
		assert.ErrorIs(t, h.listener.notices[0].Err, classify.ErrModelUnavailable)
	})

	t.Run("ready after load", func(t *testing.T) {
		model := classify.NewModel()
		h := newHarness(t, model, move.Rock)
		model.Resolve(classify.PredictMoves(move.Paper), nil)
		h.countdown(t)
		h.finish(t)
		assert.Equal(t, score.Snapshot{PlayerWins: 1}, h.ctrl.View().Scores)
	})
}

func TestController_CameraUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	video := mocks.NewMockSource(ctrl)
	video.EXPECT().Play().AnyTimes()
	video.EXPECT().Pause().Times(1)
	video.EXPECT().Frame(gomock.Any()).Return(nil, frame.ErrCameraUnavailable).Times(1)

	rt := &manualRuntime{}
	listener := &recordingListener{}
	c, err := NewController(DefaultConfig(), Deps{
		Runtime:  rt,
		Video:    video,
		Opponent: move.NewFixedSource(move.Rock),
		Model:    classify.NewReadyModel(classify.PredictMoves(move.Rock)),
		Listener: listener,
	})
	require.NoError(t, err)

	require.NoError(t, c.Start())
	for c.State() == Countdown {
		c.Fire(rt.next(t))
	}

	assert.Equal(t, Idle, c.State())
	assert.True(t, c.CameraDown())
	require.Len(t, listener.notices, 1)
	assert.Equal(t, NoticeCameraUnavailable, listener.notices[0].Kind)
	assert.ErrorIs(t, c.Start(), frame.ErrCameraUnavailable)
	assert.Len(t, listener.notices, 1)
}

func TestNewController_Validation(t *testing.T) {
	model := classify.NewReadyModel(classify.PredictMoves(move.Rock))
	base := Deps{
		Runtime:  &manualRuntime{},
		Video:    &fakeVideo{},
		Opponent: move.NewFixedSource(),
		Model:    model,
	}

	_, err := NewController(DefaultConfig(), base)
	assert.NoError(t, err)

	bad := DefaultConfig()
	bad.CountdownFrom = 0
	_, err = NewController(bad, base)
	assert.Error(t, err)

	noRuntime := base
	noRuntime.Runtime = nil
	_, err = NewController(DefaultConfig(), noRuntime)
	assert.Error(t, err)

	noModel := base
	noModel.Model = nil
	_, err = NewController(DefaultConfig(), noModel)
	assert.Error(t, err)
}
