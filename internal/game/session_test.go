package game

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/abhisek/rpscam/internal/classify"
	clfmocks "github.com/abhisek/rpscam/internal/classify/mocks"
	"github.com/abhisek/rpscam/internal/frame"
	framemocks "github.com/abhisek/rpscam/internal/frame/mocks"
	"github.com/abhisek/rpscam/internal/metrics"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/round"
	"github.com/abhisek/rpscam/internal/score"
	"github.com/abhisek/rpscam/internal/store"
)

// stepRuntime records tasks and captures so tests control time.
type stepRuntime struct {
	tasks     []round.Task
	cancelled []uint64
	captures  []stepCapture
}

type stepCapture struct {
	round uint64
	clf   classify.Classifier
	img   image.Image
}

func (r *stepRuntime) Schedule(t round.Task)  { r.tasks = append(r.tasks, t) }
func (r *stepRuntime) Cancel(roundID uint64) { r.cancelled = append(r.cancelled, roundID) }
func (r *stepRuntime) Classify(roundID uint64, clf classify.Classifier, img image.Image) {
	r.captures = append(r.captures, stepCapture{round: roundID, clf: clf, img: img})
}

// recordingRepo keeps every appended game event.
type recordingRepo struct {
	sessions []store.SessionEventData
	rounds   []store.RoundEventData
	notices  []store.NoticeEventData
	err      error
}

func (r *recordingRepo) AppendSession(_ context.Context, d store.SessionEventData) error {
	r.sessions = append(r.sessions, d)
	return r.err
}

func (r *recordingRepo) AppendRound(_ context.Context, d store.RoundEventData) error {
	r.rounds = append(r.rounds, d)
	return r.err
}

func (r *recordingRepo) AppendNotice(_ context.Context, d store.NoticeEventData) error {
	r.notices = append(r.notices, d)
	return r.err
}

type SessionSuite struct {
	suite.Suite

	ctrl    *gomock.Controller
	video   *framemocks.MockSource
	clf     *clfmocks.MockClassifier
	rt      *stepRuntime
	repo    *recordingRepo
	metrics *metrics.Metrics
	sess    *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.video = framemocks.NewMockSource(s.ctrl)
	s.video.EXPECT().Play().AnyTimes()
	s.video.EXPECT().Pause().AnyTimes()
	s.video.EXPECT().Frame(gomock.Any()).Return(image.NewRGBA(image.Rect(0, 0, 8, 8)), nil).AnyTimes()

	s.clf = clfmocks.NewMockClassifier(s.ctrl)
	s.rt = &stepRuntime{}
	s.repo = &recordingRepo{}
	s.metrics = metrics.New()

	sess, err := NewSession(s.rt, Options{
		Video:    s.video,
		Opponent: move.NewFixedSource(move.Paper, move.Rock, move.Scissors),
		Backend:  classify.BackendMock,
		Repo:     s.repo,
		Metrics:  s.metrics,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.Require().NoError(err)
	s.sess = sess
}

// countdown starts a round and fires its ticks.
func (s *SessionSuite) countdown() {
	s.Require().NoError(s.sess.StartRound())
	for s.sess.View().State == round.Countdown {
		s.Require().NotEmpty(s.rt.tasks)
		t := s.rt.tasks[0]
		s.rt.tasks = s.rt.tasks[1:]
		s.sess.Fire(t)
	}
}

// capture runs the pending classification.
func (s *SessionSuite) capture() {
	s.Require().NotEmpty(s.rt.captures)
	c := s.rt.captures[0]
	s.rt.captures = s.rt.captures[1:]
	pred, err := c.clf.Classify(context.Background(), c.img)
	s.sess.CaptureDone(c.round, pred, err, 40*time.Millisecond)
}

func (s *SessionSuite) loadModel() {
	s.sess.ModelLoaded(s.clf, nil)
	s.Require().True(s.sess.Model().Ready())
}

func (s *SessionSuite) expectMove(m move.Move) {
	s.clf.EXPECT().Classify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, image.Image) (*classify.Prediction, error) {
			return classify.Resolve(classify.OneHot(m))
		})
}

func (s *SessionSuite) TestSessionStartRecorded() {
	s.NotEmpty(s.sess.ID())
	s.Require().Len(s.repo.sessions, 1)
	s.Equal(store.SessionStart, s.repo.sessions[0].Action)
	s.Equal(classify.BackendMock, s.repo.sessions[0].Classifier)
	s.Equal(s.sess.ID(), s.repo.sessions[0].SessionID)
}

func (s *SessionSuite) TestStartRoundWhileLoading() {
	s.ErrorIs(s.sess.StartRound(), classify.ErrNotReady)
	s.Equal(round.Idle, s.sess.View().State)
	s.Empty(s.rt.tasks)
}

func (s *SessionSuite) TestModelLoadFailure() {
	s.sess.ModelLoaded(nil, &classify.ModelLoadError{Source: "model.json", Err: errors.New("no such file")})

	notices := s.sess.Notices()
	s.Require().Len(notices, 1)
	s.Equal(round.NoticeModelLoadFailure, notices[0].Kind)
	s.Equal("Failed to load the model.", notices[0].Message())
	s.ErrorIs(s.sess.StartRound(), classify.ErrModelUnavailable)

	// A later load result is ignored.
	s.sess.ModelLoaded(s.clf, nil)
	s.False(s.sess.Model().Ready())
	s.Len(s.repo.notices, 1)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Notices.WithLabelValues("model_load_failure")))
}

func (s *SessionSuite) TestPlayerWinsRound() {
	s.loadModel()
	s.expectMove(move.Scissors)

	s.countdown()
	s.capture()

	v := s.sess.View()
	s.Equal(round.ShowingResult, v.State)
	s.Equal(score.Snapshot{PlayerWins: 1}, v.Scores)
	s.Equal("You won!", v.Banner)

	s.Require().Len(s.repo.rounds, 1)
	ev := s.repo.rounds[0]
	s.Equal("scissors", ev.PlayerMove)
	s.Equal("paper", ev.OpponentMove)
	s.Equal("player_win", ev.Outcome)
	s.Equal(1, ev.PlayerWins)
	s.Equal(int64(40), ev.ClassifyMs)
	s.Equal(classify.OneHot(move.Scissors), ev.Scores)

	s.Require().NotNil(s.sess.LastResult())
	s.Equal(move.PlayerWin, s.sess.LastResult().Outcome)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rounds.WithLabelValues("player_win")))

	// Banner hides after the result delay.
	s.Require().Len(s.rt.tasks, 1)
	s.Equal(round.TaskHideResult, s.rt.tasks[0].Kind)
	s.Equal(5*time.Second, s.rt.tasks[0].After)
	s.sess.Fire(s.rt.tasks[0])
	s.Equal(round.Idle, s.sess.View().State)
	s.False(s.sess.View().BannerVisible)
}

func (s *SessionSuite) TestStartRoundWhileBusyIsNoop() {
	s.loadModel()
	s.Require().NoError(s.sess.StartRound())
	before := s.sess.View()

	s.ErrorIs(s.sess.StartRound(), ErrRoundInProgress)
	s.Equal(before, s.sess.View())
	s.Len(s.rt.tasks, 1)
}

func (s *SessionSuite) TestPredictionFailure() {
	s.loadModel()
	s.clf.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(nil, classify.ErrPredictionFailed)

	s.countdown()
	s.capture()

	s.Equal(round.Idle, s.sess.View().State)
	s.Equal(score.Snapshot{}, s.sess.View().Scores)
	s.Require().Len(s.sess.Notices(), 1)
	s.Equal(round.NoticePredictionFailure, s.sess.Notices()[0].Kind)
	s.Require().Len(s.repo.notices, 1)
	s.Equal("prediction_failure", s.repo.notices[0].Kind)
	s.Equal("Failed to predict the move.", s.repo.notices[0].Message)
	s.Empty(s.repo.rounds)

	s.sess.DismissNotice()
	s.Empty(s.sess.Notices())
	s.sess.DismissNotice()
}

func (s *SessionSuite) TestResetGame() {
	s.loadModel()
	s.expectMove(move.Scissors)
	s.countdown()
	s.capture()
	s.Require().Equal(1, s.sess.View().Scores.PlayerWins)

	s.sess.ResetGame()
	v := s.sess.View()
	s.Equal(round.Idle, v.State)
	s.Equal(score.Snapshot{}, v.Scores)
	s.False(v.MovesVisible)
	s.Nil(s.sess.LastResult())

	s.Require().Len(s.repo.sessions, 2)
	s.Equal(store.SessionReset, s.repo.sessions[1].Action)
	s.Equal(0, s.repo.sessions[1].PlayerWins)
}

func (s *SessionSuite) TestStaleCaptureAfterReset() {
	s.loadModel()
	s.expectMove(move.Scissors)
	s.countdown()
	s.sess.ResetGame()

	s.capture()
	s.Equal(round.Idle, s.sess.View().State)
	s.Equal(score.Snapshot{}, s.sess.View().Scores)
	s.Empty(s.repo.rounds)
	s.Zero(s.sess.lastTook)
}

func (s *SessionSuite) TestRepoFailureDoesNotAffectGame() {
	s.repo.err = errors.New("disk full")
	s.loadModel()
	s.expectMove(move.Scissors)
	s.countdown()
	s.capture()
	s.Equal(score.Snapshot{PlayerWins: 1}, s.sess.View().Scores)
}

func (s *SessionSuite) TestEndRecordsFinalScores() {
	s.loadModel()
	s.expectMove(move.Rock)
	s.countdown()
	s.capture()

	s.sess.End()
	last := s.repo.sessions[len(s.repo.sessions)-1]
	s.Equal(store.SessionEnd, last.Action)
	s.Equal(1, last.OpponentWins)
}

// End-to-end: three ticks, SCISSORS against PAPER, banner hidden after the
// result delay.
func TestSession_EndToEnd(t *testing.T) {
	rt := &stepRuntime{}
	video := &stillVideo{img: image.NewRGBA(image.Rect(0, 0, 8, 8))}
	sess, err := NewSession(rt, Options{
		Video:    video,
		Opponent: move.NewFixedSource(move.Paper),
		Model:    classify.NewReadyModel(classify.PredictMoves(move.Scissors)),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	require.NoError(t, sess.StartRound())
	ticks := 0
	for sess.View().State == round.Countdown {
		task := rt.tasks[0]
		rt.tasks = rt.tasks[1:]
		require.Equal(t, round.TaskTick, task.Kind)
		sess.Fire(task)
		ticks++
	}
	assert.Equal(t, 3, ticks)
	require.Len(t, rt.captures, 1)

	c := rt.captures[0]
	pred, err := c.clf.Classify(context.Background(), c.img)
	sess.CaptureDone(c.round, pred, err, time.Millisecond)

	v := sess.View()
	assert.Equal(t, move.Glyph(move.Scissors), v.PlayerGlyph)
	assert.Equal(t, move.Glyph(move.Paper), v.OpponentGlyph)
	assert.Equal(t, score.Snapshot{PlayerWins: 1}, v.Scores)
	assert.True(t, v.BannerVisible)

	require.Len(t, rt.tasks, 1)
	sess.Fire(rt.tasks[0])
	assert.Equal(t, round.Idle, sess.View().State)
	assert.False(t, sess.View().BannerVisible)
}

func TestSession_CameraUnavailable(t *testing.T) {
	rt := &stepRuntime{}
	sess, err := NewSession(rt, Options{
		Video:  &stillVideo{err: frame.ErrCameraUnavailable},
		Model:  classify.NewReadyModel(classify.PredictMoves(move.Rock)),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	require.NoError(t, sess.StartRound())
	for sess.View().State == round.Countdown {
		task := rt.tasks[0]
		rt.tasks = rt.tasks[1:]
		sess.Fire(task)
	}
	require.Len(t, sess.Notices(), 1)
	assert.Equal(t, round.NoticeCameraUnavailable, sess.Notices()[0].Kind)
	assert.ErrorIs(t, sess.StartRound(), frame.ErrCameraUnavailable)
	assert.Len(t, sess.Notices(), 1)
}

func TestSession_WithEventStore(t *testing.T) {
	s, err := store.Open("file:TestSession_WithEventStore?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()

	rt := &stepRuntime{}
	sess, err := NewSession(rt, Options{
		Video:    &stillVideo{img: image.NewRGBA(image.Rect(0, 0, 8, 8))},
		Opponent: move.NewFixedSource(move.Rock),
		Model:    classify.NewReadyModel(classify.PredictMoves(move.Paper)),
		Repo:     s.Events(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	require.NoError(t, sess.StartRound())
	for sess.View().State == round.Countdown {
		task := rt.tasks[0]
		rt.tasks = rt.tasks[1:]
		sess.Fire(task)
	}
	c := rt.captures[0]
	pred, err := c.clf.Classify(context.Background(), c.img)
	sess.CaptureDone(c.round, pred, err, time.Millisecond)

	rounds, err := s.Events().RecentRounds(context.Background(), store.QueryOpts{SessionID: sess.ID()})
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, "paper", rounds[0].PlayerMove)
	assert.Equal(t, "rock", rounds[0].OpponentMove)
	assert.Equal(t, "player_win", rounds[0].Outcome)
}

// stillVideo serves one fixed frame or error.
type stillVideo struct {
	img     image.Image
	err     error
	playing bool
}

func (v *stillVideo) Play()         { v.playing = true }
func (v *stillVideo) Pause()        { v.playing = false }
func (v *stillVideo) Playing() bool { return v.playing }
func (v *stillVideo) Frame(context.Context) (image.Image, error) {
	return v.img, v.err
}
