package game

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/round"
)

// ErrLoopStopped is returned when work is posted to a loop that has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop is a single-goroutine event loop that runs a Session headless. It
// implements round.Runtime: timers are real time.Timers and each
// classification runs on its own goroutine, and both post their outcome back
// onto the loop.
type Loop struct {
	events chan func()
	done   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// Owned by the loop goroutine.
	sess    *Session
	timers  map[uint64][]*time.Timer
	pending map[uint64]context.CancelFunc

	runOnce sync.Once
	wg      sync.WaitGroup
}

// NewLoop creates a loop. Attach a session, then call Run.
func NewLoop() *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		events:  make(chan func(), 64),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		timers:  make(map[uint64][]*time.Timer),
		pending: make(map[uint64]context.CancelFunc),
	}
}

// Attach sets the session that receives timer and capture callbacks. Call it
// before Run.
func (l *Loop) Attach(s *Session) {
	l.sess = s
}

// Run processes posted work until ctx is done. It stops every timer and
// in-flight classification before returning.
func (l *Loop) Run(ctx context.Context) error {
	err := ErrLoopStopped
	l.runOnce.Do(func() {
		defer l.shutdown()
		for {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case fn := <-l.events:
				fn()
			}
		}
	})
	return err
}

func (l *Loop) shutdown() {
	close(l.done)
	l.cancel()
	for id := range l.timers {
		l.stopTimers(id)
	}
	l.wg.Wait()
}

// Post queues fn to run on the loop. It reports false once the loop has
// stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule implements round.Runtime.
func (l *Loop) Schedule(t round.Task) {
	var timer *time.Timer
	timer = time.AfterFunc(t.After, func() {
		l.Post(func() {
			l.forget(t.Round, timer)
			l.sess.Fire(t)
		})
	})
	l.timers[t.Round] = append(l.timers[t.Round], timer)
}

// Cancel implements round.Runtime.
func (l *Loop) Cancel(roundID uint64) {
	l.stopTimers(roundID)
	if cancel, ok := l.pending[roundID]; ok {
		cancel()
		delete(l.pending, roundID)
	}
}

// Classify implements round.Runtime.
func (l *Loop) Classify(roundID uint64, clf classify.Classifier, img image.Image) {
	ctx, cancel := context.WithCancel(l.ctx)
	l.pending[roundID] = cancel

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()

		start := time.Now()
		pred, err := clf.Classify(ctx, img)
		took := time.Since(start)

		l.Post(func() {
			delete(l.pending, roundID)
			l.sess.CaptureDone(roundID, pred, err, took)
		})
	}()
}

// Pending reports the number of live timers and classifications.
func (l *Loop) Pending() (timers, classifications int) {
	for _, ts := range l.timers {
		timers += len(ts)
	}
	return timers, len(l.pending)
}

func (l *Loop) stopTimers(roundID uint64) {
	for _, t := range l.timers[roundID] {
		t.Stop()
	}
	delete(l.timers, roundID)
}

func (l *Loop) forget(roundID uint64, timer *time.Timer) {
	ts := l.timers[roundID]
	for i, t := range ts {
		if t == timer {
			l.timers[roundID] = append(ts[:i], ts[i+1:]...)
			break
		}
	}
	if len(l.timers[roundID]) == 0 {
		delete(l.timers, roundID)
	}
}
