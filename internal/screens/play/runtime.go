package play

import (
	"context"
	"image"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/round"
)

// teaRuntime implements round.Runtime on the Bubble Tea update loop. Timers
// become tea.Tick commands and classifications become commands whose
// results come back as messages; the screen drains them after every update.
type teaRuntime struct {
	cmds    []tea.Cmd
	pending map[uint64]context.CancelFunc
}

func newTeaRuntime() *teaRuntime {
	return &teaRuntime{pending: make(map[uint64]context.CancelFunc)}
}

func (r *teaRuntime) Schedule(t round.Task) {
	r.cmds = append(r.cmds, tea.Tick(t.After, func(time.Time) tea.Msg {
		return taskMsg{Task: t}
	}))
}

// Cancel aborts an in-flight classification. A tea.Tick cannot be stopped;
// its message arrives with a stale round token and is dropped.
func (r *teaRuntime) Cancel(roundID uint64) {
	if cancel, ok := r.pending[roundID]; ok {
		cancel()
		delete(r.pending, roundID)
	}
}

func (r *teaRuntime) Classify(roundID uint64, clf classify.Classifier, img image.Image) {
	ctx, cancel := context.WithCancel(context.Background())
	r.pending[roundID] = cancel
	r.cmds = append(r.cmds, func() tea.Msg {
		start := time.Now()
		pred, err := clf.Classify(ctx, img)
		return captureMsg{Round: roundID, Prediction: pred, Err: err, Took: time.Since(start)}
	})
}

// done forgets the cancel func of a delivered classification.
func (r *teaRuntime) done(roundID uint64) {
	if cancel, ok := r.pending[roundID]; ok {
		cancel()
		delete(r.pending, roundID)
	}
}

// cancelAll aborts every in-flight classification.
func (r *teaRuntime) cancelAll() {
	for id := range r.pending {
		r.Cancel(id)
	}
}

// drain returns the queued commands as one batch.
func (r *teaRuntime) drain() tea.Cmd {
	if len(r.cmds) == 0 {
		return nil
	}
	cmds := r.cmds
	r.cmds = nil
	return tea.Batch(cmds...)
}
