package classify

import (
	"context"
	"errors"
	"fmt"
)

// Status is the load state of the classifier model.
type Status int

const (
	StatusLoading Status = iota // Load in flight
	StatusReady                 // Classifier available
	StatusFailed                // Load failed; permanent for the process
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Loader opens a classifier. It may block; callers run it off the event loop.
type Loader func(ctx context.Context) (Classifier, error)

// Model is the readiness gate in front of the classifier. It starts in
// StatusLoading and is resolved exactly once. It is owned by the event loop
// and is not safe for concurrent use.
type Model struct {
	status Status
	clf    Classifier
	err    error
}

// NewModel returns a gate in the loading state.
func NewModel() *Model {
	return &Model{status: StatusLoading}
}

// NewReadyModel returns a gate that is already resolved to clf.
func NewReadyModel(clf Classifier) *Model {
	m := NewModel()
	m.Resolve(clf, nil)
	return m
}

// Resolve records the outcome of the asynchronous load. Only the first call
// has an effect; a failed load is never retried.
func (m *Model) Resolve(clf Classifier, err error) {
	if m.status != StatusLoading {
		return
	}
	if err == nil && clf == nil {
		err = errors.New("loader returned no classifier")
	}
	if err != nil {
		m.status = StatusFailed
		m.err = err
		return
	}
	m.status = StatusReady
	m.clf = clf
}

func (m *Model) Status() Status {
	return m.status
}

// Ready reports whether the classifier can be used.
func (m *Model) Ready() bool {
	return m.status == StatusReady
}

// Err returns the load failure, if any.
func (m *Model) Err() error {
	return m.err
}

// Classifier returns the loaded classifier, or nil when not ready.
func (m *Model) Classifier() Classifier {
	return m.clf
}

// Check returns nil when ready, ErrNotReady while loading and
// ErrModelUnavailable after a failed load.
func (m *Model) Check() error {
	switch m.status {
	case StatusReady:
		return nil
	case StatusFailed:
		return fmt.Errorf("%w: %v", ErrModelUnavailable, m.err)
	default:
		return ErrNotReady
	}
}
