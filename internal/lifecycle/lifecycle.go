// Package lifecycle tracks connector readiness and failure, gating
// startup until every connector has reported ready and terminating the
// process if one exits unrecoverably.
package lifecycle

import (
	"context"
	"os"
	"sync"

	"github.com/yaoapp/kun/log"
)

// EventKind discriminates a lifecycle Event.
type EventKind int

const (
	// Ready signals a connector has finished connecting and is safe to route to.
	Ready EventKind = iota
	// Disconnected signals a connector lost its connection but is retrying.
	Disconnected
	// Failed signals a connector hit a recoverable error worth logging.
	Failed
	// Exited signals a connector's goroutine gave up for good.
	Exited
)

// Event is a single lifecycle report from a connector, addressed by its
// index in the configured connector list.
type Event struct {
	ConnectorIdx int
	Kind         EventKind
	Err          error
}

// Supervisor owns the single goroutine that tracks per-connector
// readiness and reacts to failures, grounded on the worker-health ticking
// goroutine idiom: a long-lived goroutine selecting on a channel and a
// cancellation context, run once via sync.Once for the terminal signal.
type Supervisor struct {
	events    chan Event
	allReady  chan struct{}
	readyOnce sync.Once
	exit      func(code int)
}

// NewSupervisor creates a Supervisor. connectorIdxs is not used here: the
// indices tracked for readiness are the ones passed to Start, which begins
// consuming events.
func NewSupervisor(connectorIdxs []int) *Supervisor {
	return &Supervisor{
		events:   make(chan Event, 32),
		allReady: make(chan struct{}),
		exit:     os.Exit,
	}
}

// Events returns the channel connectors report lifecycle events on.
func (s *Supervisor) Events() chan<- Event {
	return s.events
}

// SetExitFuncForTest overrides the function called on a fatal Exited
// event, so tests can observe it instead of terminating the test binary.
func (s *Supervisor) SetExitFuncForTest(exit func(code int)) {
	s.exit = exit
}

// Start consumes lifecycle events until ctx is canceled. It closes
// allReady exactly once, the moment every tracked connector has reported
// Ready, and calls exit(1) the moment any connector reports Exited — an
// exited connector means the bus can no longer guarantee delivery on that
// leg, and the original implementation treats that as fatal rather than
// limping on silently.
func (s *Supervisor) Start(ctx context.Context, connectorIdxs []int) {
	state := make(map[int]bool, len(connectorIdxs))
	for _, idx := range connectorIdxs {
		state[idx] = false
	}

	for {
		select {
		case evt := <-s.events:
			s.handle(evt, state)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Supervisor) handle(evt Event, state map[int]bool) {
	switch evt.Kind {
	case Ready:
		log.Info("[Connector %d] Ready", evt.ConnectorIdx)
		state[evt.ConnectorIdx] = true
		if allReady(state) {
			s.readyOnce.Do(func() { close(s.allReady) })
		}
	case Disconnected:
		log.Warn("[Connector %d] Disconnected: %v", evt.ConnectorIdx, evt.Err)
	case Failed:
		log.Error("[Connector %d] Failed: %v", evt.ConnectorIdx, evt.Err)
	case Exited:
		log.Error("[Connector %d] Exited: %v", evt.ConnectorIdx, evt.Err)
		s.exit(1)
	}
}

func allReady(state map[int]bool) bool {
	for _, ready := range state {
		if !ready {
			return false
		}
	}
	return true
}

// WaitAllReady blocks until every tracked connector has reported Ready, or
// ctx is canceled.
func (s *Supervisor) WaitAllReady(ctx context.Context) error {
	select {
	case <-s.allReady:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
