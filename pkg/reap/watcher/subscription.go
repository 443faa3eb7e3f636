package watcher

import (
	"sync"

	"github.com/jamesainslie/reap/pkg/reap/logging"
)

// State is the lifecycle state of a Subscription.
type State int

// Subscription states. Transitions only move forward.
const (
	StateUnregistered State = iota
	StateRegistered
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Subscription is one registered directory tree.
type Subscription struct {
	w    *Watcher
	root string

	mu    sync.Mutex
	state State
}

// Root returns the absolute registered directory.
func (s *Subscription) Root() string {
	return s.root
}

// State returns the current state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Unsubscribe stops watching the tree. Watches shared with another
// subscription stay in place. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if !s.markStopped() {
		return
	}
	s.w.release(s)
	logging.Get("watcher").Info("watch removed", "root", s.root)
}

// markStopped moves the subscription to StateStopped and reports whether
// it was registered before.
func (s *Subscription) markStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRegistered {
		s.state = StateStopped
		return false
	}
	s.state = StateStopped
	return true
}
