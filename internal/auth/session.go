// Package auth holds the process-wide session state as an injectable,
// subscribable object instead of an ambient global.
package auth

import (
	"sync"

	"github.com/campushub/eventmap/internal/model"
)

// State is the session lifecycle phase.
type State int

const (
	// StateInit is the phase before the auth collaborator has reported anything.
	StateInit State = iota
	// StateAuthenticated means a user is signed in and its role is known.
	StateAuthenticated
	// StateAnonymous means no user is signed in.
	StateAnonymous
	// StateDisposed is terminal; no further transitions are delivered.
	StateDisposed
)

// Snapshot is what subscribers receive on every transition.
type Snapshot struct {
	State State
	User  *model.User
}

// Session tracks the current user. Screens subscribe rather than reading a
// global; every component gets the session injected.
type Session struct {
	mu    sync.RWMutex
	state State
	user  *model.User

	nextID int
	subs   map[int]func(Snapshot)
}

// NewSession starts in the init phase.
func NewSession() *Session {
	return &Session{
		state: StateInit,
		subs:  make(map[int]func(Snapshot)),
	}
}

// Current returns the latest snapshot.
func (s *Session) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{State: s.state, User: s.user}
}

// SetUser transitions to authenticated with the given user.
func (s *Session) SetUser(user *model.User) {
	s.transition(StateAuthenticated, user)
}

// Clear transitions to anonymous.
func (s *Session) Clear() {
	s.transition(StateAnonymous, nil)
}

// Dispose ends the session; subscribers get a final disposed snapshot and are
// then dropped.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		return
	}
	s.state = StateDisposed
	s.user = nil
	subs := s.snapshotSubs()
	s.subs = make(map[int]func(Snapshot))
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Snapshot{State: StateDisposed})
	}
}

// Subscribe registers fn for state transitions and immediately delivers the
// current snapshot. The returned function unsubscribes.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		fn(Snapshot{State: StateDisposed})
		return func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := Snapshot{State: s.state, User: s.user}
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) transition(state State, user *model.User) {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.user = user
	subs := s.snapshotSubs()
	s.mu.Unlock()

	snap := Snapshot{State: state, User: user}
	for _, fn := range subs {
		fn(snap)
	}
}

// caller holds the lock
func (s *Session) snapshotSubs() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}

	return out
}
