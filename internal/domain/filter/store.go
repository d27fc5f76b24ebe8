package filter

import (
	"sync"
)

// State is the two-phase criteria value of a discovery session. Pending
// follows the user's edits; Applied drives the pipeline.
type State struct {
	Pending  Criteria `json:"pending"`
	Applied  Criteria `json:"applied"`
	Ready    bool     `json:"ready"`
	Revision uint64   `json:"revision"`
}

// Action is a state transition understood by Reduce
type Action interface {
	reduce(s State) State
}

// EditPending mutates the pending criteria only
type EditPending struct {
	Edit func(c *Criteria)
}

func (a EditPending) reduce(s State) State {
	if a.Edit == nil {
		return s
	}
	pending := s.Pending
	a.Edit(&pending)
	s.Pending = pending.normalized()
	return s
}

// Commit copies every pending value into applied
type Commit struct{}

func (Commit) reduce(s State) State {
	s.Applied = s.Pending.normalized()
	s.Pending = s.Applied
	s.Revision++
	return s
}

// Reset clears both pending and applied to defaults
type Reset struct{}

func (Reset) reduce(s State) State {
	s.Applied = DefaultCriteria()
	s.Pending = s.Applied
	s.Revision++
	return s
}

// Seed replaces applied from outside the edit flow, e.g. when a fresh
// session starts, and re-seeds pending from it.
type Seed struct {
	Applied Criteria
}

func (a Seed) reduce(s State) State {
	s.Applied = a.Applied.normalized()
	s.Pending = s.Applied
	s.Ready = true
	s.Revision++
	return s
}

// Search sets the live free-text term on both sides at once. The term is
// fed by the search debouncer rather than by Commit.
type Search struct {
	Term string
}

func (a Search) reduce(s State) State {
	if s.Applied.Search == a.Term && s.Pending.Search == a.Term {
		return s
	}
	s.Applied.Search = a.Term
	s.Pending.Search = a.Term
	s.Revision++
	return s
}

// Reduce applies a to s
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.reduce(s)
}

// Store serializes actions against a single State
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore creates a store seeded with default criteria
func NewStore() *Store {
	return &Store{state: Reduce(State{}, Seed{Applied: DefaultCriteria()})}
}

// Dispatch applies a and returns the resulting state
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// State returns the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
