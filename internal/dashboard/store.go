package dashboard

import "sync"

// Store owns the current State and applies actions one at a time.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store { return &Store{} }

// Dispatch reduces a into the current state and returns the result.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
