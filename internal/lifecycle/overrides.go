package lifecycle

import (
	"sync"
)

// Overrides records manual start-early and postpone actions for goals whose
// store cannot persist them. Marking one state clears the other.
type Overrides interface {
	StartedEarly(goalID string) bool
	Postponed(goalID string) bool
	MarkStartedEarly(goalID string)
	MarkPostponed(goalID string)
	Forget(goalID string)
}

// OverrideSet is a process-local Overrides. Its contents do not survive a
// restart.
type OverrideSet struct {
	mu        sync.RWMutex
	started   map[string]struct{}
	postponed map[string]struct{}
}

func NewOverrideSet() *OverrideSet {
	return &OverrideSet{
		started:   make(map[string]struct{}),
		postponed: make(map[string]struct{}),
	}
}

func (s *OverrideSet) StartedEarly(goalID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.started[goalID]
	return ok
}

func (s *OverrideSet) Postponed(goalID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.postponed[goalID]
	return ok
}

func (s *OverrideSet) MarkStartedEarly(goalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.postponed, goalID)
	s.started[goalID] = struct{}{}
}

func (s *OverrideSet) MarkPostponed(goalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.started, goalID)
	s.postponed[goalID] = struct{}{}
}

func (s *OverrideSet) Forget(goalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.started, goalID)
	delete(s.postponed, goalID)
}

// none is used when a caller passes a nil Overrides.
type none struct{}

func (none) StartedEarly(string) bool { return false }
func (none) Postponed(string) bool    { return false }
func (none) MarkStartedEarly(string)  {}
func (none) MarkPostponed(string)     {}
func (none) Forget(string)            {}

func orNone(o Overrides) Overrides {
	if o == nil {
		return none{}
	}
	return o
}
