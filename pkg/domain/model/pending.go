package model

import "sync"

// PendingBuild is the remembered qualifying push awaiting a poll
type PendingBuild struct {
	PushedBy string
	Branch   string
}

// PendingSlot holds at most one PendingBuild. A later Put overwrites the
// current value; Take returns it and clears the slot in one step.
type PendingSlot struct {
	mu      sync.Mutex
	pending *PendingBuild
}

// Put replaces the slot contents
func (s *PendingSlot) Put(pb PendingBuild) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &pb
}

// Take returns the pending build and clears the slot. It returns nil when empty.
func (s *PendingSlot) Take() *PendingBuild {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb := s.pending
	s.pending = nil
	return pb
}
