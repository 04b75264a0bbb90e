package model

import "sync/atomic"

// ListenerState records whether the webhook listener has been started. It
// moves from not started to started once and is never reset.
type ListenerState struct {
	started atomic.Bool
}

// TryStart flips the state to started. Only the first caller gets true.
func (s *ListenerState) TryStart() bool {
	return s.started.CompareAndSwap(false, true)
}

// Started reports whether TryStart has succeeded
func (s *ListenerState) Started() bool {
	return s.started.Load()
}
