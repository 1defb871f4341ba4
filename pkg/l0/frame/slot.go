package frame

import "sync/atomic"

// Publisher is the only capability the receiver holds on the pending slot.
type Publisher interface {
	// Pending tells whether a published frame hasn't been taken yet.
	Pending() bool
	// Publish offers a frame. It returns false and drops the frame
	// if one is already pending.
	Publish(Frame) bool
}

// Slot is a single-frame mailbox between the receiver (one producer)
// and the dispatcher (one consumer). A published frame is immutable; the
// consumer owns its copy once taken, so the producer can never overwrite
// a frame being read.
type Slot struct {
	pending atomic.Pointer[Frame]
}

// Pending implements Publisher.
func (s *Slot) Pending() bool {
	return s.pending.Load() != nil
}

// Publish implements Publisher.
func (s *Slot) Publish(f Frame) bool {
	return s.pending.CompareAndSwap(nil, &f)
}

// Take removes the pending frame, if any.
func (s *Slot) Take() (Frame, bool) {
	f := s.pending.Swap(nil)
	if f == nil {
		return Frame{}, false
	}
	return *f, true
}
