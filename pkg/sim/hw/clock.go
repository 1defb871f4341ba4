// Package hw simulates the controller's peripherals.
package hw

import (
	"sync/atomic"
	"time"
)

// RealClock is hal.Clock on the host monotonic clock.
type RealClock struct {
	start time.Time
}

// NewRealClock creates a RealClock starting now.
func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

// Now implements hal.Clock.
func (c *RealClock) Now() time.Duration {
	return time.Since(c.start)
}

// StepClock is a deterministic hal.Clock: every reading advances it by
// Step, so busy-waits finish without real time passing.
type StepClock struct {
	step time.Duration
	now  atomic.Int64
}

// DefaultStep is the StepClock increment per reading.
const DefaultStep = 100 * time.Microsecond

// NewStepClock creates a StepClock. A non-positive step uses DefaultStep.
func NewStepClock(step time.Duration) *StepClock {
	if step <= 0 {
		step = DefaultStep
	}
	return &StepClock{step: step}
}

// Now implements hal.Clock.
func (c *StepClock) Now() time.Duration {
	return time.Duration(c.now.Add(int64(c.step)))
}

// Peek returns the current time without advancing.
func (c *StepClock) Peek() time.Duration {
	return time.Duration(c.now.Load())
}

// Advance moves the clock forward.
func (c *StepClock) Advance(d time.Duration) {
	c.now.Add(int64(d))
}
