// Package output drives the solenoid style binary output.
package output

import (
	"time"

	"github.com/robotalks/cymbal/pkg/l0/hal"
)

// Controller drives one output pin.
type Controller struct {
	// Quantum is the duration of one pulse unit.
	Quantum time.Duration

	pin   hal.Pin
	clock hal.Clock
	level hal.Level
}

// DefaultQuantum is the default pulse unit.
const DefaultQuantum = 10 * time.Millisecond

// New creates a Controller.
func New(pin hal.Pin, clock hal.Clock) *Controller {
	return &Controller{Quantum: DefaultQuantum, pin: pin, clock: clock}
}

// Set holds the output at level.
func (c *Controller) Set(level hal.Level) {
	c.level = level
	c.pin.Set(level)
}

// Pulse drives the output high for units quanta and then low. It blocks
// the caller for the whole pulse.
func (c *Controller) Pulse(units byte) {
	c.Set(hal.High)
	hal.Wait(c.clock, time.Duration(units)*c.Quantum)
	c.Set(hal.Low)
}

// Level returns the output latch.
func (c *Controller) Level() hal.Level {
	return c.level
}

// SetDriven enables or releases the output pin.
func (c *Controller) SetDriven(driven bool) {
	c.pin.SetDriven(driven)
}
