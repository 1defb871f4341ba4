package device

import (
	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l0/hal"
)

// Mode is the operating mode.
type Mode int

// Modes
const (
	// ModeActive drives the outputs.
	ModeActive Mode = iota
	// ModeInert releases the outputs to high impedance.
	ModeInert
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeInert {
		return "inert"
	}
	return "active"
}

// Outcome is the result of dispatching a frame.
type Outcome int

// Outcomes
const (
	OutcomeExecuted Outcome = iota
	OutcomeNotAddressed
	OutcomeUnknownCommand
	numOutcomes
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeNotAddressed:
		return "not-addressed"
	case OutcomeUnknownCommand:
		return "unknown-command"
	}
	return "unknown"
}

// Observer gets internal events. It is never part of the bus protocol.
// ReceiverEvent is called from interrupt context, Dispatched from the
// dispatch loop.
type Observer interface {
	frame.EventObserver
	Dispatched(frame.Frame, Outcome)
}

// Stats counts receiver events and dispatch outcomes.
type Stats struct {
	Events   map[frame.Event]uint64
	Outcomes map[Outcome]uint64
}

// State is a snapshot of the device.
type State struct {
	ID     byte
	Mode   Mode
	Duty   byte
	Output hal.Level
	Stats  Stats
}
