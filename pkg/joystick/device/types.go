// Package device reads joystick events from the system.
package device

import (
	"errors"
	"io"
)

// ErrUnsupported is returned where the system has no joystick support.
var ErrUnsupported = errors.New("joystick not supported on this system")

// Kind tells what changed.
type Kind uint8

// Kinds
const (
	KindButton Kind = iota + 1
	KindAxis
)

// Event is a change on a button or an axis.
type Event struct {
	Kind  Kind
	Index int
	// Value is the axis position in [-32767, 32767], or non-zero for a
	// pressed button.
	Value int
	// Init marks the synthetic events reporting the state at open.
	Init bool
}

// Pressed tells whether a button is down.
func (e Event) Pressed() bool {
	return e.Kind == KindButton && e.Value != 0
}

// Device represents an opened joystick.
type Device interface {
	io.Closer
	// Index returns the index of the device on the system.
	Index() int
	// Name returns the name of the device.
	Name() string
	// AxisCount returns the number of Axis on the device.
	AxisCount() int
	// ButtonCount returns the number of buttons on the device.
	ButtonCount() int
	// ReadEvent reads one event from the device.
	ReadEvent() (Event, error)
}
