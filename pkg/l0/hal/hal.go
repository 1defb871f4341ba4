// Package hal defines the hardware primitives the firmware core drives.
//
// Everything below this line (register layout, electrical setup of the
// bus transceiver, timer prescalers) belongs to the board. The core only
// sees these interfaces.
package hal

import "time"

// Level is a digital pin level.
type Level bool

// Pin levels.
const (
	Low  Level = false
	High Level = true
)

// String implements fmt.Stringer.
func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Driver controls the output stage of a pin.
type Driver interface {
	// SetDriven enables the output driver (true) or releases the
	// pin to high impedance (false).
	SetDriven(bool)
}

// Pin is a digital output pin.
type Pin interface {
	Driver
	// Set writes the output latch. A released pin keeps the latch
	// but does not drive it.
	Set(Level)
}

// PulseTimer is the periodic pulse (PWM) peripheral.
type PulseTimer interface {
	Driver
	// Configure starts the periodic output. The period is in timer
	// ticks.
	Configure(period byte)
	// SetCompare sets the number of ticks per period the output is high.
	SetCompare(duty byte)
}

// EEPROM is byte addressed non-volatile storage. Writes complete
// asynchronously; a new operation must not be issued while Busy.
type EEPROM interface {
	Busy() bool
	ReadByte(addr byte) byte
	WriteByte(addr, value byte)
}

// Bus is the byte-transport peripheral receiving frames.
type Bus interface {
	EnableReceiver()
}

// Clock is a monotonic time source, measured from an arbitrary epoch.
type Clock interface {
	Now() time.Duration
}

// Wait busy-waits on clock until d has elapsed. It never yields and
// cannot be cancelled.
func Wait(clock Clock, d time.Duration) {
	deadline := clock.Now() + d
	for clock.Now() < deadline {
	}
}
