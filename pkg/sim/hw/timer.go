package hw

import (
	"sync"
	"time"
)

// DefaultTickRate is the timer clock: 1MHz system clock / 32 prescaler.
const DefaultTickRate = 31250

// Timer simulates the PWM timer: the output goes high when the counter
// restarts and low when it reaches the compare value.
type Timer struct {
	TickRate int

	lock       sync.Mutex
	configured bool
	period     byte
	compare    byte
	driven     bool
}

// NewTimer creates a Timer with DefaultTickRate.
func NewTimer() *Timer {
	return &Timer{TickRate: DefaultTickRate}
}

// Configure implements hal.PulseTimer.
func (t *Timer) Configure(period byte) {
	t.lock.Lock()
	t.period, t.configured = period, true
	t.lock.Unlock()
}

// SetCompare implements hal.PulseTimer.
func (t *Timer) SetCompare(duty byte) {
	t.lock.Lock()
	t.compare = duty
	t.lock.Unlock()
}

// SetDriven implements hal.Driver.
func (t *Timer) SetDriven(driven bool) {
	t.lock.Lock()
	t.driven = driven
	t.lock.Unlock()
}

// Compare returns the compare register.
func (t *Timer) Compare() byte {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.compare
}

// Period returns the period register.
func (t *Timer) Period() byte {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.period
}

// Driven tells if the output pin is driven.
func (t *Timer) Driven() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.driven
}

// Running tells if pulses appear on the pin.
func (t *Timer) Running() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.configured && t.driven
}

// Tick returns the duration of one timer tick.
func (t *Timer) Tick() time.Duration {
	rate := t.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// PulseWidth returns the high time per period, 0 if not running.
func (t *Timer) PulseWidth() time.Duration {
	if !t.Running() {
		return 0
	}
	compare, period := t.Compare(), t.Period()
	if compare > period {
		compare = period
	}
	return time.Duration(compare) * t.Tick()
}

// Cycle returns the full output period.
func (t *Timer) Cycle() time.Duration {
	return time.Duration(t.Period()) * t.Tick()
}
