package hw

import (
	"sync"
	"time"

	"github.com/robotalks/cymbal/pkg/l0/hal"
)

// Physical is the observable state of a pin.
type Physical int

// Physical states.
const (
	Floating Physical = iota
	DrivenLow
	DrivenHigh
)

// String implements fmt.Stringer.
func (p Physical) String() string {
	switch p {
	case DrivenLow:
		return "low"
	case DrivenHigh:
		return "high"
	}
	return "floating"
}

// Transition is a change of the physical state.
type Transition struct {
	At    time.Duration
	State Physical
}

// Pin simulates a digital output pin. It starts released, like after reset.
type Pin struct {
	clock   hal.Clock
	lock    sync.Mutex
	latch   hal.Level
	driven  bool
	history []Transition
}

// NewPin creates a Pin timestamping transitions with clock.
func NewPin(clock hal.Clock) *Pin {
	return &Pin{clock: clock}
}

// Set implements hal.Pin.
func (p *Pin) Set(level hal.Level) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.latch = level
	p.record()
}

// SetDriven implements hal.Driver.
func (p *Pin) SetDriven(driven bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.driven = driven
	p.record()
}

// Latch returns the output latch.
func (p *Pin) Latch() hal.Level {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.latch
}

// Driven tells if the output driver is enabled.
func (p *Pin) Driven() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.driven
}

// State returns the current physical state.
func (p *Pin) State() Physical {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.state()
}

// StateAt returns the physical state at time t.
func (p *Pin) StateAt(t time.Duration) Physical {
	p.lock.Lock()
	defer p.lock.Unlock()
	state := Floating
	for _, tr := range p.history {
		if tr.At > t {
			break
		}
		state = tr.State
	}
	return state
}

// History returns all recorded transitions.
func (p *Pin) History() []Transition {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]Transition(nil), p.history...)
}

func (p *Pin) state() Physical {
	switch {
	case !p.driven:
		return Floating
	case p.latch == hal.High:
		return DrivenHigh
	}
	return DrivenLow
}

func (p *Pin) record() {
	state := p.state()
	if n := len(p.history); n > 0 && p.history[n-1].State == state {
		return
	}
	if len(p.history) == 0 && state == Floating {
		return
	}
	p.history = append(p.history, Transition{At: p.clock.Now(), State: state})
}
