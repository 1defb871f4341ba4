package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/robotalks/cymbal/pkg/l0/hal"
	"github.com/robotalks/cymbal/pkg/sim/hw"
)

func TestSet(t *testing.T) {
	clock := hw.NewStepClock(0)
	pin := hw.NewPin(clock)
	c := New(pin, clock)
	c.SetDriven(true)
	c.Set(hal.High)
	assert.Equal(t, hw.DrivenHigh, pin.State())
	assert.Equal(t, hal.High, c.Level())
	c.SetDriven(false)
	assert.Equal(t, hw.Floating, pin.State())
	assert.Equal(t, hal.High, pin.Latch())
}

func TestPulse(t *testing.T) {
	clock := hw.NewStepClock(0)
	pin := hw.NewPin(clock)
	c := New(pin, clock)
	c.SetDriven(true)
	c.Pulse(3)

	history := pin.History()
	if assert.Len(t, history, 3) {
		assert.Equal(t, hw.DrivenLow, history[0].State)
		assert.Equal(t, hw.DrivenHigh, history[1].State)
		assert.Equal(t, hw.DrivenLow, history[2].State)
		width := history[2].At - history[1].At
		assert.True(t, width >= 30*time.Millisecond, "width %v", width)
		assert.True(t, width < 31*time.Millisecond, "width %v", width)
	}
	assert.Equal(t, hal.Low, c.Level())
}

func TestPulseQuantum(t *testing.T) {
	clock := hw.NewStepClock(time.Millisecond)
	pin := hw.NewPin(clock)
	c := New(pin, clock)
	c.Quantum = 100 * time.Millisecond
	c.SetDriven(true)
	start := clock.Peek()
	c.Pulse(2)
	assert.True(t, clock.Peek()-start >= 200*time.Millisecond)
}
