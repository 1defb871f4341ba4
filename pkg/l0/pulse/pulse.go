// Package pulse drives the servo style pulse output.
package pulse

import "github.com/robotalks/cymbal/pkg/l0/hal"

// Duty range and period in timer ticks (31.25kHz timer clock):
// 25 ticks ~ 800us, 68 ticks ~ 2180us, period 250 ticks = 125Hz.
const (
	DefaultMinDuty byte = 25
	DefaultMaxDuty byte = 68
	DefaultPeriod  byte = 250
)

// Controller holds the live duty of the pulse output.
type Controller struct {
	// Clamp limits SetDuty to the configured range. Off by default:
	// duty values are written to the timer as received.
	Clamp bool

	timer   hal.PulseTimer
	minDuty byte
	maxDuty byte
	duty    byte
}

// New creates a Controller on timer with the default range.
func New(timer hal.PulseTimer) *Controller {
	return &Controller{timer: timer, minDuty: DefaultMinDuty, maxDuty: DefaultMaxDuty}
}

// Configure sets the duty range and starts the timer with period.
func (c *Controller) Configure(minDuty, maxDuty, period byte) {
	c.minDuty, c.maxDuty = minDuty, maxDuty
	c.timer.Configure(period)
}

// SetDuty updates the live duty.
func (c *Controller) SetDuty(duty byte) {
	if c.Clamp {
		duty = c.clamp(duty)
	}
	c.duty = duty
	c.timer.SetCompare(duty)
}

// Duty returns the live duty.
func (c *Controller) Duty() byte {
	return c.duty
}

// Range returns the valid duty range.
func (c *Controller) Range() (byte, byte) {
	return c.minDuty, c.maxDuty
}

// InRange tells whether duty is a valid operating value.
func (c *Controller) InRange(duty byte) bool {
	return duty >= c.minDuty && duty <= c.maxDuty
}

// SetDriven enables or releases the output pin. The duty is kept.
func (c *Controller) SetDriven(driven bool) {
	c.timer.SetDriven(driven)
}

func (c *Controller) clamp(duty byte) byte {
	if duty < c.minDuty {
		return c.minDuty
	}
	if duty > c.maxDuty {
		return c.maxDuty
	}
	return duty
}
