// Package sim hosts simulated devices.
package sim

import (
	"time"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/l0/device"
	"github.com/robotalks/cymbal/pkg/sim/hw"
)

// Snapshot is the device state together with what the simulated
// hardware shows.
type Snapshot struct {
	device.State
	Name       string
	PulseWidth time.Duration
	Pin        hw.Physical
	At         time.Time
}

// SameAs tells whether the observable state is unchanged.
func (s Snapshot) SameAs(o Snapshot) bool {
	return s.ID == o.ID && s.Mode == o.Mode && s.Duty == o.Duty &&
		s.Output == o.Output && s.PulseWidth == o.PulseWidth && s.Pin == o.Pin
}

// StatusListener is notified of device snapshots.
type StatusListener interface {
	StatusChanged(fx.ControlContext, Snapshot)
}

// StatusListenerFunc is the func form of StatusListener.
type StatusListenerFunc func(fx.ControlContext, Snapshot)

// StatusChanged implements StatusListener.
func (f StatusListenerFunc) StatusChanged(cc fx.ControlContext, s Snapshot) {
	f(cc, s)
}

// StatusCaster provides a subscriber and implements listener to cast
// notifications.
type StatusCaster struct {
	listeners []StatusListener
}

// SubscribeStatus adds a listener.
func (c *StatusCaster) SubscribeStatus(ln StatusListener) {
	c.listeners = append(c.listeners, ln)
}

// StatusChanged implements StatusListener.
func (c *StatusCaster) StatusChanged(cc fx.ControlContext, s Snapshot) {
	for _, ln := range c.listeners {
		ln.StatusChanged(cc, s)
	}
}
