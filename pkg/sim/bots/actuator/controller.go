// Package actuator simulates an actuator controller on a bus.
package actuator

import (
	"context"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/l0/device"
	env "github.com/robotalks/cymbal/pkg/l1/env/device"
	"github.com/robotalks/cymbal/pkg/l1/msgs"
	"github.com/robotalks/cymbal/pkg/sim"
	"github.com/robotalks/cymbal/pkg/sim/hw"
)

// Controller runs a device on simulated hardware.
type Controller struct {
	Env *env.Env

	Device *device.Device
	Link   *sim.Link
	Clock  *hw.RealClock
	Timer  *hw.Timer
	Pin    *hw.Pin
	EEPROM *hw.EEPROM
	Bus    *hw.Bus

	sim.StatusCaster

	last      sim.Snapshot
	published time.Time
	booted    chan struct{}
}

// NewController creates the controller. Set Device.Observer before Run.
func NewController(e *env.Env, conf device.Config) *Controller {
	clock := hw.NewRealClock()
	c := &Controller{
		Env:    e,
		Clock:  clock,
		Timer:  hw.NewTimer(),
		Pin:    hw.NewPin(clock),
		EEPROM: hw.NewEEPROM(clock, 0),
		Bus:    &hw.Bus{},
		booted: make(chan struct{}),
	}
	c.Device = device.New(device.Hardware{
		Pulse:  c.Timer,
		Output: c.Pin,
		EEPROM: c.EEPROM,
		Bus:    c.Bus,
		Clock:  c.Clock,
	}, conf)
	c.Link = sim.NewLink(c.Device)
	c.SubscribeStatus(sim.StatusListenerFunc(c.publishStatus))
	return c
}

// PersistEEPROM loads the EEPROM from an image file and saves it back
// after every write.
func (c *Controller) PersistEEPROM(path string) error {
	if err := c.EEPROM.Load(path); err != nil {
		return err
	}
	c.EEPROM.OnWrite = func(addr, value byte) {
		if err := c.EEPROM.Save(path); err != nil {
			glog.Errorf("save eeprom %s: %v", path, err)
		}
	}
	return nil
}

// Name implements Named.
func (c *Controller) Name() string {
	return c.Env.Config.Name
}

// Booted is closed once the device finished booting.
func (c *Controller) Booted() <-chan struct{} {
	return c.booted
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.Add(c.Env)
	l.AddRunnable(c.Link, c)
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.NotifyChanges))
}

// Run implements Runnable: boots the device and runs its dispatch loop.
func (c *Controller) Run(ctx context.Context) error {
	c.Device.Boot()
	close(c.booted)
	return c.Device.Run(ctx)
}

// Snapshot captures the device and the hardware.
func (c *Controller) Snapshot(at time.Time) sim.Snapshot {
	return sim.Snapshot{
		State:      c.Device.State(),
		Name:       c.Name(),
		PulseWidth: c.Timer.PulseWidth(),
		Pin:        c.Pin.State(),
		At:         at,
	}
}

// NotifyChanges notifies listeners when the snapshot changed, and at
// least once per status interval.
func (c *Controller) NotifyChanges(cc fx.ControlContext) error {
	s := c.Snapshot(cc.Time())
	interval := c.Env.Config.StatusInterval
	if s.SameAs(c.last) && (interval <= 0 || cc.Time().Sub(c.published) < interval) {
		return nil
	}
	c.last, c.published = s, cc.Time()
	c.StatusChanged(cc, s)
	return nil
}

func (c *Controller) publishStatus(cc fx.ControlContext, s sim.Snapshot) {
	status := msgs.StatusFrom(s.Name, s.State, s.PulseWidth, s.At)
	if err := c.Env.PublishStatus(status); err != nil {
		glog.Errorf("publish status: %v", err)
	}
}
