// Package device is the actuator controller firmware core: it receives
// frames from the bus, dispatches commands to the outputs and keeps the
// configuration in EEPROM.
package device

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l0/hal"
	"github.com/robotalks/cymbal/pkg/l0/output"
	"github.com/robotalks/cymbal/pkg/l0/pulse"
	"github.com/robotalks/cymbal/pkg/l0/store"
)

// Device is the controller context owned by the dispatch loop.
//
// Interrupt is the only entry point for the bus side and must be called
// from a single goroutine. Everything else, except State, belongs to the
// goroutine running Poll or Run.
type Device struct {
	// Observer must be set before Boot.
	Observer Observer

	conf  Config
	hw    Hardware
	store *store.Store
	pulse *pulse.Controller
	out   *output.Controller

	slot frame.Slot
	rx   *frame.Receiver
	irq  atomic.Bool

	id   byte
	mode Mode

	snapshot atomic.Pointer[State]
	events   [frame.EventChecksum + 1]atomic.Uint64
	outcomes [numOutcomes]atomic.Uint64
}

// New creates a Device on hardware. Nothing is touched until Boot.
func New(hw Hardware, conf Config) *Device {
	d := &Device{
		conf:  conf,
		hw:    hw,
		store: store.New(hw.EEPROM, conf.MinDuty, conf.MaxDuty),
		pulse: pulse.New(hw.Pulse),
		out:   output.New(hw.Output, hw.Clock),
	}
	d.pulse.Clamp = conf.ClampDuty
	if conf.PulseQuantum > 0 {
		d.out.Quantum = conf.PulseQuantum
	}
	d.rx = frame.NewReceiver(&d.slot)
	d.rx.Strict = conf.StrictResync
	d.rx.Observer = frame.ReceiverEventFunc(d.receiverEvent)
	d.updateSnapshot()
	return d
}

// Boot runs the power-up sequence and enables bus interrupts.
func (d *Device) Boot() {
	d.id = d.store.DeviceID()

	d.out.Set(hal.Low)
	d.out.SetDriven(true)
	d.pulse.SetDriven(true)
	hal.Wait(d.hw.Clock, d.conf.SettleDelay)

	d.pulse.Configure(d.conf.MinDuty, d.conf.MaxDuty, d.conf.Period)
	d.pulse.SetDuty(d.store.InitialDuty())

	d.irq.Store(false)
	d.hw.Bus.EnableReceiver()
	hal.Wait(d.hw.Clock, d.conf.SettleDelay)
	d.irq.Store(true)

	d.mode = ModeActive
	d.updateSnapshot()
	glog.Infof("device booted: id=%d duty=%d configured=%v", d.id, d.pulse.Duty(), d.store.Configured())
}

// Interrupt receives one byte from the bus.
func (d *Device) Interrupt(b byte) {
	if d.irq.Load() {
		d.rx.Receive(b)
	}
}

// Poll processes the pending frame if any and tells whether it did.
func (d *Device) Poll() bool {
	f, ok := d.slot.Take()
	if !ok {
		return false
	}
	outcome := d.dispatch(f)
	d.outcomes[outcome].Add(1)
	d.updateSnapshot()
	if glog.V(2) {
		glog.Infof("dispatch %s: %s", f, outcome)
	}
	if o := d.Observer; o != nil {
		o.Dispatched(f, outcome)
	}
	return true
}

// Run polls until ctx is done. A running command is always completed.
func (d *Device) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !d.Poll() && d.conf.IdleInterval > 0 {
			time.Sleep(d.conf.IdleInterval)
		}
	}
}

// Name implements framework.Named.
func (d *Device) Name() string {
	return "device"
}

// ID returns the identity the device answers to.
func (d *Device) ID() byte {
	return d.id
}

// Mode returns the operating mode.
func (d *Device) Mode() Mode {
	return d.mode
}

// Duty returns the live duty.
func (d *Device) Duty() byte {
	return d.pulse.Duty()
}

// Store returns the configuration store.
func (d *Device) Store() *store.Store {
	return d.store
}

// State returns the latest snapshot. It's safe from any goroutine.
func (d *Device) State() State {
	s := *d.snapshot.Load()
	s.Stats = Stats{
		Events:   make(map[frame.Event]uint64),
		Outcomes: make(map[Outcome]uint64),
	}
	for ev := range d.events {
		if n := d.events[ev].Load(); n > 0 {
			s.Stats.Events[frame.Event(ev)] = n
		}
	}
	for o := range d.outcomes {
		if n := d.outcomes[o].Load(); n > 0 {
			s.Stats.Outcomes[Outcome(o)] = n
		}
	}
	return s
}

func (d *Device) dispatch(f frame.Frame) Outcome {
	if !f.AddressedTo(d.id) {
		return OutcomeNotAddressed
	}
	switch f.Command {
	case frame.CmdSetDuty:
		d.pulse.SetDuty(f.Parameter)
	case frame.CmdSetOutput:
		switch f.Parameter {
		case frame.OutputLow:
			d.out.Set(hal.Low)
		case frame.OutputHigh:
			d.out.Set(hal.High)
		default:
			d.out.Pulse(f.Parameter)
		}
	case frame.CmdProgramID:
		// takes effect on next boot
		d.store.SetDeviceID(f.Parameter)
	case frame.CmdProgramDuty:
		d.store.SetInitialDuty(f.Parameter)
	case frame.CmdStop:
		d.out.Set(hal.Low)
		d.out.SetDriven(false)
		d.pulse.SetDriven(false)
		d.mode = ModeInert
	case frame.CmdStart:
		d.out.SetDriven(true)
		d.pulse.SetDriven(true)
		d.mode = ModeActive
	default:
		return OutcomeUnknownCommand
	}
	return OutcomeExecuted
}

func (d *Device) receiverEvent(ev frame.Event) {
	if ev >= 0 && int(ev) < len(d.events) {
		d.events[ev].Add(1)
	}
	if o := d.Observer; o != nil {
		o.ReceiverEvent(ev)
	}
}

func (d *Device) updateSnapshot() {
	d.snapshot.Store(&State{
		ID:     d.id,
		Mode:   d.mode,
		Duty:   d.pulse.Duty(),
		Output: d.out.Level(),
	})
}
