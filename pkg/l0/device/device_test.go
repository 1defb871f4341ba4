package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l0/hal"
	"github.com/robotalks/cymbal/pkg/l0/store"
	"github.com/robotalks/cymbal/pkg/sim/hw"
)

// isrClock runs a hook once the clock passes a point in time, the way
// an interrupt preempts a busy-wait.
type isrClock struct {
	*hw.StepClock
	at   time.Duration
	hook func()
}

func (c *isrClock) Now() time.Duration {
	t := c.StepClock.Now()
	if hook := c.hook; hook != nil && t >= c.at {
		c.hook = nil
		hook()
	}
	return t
}

func (c *isrClock) interruptAfter(d time.Duration, hook func()) {
	c.at, c.hook = c.StepClock.Peek()+d, hook
}

type testRig struct {
	t      *testing.T
	clock  *isrClock
	timer  *hw.Timer
	pin    *hw.Pin
	eeprom *hw.EEPROM
	bus    *hw.Bus
	conf   Config
	dev    *Device
	log    []dispatched
}

type dispatched struct {
	frame   frame.Frame
	outcome Outcome
}

func (r *testRig) ReceiverEvent(frame.Event) {}

func (r *testRig) Dispatched(f frame.Frame, o Outcome) {
	r.log = append(r.log, dispatched{frame: f, outcome: o})
}

func newTestRig(t *testing.T) *testRig {
	clock := &isrClock{StepClock: hw.NewStepClock(0)}
	conf := DefaultConfig()
	conf.SettleDelay = 5 * time.Millisecond
	return &testRig{
		t:      t,
		clock:  clock,
		timer:  hw.NewTimer(),
		pin:    hw.NewPin(clock),
		eeprom: hw.NewEEPROM(clock, 0),
		bus:    &hw.Bus{},
		conf:   conf,
	}
}

// boot powers up a new Device on the rig, like a power cycle. The
// EEPROM keeps its content.
func (r *testRig) boot() *testRig {
	r.timer, r.pin, r.bus = hw.NewTimer(), hw.NewPin(r.clock), &hw.Bus{}
	r.dev = New(Hardware{
		Pulse:  r.timer,
		Output: r.pin,
		EEPROM: r.eeprom,
		Bus:    r.bus,
		Clock:  r.clock,
	}, r.conf)
	r.dev.Observer = r
	r.dev.Boot()
	return r
}

func (r *testRig) feed(raw ...byte) {
	for _, b := range raw {
		r.dev.Interrupt(b)
	}
}

// send transmits a frame and runs one dispatch iteration.
func (r *testRig) send(address byte, cmd frame.Command, param byte) Outcome {
	r.feed(frame.New(address, cmd, param).Bytes()...)
	n := len(r.log)
	require.True(r.t, r.dev.Poll(), "frame not received")
	require.Len(r.t, r.log, n+1)
	return r.log[n].outcome
}

func (r *testRig) program(id byte) {
	r.eeprom.Poke(store.AddrMagic, store.Magic)
	r.eeprom.Poke(store.AddrDeviceID, id)
}

func TestBootUnconfigured(t *testing.T) {
	r := newTestRig(t).boot()
	require.Equal(t, byte(0), r.dev.ID())
	require.Equal(t, r.conf.MinDuty, r.dev.Duty())
	require.Equal(t, r.conf.MinDuty, r.timer.Compare())
	require.Equal(t, r.conf.Period, r.timer.Period())
	require.True(t, r.timer.Running())
	require.True(t, r.bus.Enabled())
	require.Equal(t, hw.DrivenLow, r.pin.State())
	require.Equal(t, ModeActive, r.dev.Mode())
	require.Equal(t, 0, r.eeprom.Writes())
}

func TestBootConfigured(t *testing.T) {
	r := newTestRig(t)
	r.program(7)
	r.eeprom.Poke(store.AddrInitialDuty, 40)
	r.boot()
	require.Equal(t, byte(7), r.dev.ID())
	require.Equal(t, byte(40), r.dev.Duty())
	require.Equal(t, byte(40), r.timer.Compare())
}

func TestBootInitialDutyOutOfRange(t *testing.T) {
	r := newTestRig(t)
	r.eeprom.Poke(store.AddrInitialDuty, r.conf.MaxDuty+1)
	r.boot()
	require.Equal(t, r.conf.MinDuty, r.dev.Duty())
}

func TestInterruptsDisabledBeforeBoot(t *testing.T) {
	r := newTestRig(t)
	r.dev = New(Hardware{Pulse: r.timer, Output: r.pin, EEPROM: r.eeprom, Bus: r.bus, Clock: r.clock}, r.conf)
	r.feed(frame.New(0xff, frame.CmdSetDuty, 30).Bytes()...)
	require.False(t, r.dev.Poll())
}

func TestAddressing(t *testing.T) {
	testCases := []struct {
		name       string
		configured bool
		id         byte
		address    byte
		expect     Outcome
	}{
		{"broadcast to configured", true, 7, frame.BroadcastAddress, OutcomeExecuted},
		{"own address", true, 7, 7, OutcomeExecuted},
		{"other address", true, 7, 3, OutcomeNotAddressed},
		{"address 0 to configured", true, 7, 0, OutcomeNotAddressed},
		{"broadcast to unconfigured", false, 0, frame.BroadcastAddress, OutcomeExecuted},
		{"address 0 to unconfigured", false, 0, 0, OutcomeExecuted},
		{"other address to unconfigured", false, 0, 7, OutcomeNotAddressed},
		{"programmed 0", true, 0, 0, OutcomeExecuted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRig(t)
			if tc.configured {
				r.program(tc.id)
			} else {
				r.eeprom.Poke(store.AddrDeviceID, 9)
			}
			r.boot()
			require.Equal(t, tc.id, r.dev.ID())
			require.Equal(t, tc.expect, r.send(tc.address, frame.CmdSetDuty, 50))
			if tc.expect == OutcomeExecuted {
				require.Equal(t, byte(50), r.dev.Duty())
			} else {
				require.Equal(t, r.conf.MinDuty, r.dev.Duty())
			}
			require.False(t, r.dev.Poll())
		})
	}
}

func TestSetDuty(t *testing.T) {
	r := newTestRig(t).boot()
	require.Equal(t, OutcomeExecuted, r.send(0xff, frame.CmdSetDuty, 45))
	require.Equal(t, byte(45), r.timer.Compare())

	// passed through unchecked
	require.Equal(t, OutcomeExecuted, r.send(0xff, frame.CmdSetDuty, 200))
	require.Equal(t, byte(200), r.timer.Compare())
	require.Equal(t, byte(200), r.dev.Duty())
}

func TestSetDutyClamped(t *testing.T) {
	r := newTestRig(t)
	r.conf.ClampDuty = true
	r.boot()
	r.send(0xff, frame.CmdSetDuty, 200)
	require.Equal(t, r.conf.MaxDuty, r.timer.Compare())
	r.send(0xff, frame.CmdSetDuty, 1)
	require.Equal(t, r.conf.MinDuty, r.timer.Compare())
	r.send(0xff, frame.CmdSetDuty, 50)
	require.Equal(t, byte(50), r.timer.Compare())
}

func TestSetOutput(t *testing.T) {
	r := newTestRig(t).boot()

	r.send(0xff, frame.CmdSetOutput, frame.OutputHigh)
	require.Equal(t, hw.DrivenHigh, r.pin.State())
	r.clock.Advance(10 * time.Second)
	require.Equal(t, hw.DrivenHigh, r.pin.State())

	r.send(0xff, frame.CmdSetOutput, frame.OutputLow)
	require.Equal(t, hw.DrivenLow, r.pin.State())
	require.Equal(t, hal.Low, r.dev.State().Output)
}

func TestSetOutputPulse(t *testing.T) {
	r := newTestRig(t).boot()
	before := len(r.pin.History())
	r.send(0xff, frame.CmdSetOutput, 5)
	require.Equal(t, hw.DrivenLow, r.pin.State())

	history := r.pin.History()[before:]
	require.Len(t, history, 2)
	require.Equal(t, hw.DrivenHigh, history[0].State)
	require.Equal(t, hw.DrivenLow, history[1].State)

	start := history[0].At
	require.Equal(t, hw.DrivenHigh, r.pin.StateAt(start+49*time.Millisecond))
	require.Equal(t, hw.DrivenLow, r.pin.StateAt(start+51*time.Millisecond))
}

func TestFrameDuringPulse(t *testing.T) {
	r := newTestRig(t).boot()
	r.clock.interruptAfter(20*time.Millisecond, func() {
		r.feed(frame.New(0xff, frame.CmdSetDuty, 33).Bytes()...)
		// dropped: the previous one is still pending
		r.feed(frame.New(0xff, frame.CmdSetDuty, 34).Bytes()...)
	})
	r.send(0xff, frame.CmdSetOutput, 10)
	require.Equal(t, r.conf.MinDuty, r.dev.Duty())

	require.True(t, r.dev.Poll())
	require.Equal(t, byte(33), r.dev.Duty())
	require.False(t, r.dev.Poll())

	stats := r.dev.State().Stats
	require.Equal(t, uint64(2), stats.Events[frame.EventFrame])
	require.Equal(t, uint64(frame.WireSize), stats.Events[frame.EventBusy])
}

func TestProgramID(t *testing.T) {
	r := newTestRig(t).boot()
	var writes [][2]byte
	r.eeprom.OnWrite = func(addr, value byte) {
		writes = append(writes, [2]byte{addr, value})
	}

	r.send(0xff, frame.CmdProgramID, 7)
	require.Equal(t, [][2]byte{{store.AddrDeviceID, 7}, {store.AddrMagic, store.Magic}}, writes)
	image := r.eeprom.Image()

	r.send(0xff, frame.CmdProgramID, 7)
	require.Equal(t, image, r.eeprom.Image())
	require.Equal(t, byte(7), r.dev.Store().DeviceID())
	require.Zero(t, r.eeprom.Overlaps())

	// identity applies after power cycle
	require.Equal(t, byte(0), r.dev.ID())
	r.boot()
	require.Equal(t, byte(7), r.dev.ID())
	require.Equal(t, OutcomeNotAddressed, r.send(0, frame.CmdSetDuty, 30))
	require.Equal(t, OutcomeExecuted, r.send(7, frame.CmdSetDuty, 30))
}

func TestProgramIDInterrupted(t *testing.T) {
	r := newTestRig(t).boot()
	// power lost right after the identity byte is written
	var image []byte
	r.eeprom.OnWrite = func(addr, value byte) {
		if addr == store.AddrDeviceID && image == nil {
			image = r.eeprom.Image()
		}
	}
	r.send(0xff, frame.CmdProgramID, 7)
	require.NotNil(t, image)

	r.eeprom = hw.NewEEPROM(r.clock, len(image))
	for addr, value := range image[:store.AddrInitialDuty+1] {
		r.eeprom.Poke(byte(addr), value)
	}
	r.boot()
	require.False(t, r.dev.Store().Configured())
	require.Equal(t, byte(0), r.dev.ID())
}

func TestProgramDuty(t *testing.T) {
	r := newTestRig(t).boot()
	r.send(0xff, frame.CmdSetDuty, 30)
	r.send(0xff, frame.CmdProgramDuty, 50)
	require.Equal(t, byte(30), r.dev.Duty())
	require.Equal(t, byte(30), r.timer.Compare())

	r.boot()
	require.Equal(t, byte(50), r.dev.Duty())
	require.Equal(t, byte(50), r.timer.Compare())

	r.send(0xff, frame.CmdProgramDuty, 100)
	r.boot()
	require.Equal(t, r.conf.MinDuty, r.dev.Duty())
}

func TestStopStart(t *testing.T) {
	r := newTestRig(t).boot()
	r.send(0xff, frame.CmdSetDuty, 44)
	r.send(0xff, frame.CmdSetOutput, frame.OutputHigh)

	r.send(0xff, frame.CmdStop, 0)
	require.Equal(t, ModeInert, r.dev.Mode())
	require.Equal(t, hw.Floating, r.pin.State())
	require.False(t, r.timer.Running())
	require.Equal(t, byte(44), r.timer.Compare())

	r.send(0xff, frame.CmdSetOutput, frame.OutputHigh)
	require.Equal(t, hw.Floating, r.pin.State())
	require.Equal(t, hal.High, r.pin.Latch())

	r.send(0xff, frame.CmdStart, 0)
	require.Equal(t, ModeActive, r.dev.Mode())
	require.Equal(t, hw.DrivenHigh, r.pin.State())
	require.True(t, r.timer.Running())
	require.Equal(t, byte(44), r.timer.Compare())
	require.Equal(t, byte(44), r.dev.Duty())
}

func TestStopClearsOutput(t *testing.T) {
	r := newTestRig(t).boot()
	r.send(0xff, frame.CmdSetOutput, frame.OutputHigh)
	r.send(0xff, frame.CmdStop, 0)
	r.send(0xff, frame.CmdStart, 0)
	require.Equal(t, hw.DrivenLow, r.pin.State())
}

func TestUnknownCommand(t *testing.T) {
	r := newTestRig(t).boot()
	image := r.eeprom.Image()
	require.Equal(t, OutcomeUnknownCommand, r.send(0xff, frame.Command(2), 40))
	require.Equal(t, r.conf.MinDuty, r.dev.Duty())
	require.Equal(t, image, r.eeprom.Image())
	require.Equal(t, ModeActive, r.dev.Mode())
	require.False(t, r.dev.Poll())
}

func TestStrictResync(t *testing.T) {
	r := newTestRig(t)
	r.conf.StrictResync = true
	r.program(1)
	r.boot()
	r.feed(1, 1, 40, 42)
	require.False(t, r.dev.Poll())
	require.Equal(t, uint64(4), r.dev.State().Stats.Events[frame.EventHunting])
	require.Equal(t, OutcomeExecuted, r.send(1, frame.CmdSetDuty, 40))
	require.Equal(t, byte(40), r.dev.Duty())

	// a bad checksum drops back to hunting instead of re-validating
	r.feed(frame.Sentinel, 1, 1, 50, 0, 1, 1, 50)
	require.False(t, r.dev.Poll())
	require.Equal(t, uint64(7), r.dev.State().Stats.Events[frame.EventHunting])
	require.Equal(t, OutcomeExecuted, r.send(frame.BroadcastAddress, frame.CmdSetDuty, 50))
	require.Equal(t, byte(50), r.dev.Duty())
}

func TestState(t *testing.T) {
	r := newTestRig(t)
	r.program(3)
	r.boot()
	r.send(3, frame.CmdSetDuty, 50)
	r.send(4, frame.CmdSetDuty, 60)
	r.feed(frame.Sentinel, 3, 1, 50, 0)

	s := r.dev.State()
	require.Equal(t, byte(3), s.ID)
	require.Equal(t, byte(50), s.Duty)
	require.Equal(t, ModeActive, s.Mode)
	require.Equal(t, uint64(1), s.Stats.Outcomes[OutcomeExecuted])
	require.Equal(t, uint64(1), s.Stats.Outcomes[OutcomeNotAddressed])
	require.Equal(t, uint64(2), s.Stats.Events[frame.EventFrame])
	require.Equal(t, uint64(1), s.Stats.Events[frame.EventChecksum])
	require.Equal(t, uint64(3), s.Stats.Events[frame.EventSync])
}
