package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type receiverTestStep struct {
	in     []byte
	expect Event
	final  Event
	take   bool
	frame  *Frame
}

type receiverTestBuilder struct {
	steps []receiverTestStep
}

func receiverSteps() *receiverTestBuilder {
	return &receiverTestBuilder{}
}

// on feeds bytes; every byte except the last is expected to be stored.
func (b *receiverTestBuilder) on(in ...byte) *receiverTestBuilder {
	b.steps = append(b.steps, receiverTestStep{in: in, expect: EventStored, final: EventStored})
	return b
}

func (b *receiverTestBuilder) all(ev Event) *receiverTestBuilder {
	s := &b.steps[len(b.steps)-1]
	s.expect, s.final = ev, ev
	return b
}

func (b *receiverTestBuilder) final(ev Event) *receiverTestBuilder {
	b.steps[len(b.steps)-1].final = ev
	return b
}

func (b *receiverTestBuilder) synced() *receiverTestBuilder {
	return b.final(EventSync)
}

func (b *receiverTestBuilder) checksum() *receiverTestBuilder {
	return b.final(EventChecksum)
}

func (b *receiverTestBuilder) published(address byte, cmd Command, param byte) *receiverTestBuilder {
	f := New(address, cmd, param)
	return b.final(EventFrame).expectFrame(&f)
}

func (b *receiverTestBuilder) expectFrame(f *Frame) *receiverTestBuilder {
	b.steps[len(b.steps)-1].frame = f
	return b
}

// taken marks the pending frame is consumed after the step.
func (b *receiverTestBuilder) taken() *receiverTestBuilder {
	b.steps[len(b.steps)-1].take = true
	return b
}

func (b *receiverTestBuilder) wire(address byte, cmd Command, param byte) *receiverTestBuilder {
	return b.on(New(address, cmd, param).Bytes()...)
}

func (b *receiverTestBuilder) build() []receiverTestStep {
	return b.steps
}

func runReceiverSteps(t *testing.T, r *Receiver, slot *Slot, steps []receiverTestStep) {
	for n, s := range steps {
		var ev Event
		l := len(s.in)
		for i, c := range s.in {
			ev = r.Receive(c)
			if i == 0 && c == Sentinel && s.expect == EventStored {
				require.Equalf(t, EventSync, ev, "step[%d][%d] expect sync", n, i)
				continue
			}
			if i+1 < l {
				require.Equalf(t, s.expect, ev, "step[%d][%d] expect mismatch", n, i)
			}
		}
		require.Equalf(t, s.final, ev, "step[%d] final mismatch", n)
		if s.frame != nil {
			require.True(t, slot.Pending())
		}
		if s.take || s.frame != nil {
			f, ok := slot.Take()
			if s.frame != nil {
				require.Truef(t, ok, "step[%d] frame expected", n)
				require.Equalf(t, *s.frame, f, "step[%d] frame mismatch", n)
			}
		}
		if s.frame == nil && !s.take {
			require.Falsef(t, slot.Pending(), "step[%d] unexpected frame", n)
		}
	}
}

func TestReceiver(t *testing.T) {
	testCases := []struct {
		name   string
		strict bool
		steps  []receiverTestStep
	}{
		{
			name: "single frame",
			steps: receiverSteps().
				wire(1, CmdSetDuty, 40).published(1, CmdSetDuty, 40).
				build(),
		},
		{
			name: "back to back frames",
			steps: receiverSteps().
				wire(1, CmdSetDuty, 40).published(1, CmdSetDuty, 40).
				wire(0xff, CmdSetOutput, 2).published(0xff, CmdSetOutput, 2).
				wire(7, CmdProgramDuty, 33).published(7, CmdProgramDuty, 33).
				build(),
		},
		{
			name: "sentinel resynchronizes mid frame",
			steps: receiverSteps().
				on(Sentinel, 3).
				wire(2, CmdSetOutput, 5).published(2, CmdSetOutput, 5).
				build(),
		},
		{
			name: "sentinel just before checksum",
			steps: receiverSteps().
				on(Sentinel, 3, 6, 9).
				wire(3, CmdSetOutput, 9).published(3, CmdSetOutput, 9).
				build(),
		},
		{
			name: "bytes before any sentinel are stored",
			steps: receiverSteps().
				on(1, 1, 40, 42).published(1, CmdSetDuty, 40).
				build(),
		},
		{
			name: "bad checksum is dropped",
			steps: receiverSteps().
				on(Sentinel, 1, 1, 40, 43).checksum().
				wire(1, CmdSetDuty, 40).published(1, CmdSetDuty, 40).
				build(),
		},
		{
			name: "checksum failure keeps assembling in place",
			steps: receiverSteps().
				on(Sentinel, 1, 2, 3, 9).checksum().
				// buffer wraps: 4 replaces the address, 4+2+3 == 9
				on(4).published(4, Command(2), 3).
				build(),
		},
		{
			name: "frame completion keeps assembling in place",
			steps: receiverSteps().
				wire(1, CmdSetDuty, 40).published(1, CmdSetDuty, 40).
				on(5).checksum().
				on(1, 1, 40).all(EventChecksum).
				build(),
		},
		{
			name:   "strict waits for sentinel after checksum failure",
			strict: true,
			steps: receiverSteps().
				on(Sentinel, 1, 2, 3, 9).checksum().
				on(4, 2, 3, 9).all(EventHunting).
				wire(4, Command(2), 3).published(4, Command(2), 3).
				build(),
		},
		{
			name:   "strict ignores bytes before first sentinel",
			strict: true,
			steps: receiverSteps().
				on(1, 1, 40, 42).all(EventHunting).
				wire(1, CmdSetDuty, 40).published(1, CmdSetDuty, 40).
				build(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var slot Slot
			r := NewReceiver(&slot)
			r.Strict = tc.strict
			runReceiverSteps(t, r, &slot, tc.steps)
		})
	}
}

func TestReceiverBusy(t *testing.T) {
	var slot Slot
	r := NewReceiver(&slot)
	for _, b := range New(1, CmdSetDuty, 40).Bytes() {
		r.Receive(b)
	}
	require.True(t, slot.Pending())

	// the pending frame is never overwritten, sentinels included
	for _, b := range New(1, CmdSetDuty, 50).Bytes() {
		require.Equal(t, EventBusy, r.Receive(b))
	}
	f, ok := slot.Take()
	require.True(t, ok)
	require.Equal(t, New(1, CmdSetDuty, 40), f)

	for _, b := range New(1, CmdSetDuty, 60).Bytes() {
		r.Receive(b)
	}
	f, ok = slot.Take()
	require.True(t, ok)
	require.Equal(t, New(1, CmdSetDuty, 60), f)
}

func TestReceiverChecksumPerField(t *testing.T) {
	good := New(0x12, CmdSetDuty, 0x34)
	for field := 0; field < Size; field++ {
		for bit := uint(0); bit < 8; bit++ {
			raw := good.Bytes()
			raw[field+1] ^= 1 << bit
			var slot Slot
			r := NewReceiver(&slot)
			var ev Event
			for _, b := range raw {
				ev = r.Receive(b)
			}
			if raw[field+1] == Sentinel {
				require.Equal(t, EventSync, ev)
				require.False(t, slot.Pending())
				continue
			}
			require.Equalf(t, EventChecksum, ev, "field %d bit %d", field, bit)
			require.False(t, slot.Pending())
		}
	}
}

func TestReceiverObserver(t *testing.T) {
	var slot Slot
	var events []Event
	r := NewReceiver(&slot)
	r.Observer = ReceiverEventFunc(func(ev Event) { events = append(events, ev) })
	for _, b := range []byte{Sentinel, 1, 1, 40, 42, 7} {
		r.Receive(b)
	}
	require.Equal(t, []Event{EventSync, EventStored, EventStored, EventStored, EventFrame, EventBusy}, events)
}
