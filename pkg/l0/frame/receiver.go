package frame

// Event is the outcome of receiving one byte.
type Event int

// Receiver events.
const (
	// EventStored means the byte was stored into the frame under assembly.
	EventStored Event = iota
	// EventSync means a sentinel reset the assembly offset.
	EventSync
	// EventBusy means the byte was ignored because a frame is pending.
	EventBusy
	// EventHunting means the byte was ignored while waiting for a
	// sentinel (Strict only).
	EventHunting
	// EventFrame means a valid frame was assembled and published.
	EventFrame
	// EventChecksum means an assembled frame failed validation and
	// was dropped.
	EventChecksum
)

var eventNames = [...]string{
	EventStored:   "stored",
	EventSync:     "sync",
	EventBusy:     "busy",
	EventHunting:  "hunting",
	EventFrame:    "frame",
	EventChecksum: "checksum",
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// EventObserver is notified of every receiver event.
type EventObserver interface {
	ReceiverEvent(Event)
}

// ReceiverEventFunc is func type of EventObserver.
type ReceiverEventFunc func(Event)

// ReceiverEvent implements EventObserver.
func (f ReceiverEventFunc) ReceiverEvent(e Event) {
	f(e)
}

// Receiver assembles frames from bus bytes.
//
// Receive runs in interrupt context: it must not be called concurrently
// with itself, and it never blocks.
type Receiver struct {
	Out      Publisher
	Observer EventObserver

	// Strict drops every non-sentinel byte after a completed frame
	// (valid or not) until the next sentinel, and before the first one.
	// Without it, assembly continues to wrap over the 4 byte buffer and
	// each further byte re-validates it, matching deployed firmware.
	Strict bool

	buf    [Size]byte
	offset uint8
	synced bool
}

// NewReceiver creates a receiver publishing into out.
func NewReceiver(out Publisher) *Receiver {
	return &Receiver{Out: out}
}

// Receive consumes one byte.
func (r *Receiver) Receive(b byte) (ev Event) {
	ev = r.receive(b)
	if o := r.Observer; o != nil {
		o.ReceiverEvent(ev)
	}
	return
}

// Offset returns the assembly offset.
func (r *Receiver) Offset() int {
	return int(r.offset)
}

// Reset drops any partial frame.
func (r *Receiver) Reset() {
	r.offset, r.synced = 0, false
}

func (r *Receiver) receive(b byte) Event {
	if r.Out.Pending() {
		return EventBusy
	}
	if b == Sentinel {
		r.offset, r.synced = 0, true
		return EventSync
	}
	if r.Strict && !r.synced {
		return EventHunting
	}
	r.buf[r.offset&(Size-1)] = b
	r.offset++
	if r.offset < Size {
		return EventStored
	}
	if r.Strict {
		r.synced = false
	}
	f := FromBytes(r.buf)
	if !f.Valid() {
		return EventChecksum
	}
	if !r.Out.Publish(f) {
		return EventBusy
	}
	return EventFrame
}
