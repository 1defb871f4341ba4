package frame

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Wire constants.
const (
	// Sentinel starts every frame on the wire.
	Sentinel byte = 0x69
	// Size is the number of stored bytes of a frame.
	Size = 4
	// WireSize is the number of bytes of a frame on the wire.
	WireSize = Size + 1
	// BroadcastAddress is accepted by every device.
	BroadcastAddress byte = 0xff
)

// SET_OUTPUT parameter values.
const (
	OutputLow  byte = 0
	OutputHigh byte = 0xff
)

// PulseQuantum is the duration of one SET_OUTPUT pulse unit.
const PulseQuantum = 10 * time.Millisecond

// Command is the command byte of a frame.
type Command byte

// Commands.
const (
	CmdSetDuty     Command = 1
	CmdProgramID   Command = 5
	CmdSetOutput   Command = 6
	CmdStop        Command = 9
	CmdStart       Command = 13
	CmdProgramDuty Command = 60
)

var commandNames = map[Command]string{
	CmdSetDuty:     "SET_DUTY",
	CmdProgramID:   "PROGRAM_ID",
	CmdSetOutput:   "SET_OUTPUT",
	CmdStop:        "STOP",
	CmdStart:       "START",
	CmdProgramDuty: "PROGRAM_DUTY",
}

// IsKnown tells if the command is defined by the protocol.
func (c Command) IsKnown() bool {
	_, ok := commandNames[c]
	return ok
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CMD(%d)", byte(c))
}

// ParseCommand parses a command name like SET_DUTY, case insensitive,
// or a command number.
func ParseCommand(s string) (Command, error) {
	for cmd, name := range commandNames {
		if strings.EqualFold(s, name) {
			return cmd, nil
		}
	}
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
	return Command(val), nil
}

// Frame is a command frame without the sentinel.
type Frame struct {
	Address   byte
	Command   Command
	Parameter byte
	Checksum  byte
}

// Checksum calculates the checksum of the fields.
func Checksum(address byte, cmd Command, param byte) byte {
	return address + byte(cmd) + param
}

// New creates a frame with checksum filled.
func New(address byte, cmd Command, param byte) Frame {
	return Frame{
		Address:   address,
		Command:   cmd,
		Parameter: param,
		Checksum:  Checksum(address, cmd, param),
	}
}

// FromBytes builds a frame from stored bytes in wire order.
func FromBytes(b [Size]byte) Frame {
	return Frame{Address: b[0], Command: Command(b[1]), Parameter: b[2], Checksum: b[3]}
}

// Valid checks the checksum.
func (f Frame) Valid() bool {
	return Checksum(f.Address, f.Command, f.Parameter) == f.Checksum
}

// AddressedTo tells whether a device with the given identity accepts the frame.
func (f Frame) AddressedTo(id byte) bool {
	return f.Address == BroadcastAddress || f.Address == id
}

// Bytes returns encoded bytes for sending, including the sentinel.
func (f Frame) Bytes() []byte {
	return []byte{Sentinel, f.Address, byte(f.Command), f.Parameter, f.Checksum}
}

// WriteTo writes the encoded frame.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// String implements fmt.Stringer.
func (f Frame) String() string {
	return fmt.Sprintf("[%02x] %s %d (cks %02x)", f.Address, f.Command, f.Parameter, f.Checksum)
}

// Parse decodes a single wire frame.
func Parse(raw []byte) (Frame, error) {
	if len(raw) < WireSize {
		return Frame{}, ErrShortFrame
	}
	if raw[0] != Sentinel {
		return Frame{}, ErrNoSentinel
	}
	var b [Size]byte
	copy(b[:], raw[1:WireSize])
	f := FromBytes(b)
	if !f.Valid() {
		return f, &ChecksumError{Expected: Checksum(f.Address, f.Command, f.Parameter), Actual: f.Checksum}
	}
	return f, nil
}
