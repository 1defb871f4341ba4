package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrShortFrame indicates fewer bytes than a wire frame.
	ErrShortFrame = errors.New("short frame")
	// ErrNoSentinel indicates the wire frame doesn't start with Sentinel.
	ErrNoSentinel = errors.New("missing start sentinel")
	// ErrUnknownCommand indicates a command name not in the protocol.
	ErrUnknownCommand = errors.New("unknown command")
)

// ChecksumError reports a frame whose checksum doesn't match.
type ChecksumError struct {
	Expected byte
	Actual   byte
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expect %02x, got %02x", e.Expected, e.Actual)
}
