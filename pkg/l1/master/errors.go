package master

import (
	"errors"
	"fmt"
)

var (
	// ErrDutyOutOfRange indicates a duty outside the operating range.
	ErrDutyOutOfRange = errors.New("duty out of range")
	// ErrInvalidPulse indicates a pulse length that would be read as a
	// level (0 or 255).
	ErrInvalidPulse = errors.New("invalid pulse length")
	// ErrInvalidAddress indicates an identity that can't be programmed.
	ErrInvalidAddress = errors.New("invalid device address")
	// ErrUnknownNote indicates a note missing from the instrument.
	ErrUnknownNote = errors.New("unknown note")
	// ErrUnknownDuration indicates a duration missing from the instrument.
	ErrUnknownDuration = errors.New("unknown duration")
)

// SheetError locates an error in a music sheet.
type SheetError struct {
	Token int
	Text  string
	Err   error
}

// Error implements error.
func (e *SheetError) Error() string {
	return fmt.Sprintf("token %d %q: %v", e.Token, e.Text, e.Err)
}

// Unwrap returns the cause.
func (e *SheetError) Unwrap() error {
	return e.Err
}
