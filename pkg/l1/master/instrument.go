package master

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/cymbal/pkg/l0/pulse"
)

// Note is where a note is played: the device and its duty.
type Note struct {
	Address byte `yaml:"address"`
	Duty    byte `yaml:"duty"`
}

// Instrument maps notes and durations to bus commands.
//
//	notes:
//	  G: {address: 1, duty: 45}
//	durations:
//	  O: 400ms
//	settle: 120ms
//	strike_units: 2
type Instrument struct {
	Notes     map[string]Note          `yaml:"notes"`
	Durations map[string]time.Duration `yaml:"durations"`
	// Settle is waited after repositioning before striking.
	Settle time.Duration `yaml:"settle"`
	// StrikeUnits is the strike pulse length in pulse quanta.
	StrikeUnits byte `yaml:"strike_units"`
}

// Instrument defaults
const (
	DefaultSettle      = 120 * time.Millisecond
	DefaultStrikeUnits = 2
)

// DefaultInstrument returns the two-device chime.
func DefaultInstrument() *Instrument {
	return &Instrument{
		Notes: map[string]Note{
			"G": {1, 45},
			"A": {1, 43},
			"H": {1, 40},
			"C": {1, 38},
			"D": {1, 36},
			"E": {1, 34},
			"F": {2, 48},
			"g": {2, 45},
			"a": {2, 43},
			"h": {2, 41},
			"c": {2, 39},
			"d": {2, 37},
		},
		Durations: map[string]time.Duration{
			"O": 400 * time.Millisecond,
			"o": 250 * time.Millisecond,
			".": 120 * time.Millisecond,
			",": 600 * time.Millisecond,
		},
		Settle:      DefaultSettle,
		StrikeUnits: DefaultStrikeUnits,
	}
}

// LoadInstrument reads an instrument from a YAML file. Sections missing
// from the file keep the defaults.
func LoadInstrument(path string) (*Instrument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseInstrument(data)
}

// ParseInstrument parses an instrument from YAML.
func ParseInstrument(data []byte) (*Instrument, error) {
	var inst Instrument
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("parse instrument: %v", err)
	}
	defaults := DefaultInstrument()
	if len(inst.Notes) == 0 {
		inst.Notes = defaults.Notes
	}
	if len(inst.Durations) == 0 {
		inst.Durations = defaults.Durations
	}
	if inst.Settle == 0 {
		inst.Settle = defaults.Settle
	}
	if inst.StrikeUnits == 0 {
		inst.StrikeUnits = defaults.StrikeUnits
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return &inst, nil
}

// Validate checks notes and durations.
func (i *Instrument) Validate() error {
	for name, note := range i.Notes {
		if len(name) != 1 {
			return fmt.Errorf("note %q: name must be a single character", name)
		}
		if note.Duty < pulse.DefaultMinDuty || note.Duty > pulse.DefaultMaxDuty {
			return fmt.Errorf("note %q: %w: %d", name, ErrDutyOutOfRange, note.Duty)
		}
	}
	for name, d := range i.Durations {
		if len(name) != 1 {
			return fmt.Errorf("duration %q: name must be a single character", name)
		}
		if d < 0 {
			return fmt.Errorf("duration %q: negative", name)
		}
	}
	if i.Settle < 0 {
		return fmt.Errorf("settle: negative")
	}
	if i.StrikeUnits == 0 || i.StrikeUnits == 255 {
		return fmt.Errorf("strike_units: %w: %d", ErrInvalidPulse, i.StrikeUnits)
	}
	return nil
}

// Note looks up a note.
func (i *Instrument) Note(name string) (Note, error) {
	note, ok := i.Notes[name]
	if !ok {
		return note, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	return note, nil
}

// Duration looks up a duration.
func (i *Instrument) Duration(name string) (time.Duration, error) {
	d, ok := i.Durations[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDuration, name)
	}
	return d, nil
}
