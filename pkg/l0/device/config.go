package device

import (
	"time"

	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l0/hal"
	"github.com/robotalks/cymbal/pkg/l0/pulse"
)

// Hardware is the set of peripherals a Device drives.
type Hardware struct {
	Pulse  hal.PulseTimer
	Output hal.Pin
	EEPROM hal.EEPROM
	Bus    hal.Bus
	Clock  hal.Clock
}

// Config defines the firmware constants.
type Config struct {
	MinDuty byte
	MaxDuty byte
	Period  byte
	// PulseQuantum is one SET_OUTPUT pulse unit.
	PulseQuantum time.Duration
	// SettleDelay is waited twice during boot.
	SettleDelay time.Duration
	// ClampDuty limits SET_DUTY to [MinDuty, MaxDuty] instead of
	// passing the value through.
	ClampDuty bool
	// StrictResync only resynchronizes the receiver on sentinels.
	StrictResync bool
	// IdleInterval sleeps between empty polls in Run, 0 spins.
	IdleInterval time.Duration
}

// Defaults
const (
	DefaultSettleDelay = time.Second
)

// DefaultConfig returns the configuration of deployed firmware.
func DefaultConfig() Config {
	return Config{
		MinDuty:      pulse.DefaultMinDuty,
		MaxDuty:      pulse.DefaultMaxDuty,
		Period:       pulse.DefaultPeriod,
		PulseQuantum: frame.PulseQuantum,
		SettleDelay:  DefaultSettleDelay,
	}
}
