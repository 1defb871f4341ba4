package actuator

import (
	"flag"
	"time"

	"github.com/robotalks/cymbal/pkg/l0/device"
	env "github.com/robotalks/cymbal/pkg/l1/env/device"
)

// Config defines the configuration for the simulated device.
type Config struct {
	Device device.Config
	// EEPROMImage persists the EEPROM between runs if set.
	EEPROMImage string
	// ByteTime paces bus bytes, 0 delivers at once.
	ByteTime time.Duration
}

// Defaults
const (
	DefaultIdleInterval = time.Millisecond
)

var defaultConfig = Config{
	Device: device.DefaultConfig(),
}

func init() {
	defaultConfig.Device.IdleInterval = DefaultIdleInterval
}

// SetupFlags sets command line flags.
func SetupFlags() {
	conf := &defaultConfig.Device
	flag.StringVar(&defaultConfig.EEPROMImage, "eeprom", defaultConfig.EEPROMImage, "EEPROM image file, loaded at boot and updated on writes.")
	flag.DurationVar(&defaultConfig.ByteTime, "byte-time", defaultConfig.ByteTime, "Delay between bus bytes, e.g. 1ms for 9600 baud.")
	flag.DurationVar(&conf.SettleDelay, "settle-delay", conf.SettleDelay, "Boot settle delay.")
	flag.DurationVar(&conf.PulseQuantum, "pulse-quantum", conf.PulseQuantum, "Duration of one output pulse unit.")
	flag.BoolVar(&conf.ClampDuty, "clamp-duty", conf.ClampDuty, "Clamp SET_DUTY to the operating range.")
	flag.BoolVar(&conf.StrictResync, "strict-resync", conf.StrictResync, "Resynchronize the receiver on sentinels only.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates the Controller.
func (c *Config) NewController(e *env.Env) (*Controller, error) {
	ctl := NewController(e, c.Device)
	ctl.Link.ByteTime = c.ByteTime
	if c.EEPROMImage != "" {
		if err := ctl.PersistEEPROM(c.EEPROMImage); err != nil {
			return nil, err
		}
	}
	return ctl, nil
}
