package joystick

import (
	"flag"
	"strings"
	"time"

	"github.com/robotalks/cymbal/pkg/l1/master"
)

// Config defines the configurations for the controller.
type Config struct {
	DeviceIndex    int
	Verbose        bool
	InstrumentFile string
	// Buttons lists note names by button index.
	Buttons []string
}

// DefaultRetryInterval is the delay between attempts to open a joystick.
const DefaultRetryInterval = time.Second

var defaultConfig = Config{
	DeviceIndex: -1,
	Buttons:     []string{"G", "A", "H", "C", "D", "E", "F", "g", "a", "h", "c", "d"},
}

type noteList struct {
	names *[]string
}

func (l noteList) String() string {
	if l.names == nil {
		return ""
	}
	return strings.Join(*l.names, ",")
}

func (l noteList) Set(val string) error {
	*l.names = strings.Split(val, ",")
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "device", defaultConfig.DeviceIndex, "Device index, -1 for auto detection.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Print Joystick events.")
	flag.StringVar(&defaultConfig.InstrumentFile, "instrument", defaultConfig.InstrumentFile, "Instrument preset YAML, built-in preset if empty.")
	flag.Var(noteList{names: &defaultConfig.Buttons}, "buttons", "Comma separated note names by button index.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Buttons = append([]string(nil), defaultConfig.Buttons...)
	return &conf
}

// NewController creates a controller playing on client.
func (c *Config) NewController(client *master.Client) (*Controller, error) {
	inst := master.DefaultInstrument()
	if c.InstrumentFile != "" {
		var err error
		if inst, err = master.LoadInstrument(c.InstrumentFile); err != nil {
			return nil, err
		}
	}
	for _, name := range c.Buttons {
		if name == "" {
			continue
		}
		if _, err := inst.Note(name); err != nil {
			return nil, err
		}
	}
	ctl := NewController(master.NewPlayer(client, inst))
	ctl.DeviceIndex = c.DeviceIndex
	ctl.Verbose = c.Verbose
	ctl.Buttons = c.Buttons
	return ctl, nil
}
