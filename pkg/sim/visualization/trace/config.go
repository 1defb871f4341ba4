package trace

import (
	"flag"
	"io"
	"os"
)

// Config represents configuration for trace.
type Config struct {
	Enabled bool
	Output  io.Writer
}

var defaultConfig = Config{
	Output: os.Stdout,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.Enabled, "trace", defaultConfig.Enabled, "Print device state changes as JSON lines to stdout.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewAdapter creates adapter from config.
func (c *Config) NewAdapter() *Adapter {
	return NewAdapter(c)
}
