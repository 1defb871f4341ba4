// Package device sets up the host environment of a device instance.
package device

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/l1/comm/mqtt"
	"github.com/robotalks/cymbal/pkg/l1/env"
	"github.com/robotalks/cymbal/pkg/l1/msgs"
)

// Config provides common options to set up a device instance.
type Config struct {
	// Name identifies the instance on the host side.
	Name string
	// StatusInterval is the period of status publishing.
	StatusInterval time.Duration
}

// DefaultStatusInterval is the default period of status publishing.
const DefaultStatusInterval = time.Second

var defaultConfig = Config{
	StatusInterval: DefaultStatusInterval,
}

func init() {
	if val := os.Getenv("CYMBAL_NAME"); val != "" {
		defaultConfig.Name = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "Device instance name, defaults to one derived from machine ID.")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Status publishing interval.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the host environment of a device instance.
type Env struct {
	Config *Config
	// Status is nil when no broker is configured.
	Status *mqtt.StatusPublisher
}

// NewEnv creates Env from config. Status goes to brokerURL if not empty.
func (c *Config) NewEnv(brokerURL string) (*Env, error) {
	if c.Name == "" {
		c.Name = env.DefaultName()
	}
	e := &Env{Config: c}
	if brokerURL != "" {
		pub, err := mqtt.NewStatusPublisher(brokerURL, c.Name)
		if err != nil {
			return nil, fmt.Errorf("create status publisher error: %v", err)
		}
		e.Status = pub
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(brokerURL string) *Env {
	e, err := c.NewEnv(brokerURL)
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// PublishStatus publishes status if a broker is configured.
func (e *Env) PublishStatus(status *msgs.Status) error {
	if e.Status == nil {
		return nil
	}
	status.Name = e.Config.Name
	return e.Status.Publish(status)
}

// AddToLoop adds runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	if e.Status != nil {
		loop.Add(e.Status)
	}
}
