// Package bus opens the actuator bus named by a URL.
package bus

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/robotalks/cymbal/pkg/l1/comm"
	"github.com/robotalks/cymbal/pkg/l1/comm/mqtt"
	"github.com/robotalks/cymbal/pkg/l1/comm/serial"
	"github.com/robotalks/cymbal/pkg/l1/comm/stream"
	"github.com/robotalks/cymbal/pkg/l1/comm/websocket"
)

// ErrUnknownScheme indicates the bus URL scheme is not supported.
var ErrUnknownScheme = errors.New("unknown bus URL scheme")

// Config provides common options to open the bus.
type Config struct {
	// BusURL specifies the bus, e.g.
	//   mqtt://host:1883/cymbal/?topic=bus
	//   ws://host:8080/bus
	//   serial:///dev/ttyUSB0?baud=9600
	//   tcp://host:4000
	BusURL string
	// MQTTBrokerURL is where devices publish status, e.g.
	// mqtt://host:1883/cymbal/. Empty disables status.
	MQTTBrokerURL string
}

var defaultConfig = Config{
	BusURL:        "mqtt://localhost:1883/cymbal/",
	MQTTBrokerURL: "mqtt://localhost:1883/cymbal/",
}

func init() {
	if val := os.Getenv("CYMBAL_BUS_URL"); val != "" {
		defaultConfig.BusURL = val
	}
	if val := os.Getenv("CYMBAL_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BusURL, "bus", defaultConfig.BusURL, "Bus URL.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for device status.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the bus using current config.
func (c *Config) Open() (comm.Conn, error) {
	return Open(c.BusURL)
}

// MustOpen opens the bus and fails on error.
func (c *Config) MustOpen() comm.Conn {
	conn, err := c.Open()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Open opens a bus by URL scheme.
func Open(busURL string) (comm.Conn, error) {
	parsedURL, err := url.Parse(busURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bus URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt":
		return mqtt.Dial(busURL)
	case "ws", "wss":
		return websocket.Dial(busURL)
	case "serial":
		return serial.Open(busURL)
	case "tcp":
		return stream.Dial(parsedURL.Host)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, parsedURL.Scheme)
	}
}
