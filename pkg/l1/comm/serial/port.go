// Package serial carries the bus over a serial port, e.g. a USB to
// RS-485 bridge.
package serial

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goburrow/serial"

	"github.com/robotalks/cymbal/pkg/l1/comm/stream"
)

// Defaults
const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 100 * time.Millisecond
)

// ConfigFromURL parses serial:///dev/ttyUSB0?baud=9600&parity=N.
func ConfigFromURL(portURL string) (*serial.Config, error) {
	u, err := url.Parse(portURL)
	if err != nil {
		return nil, err
	}
	conf := &serial.Config{
		Address:  u.Path,
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  DefaultReadTimeout,
	}
	if conf.Address == "" {
		conf.Address = u.Opaque
	}
	if conf.Address == "" {
		return nil, fmt.Errorf("serial port device required: %q", portURL)
	}
	query := u.Query()
	if val := query.Get("baud"); val != "" {
		if conf.BaudRate, err = strconv.Atoi(val); err != nil {
			return nil, fmt.Errorf("invalid baud rate %q: %v", val, err)
		}
	}
	if val := query.Get("parity"); val != "" {
		conf.Parity = val
	}
	return conf, nil
}

// Open opens the serial port described by the URL.
func Open(portURL string) (*stream.ReadWriter, error) {
	conf, err := ConfigFromURL(portURL)
	if err != nil {
		return nil, err
	}
	p, err := serial.Open(conf)
	if err != nil {
		return nil, err
	}
	return stream.New(&timeoutPort{Port: p}), nil
}

// timeoutPort retries reads on timeout so a quiet bus is not an error.
type timeoutPort struct {
	serial.Port
}

func (p *timeoutPort) Read(b []byte) (int, error) {
	for {
		n, err := p.Port.Read(b)
		if err == serial.ErrTimeout && n == 0 {
			continue
		}
		return n, err
	}
}
