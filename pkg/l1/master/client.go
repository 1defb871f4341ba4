// Package master drives actuator devices from the bus master side.
package master

import (
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l0/pulse"
	"github.com/robotalks/cymbal/pkg/l1"
)

// DefaultStartDuty is the duty assumed for devices never set.
const DefaultStartDuty byte = 40

// Client sends commands to devices and remembers the duty last set on
// each address, as devices can't be queried.
type Client struct {
	Sender    l1.FrameSender
	MinDuty   byte
	MaxDuty   byte
	StartDuty byte

	lock  sync.Mutex
	duty  map[byte]byte
	reset *byte
}

// NewClient creates a Client with the default duty range.
func NewClient(sender l1.FrameSender) *Client {
	return &Client{
		Sender:    sender,
		MinDuty:   pulse.DefaultMinDuty,
		MaxDuty:   pulse.DefaultMaxDuty,
		StartDuty: DefaultStartDuty,
		duty:      make(map[byte]byte),
	}
}

// Send sends a raw command.
func (c *Client) Send(addr byte, cmd frame.Command, param byte) error {
	f := frame.New(addr, cmd, param)
	if glog.V(2) {
		glog.Infof("send %s", f)
	}
	return c.Sender.SendFrame(f)
}

// CheckDuty validates a duty against the operating range.
func (c *Client) CheckDuty(duty byte) error {
	if duty < c.MinDuty || duty > c.MaxDuty {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrDutyOutOfRange, duty, c.MinDuty, c.MaxDuty)
	}
	return nil
}

// SetDuty positions a device. A broadcast positions all devices.
func (c *Client) SetDuty(addr, duty byte) error {
	if err := c.CheckDuty(duty); err != nil {
		return err
	}
	if err := c.Send(addr, frame.CmdSetDuty, duty); err != nil {
		return err
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.recordLocked(addr, duty)
	return nil
}

// Duty returns the duty last set on addr.
func (c *Client) Duty(addr byte) byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.dutyLocked(addr)
}

func (c *Client) dutyLocked(addr byte) byte {
	if duty, ok := c.duty[addr]; ok {
		return duty
	}
	if c.reset != nil {
		return *c.reset
	}
	return c.StartDuty
}

func (c *Client) recordLocked(addr, duty byte) {
	if addr == frame.BroadcastAddress {
		c.duty = make(map[byte]byte)
		c.reset = &duty
	} else {
		c.duty[addr] = duty
	}
}

// Move shifts the duty of a device by delta, clamped to the range. It
// returns the new duty. Concurrent moves on one address accumulate.
func (c *Client) Move(addr byte, delta int) (byte, error) {
	c.lock.Lock()
	prev := c.dutyLocked(addr)
	duty := int(prev) + delta
	if duty > int(c.MaxDuty) {
		duty = int(c.MaxDuty)
	} else if duty < int(c.MinDuty) {
		duty = int(c.MinDuty)
	}
	c.recordLocked(addr, byte(duty))
	c.lock.Unlock()

	if err := c.Send(addr, frame.CmdSetDuty, byte(duty)); err != nil {
		c.lock.Lock()
		if addr != frame.BroadcastAddress && c.duty[addr] == byte(duty) {
			c.duty[addr] = prev
		}
		c.lock.Unlock()
		return prev, err
	}
	return byte(duty), nil
}

// Strike pulses the output for units of the pulse quantum.
func (c *Client) Strike(addr, units byte) error {
	if units == frame.OutputLow || units == frame.OutputHigh {
		return fmt.Errorf("%w: %d", ErrInvalidPulse, units)
	}
	return c.Send(addr, frame.CmdSetOutput, units)
}

// Hold drives the output high until Release.
func (c *Client) Hold(addr byte) error {
	return c.Send(addr, frame.CmdSetOutput, frame.OutputHigh)
}

// Release drives the output low.
func (c *Client) Release(addr byte) error {
	return c.Send(addr, frame.CmdSetOutput, frame.OutputLow)
}

// ProgramID persists a new identity on the device at old. The device
// answers to it after its next power up.
func (c *Client) ProgramID(old, id byte) error {
	if id == frame.BroadcastAddress {
		return fmt.Errorf("%w: %d is the broadcast address", ErrInvalidAddress, id)
	}
	return c.Send(old, frame.CmdProgramID, id)
}

// ProgramDuty persists the duty applied at power up.
func (c *Client) ProgramDuty(addr, duty byte) error {
	if err := c.CheckDuty(duty); err != nil {
		return err
	}
	return c.Send(addr, frame.CmdProgramDuty, duty)
}

// Stop releases the outputs of a device.
func (c *Client) Stop(addr byte) error {
	return c.Send(addr, frame.CmdStop, 0)
}

// Start drives the outputs of a device again.
func (c *Client) Start(addr byte) error {
	return c.Send(addr, frame.CmdStart, 0)
}
