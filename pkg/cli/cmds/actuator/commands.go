package actuator

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/cymbal/pkg/cli/sh"
	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l1/master"
)

type dutyResult struct {
	Duty byte `json:"duty"`
}

func (r dutyResult) String() string {
	return fmt.Sprintf("duty %d", r.Duty)
}

// addrArgs parses the leading address and the named byte arguments.
func addrArgs(c *ishell.Context, names ...string) (addr byte, vals []byte, err error) {
	if len(c.Args) < len(names)+1 {
		err = fmt.Errorf("ADDR required")
		if len(c.Args) > 0 {
			err = fmt.Errorf("%s required", names[len(c.Args)-1])
		}
		return
	}
	if addr, err = sh.ParseAddress(c.Args[0]); err != nil {
		return
	}
	for n, name := range names {
		val, e := sh.ParseByte(c.Args[n+1])
		if e != nil {
			err = fmt.Errorf("invalid %s: %v", name, e)
			return
		}
		vals = append(vals, val)
	}
	return
}

// addrCmd builds a command taking an address and byte arguments.
func addrCmd(name string, aliases []string, help string, fn func(cl *master.Client, addr byte, vals []byte) error, args ...string) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			addr, vals, err := addrArgs(c, args...)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cl *master.Client) error {
				return fn(cl, addr, vals)
			})
		}),
	}
}

var (
	// DutyCmd positions a device.
	DutyCmd = addrCmd("duty", []string{"p"}, "ADDR DUTY",
		func(cl *master.Client, addr byte, vals []byte) error {
			return cl.SetDuty(addr, vals[0])
		}, "DUTY")

	// MoveCmd shifts the duty of a device.
	MoveCmd = ishell.Cmd{
		Name:    "move",
		Aliases: []string{"m"},
		Help:    "ADDR DELTA",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("ADDR DELTA required"))
				return
			}
			addr, err := sh.ParseAddress(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			delta, err := strconv.Atoi(c.Args[1])
			if err != nil {
				c.Err(fmt.Errorf("invalid DELTA: %v", err))
				return
			}
			s := sh.ShellFrom(c)
			duty, err := s.Bus.Client.Move(addr, delta)
			if err != nil {
				c.Err(err)
				return
			}
			s.PrintResult(c, dutyResult{Duty: duty})
		}),
	}

	// OutCmd sets the digital output: 0 low, 255 high, otherwise a pulse.
	OutCmd = addrCmd("out", []string{"o"}, "ADDR VALUE",
		func(cl *master.Client, addr byte, vals []byte) error {
			return cl.Send(addr, frame.CmdSetOutput, vals[0])
		}, "VALUE")

	// StrikeCmd pulses the output.
	StrikeCmd = ishell.Cmd{
		Name:    "strike",
		Aliases: []string{"k"},
		Help:    "ADDR [UNITS]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ADDR required"))
				return
			}
			addr, err := sh.ParseAddress(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			units := master.DefaultInstrument().StrikeUnits
			if len(c.Args) > 1 {
				if units, err = sh.ParseByte(c.Args[1]); err != nil {
					c.Err(fmt.Errorf("invalid UNITS: %v", err))
					return
				}
			}
			sh.Do(c, func(cl *master.Client) error {
				return cl.Strike(addr, units)
			})
		}),
	}

	// HoldCmd drives the output high.
	HoldCmd = addrCmd("hold", nil, "ADDR",
		func(cl *master.Client, addr byte, vals []byte) error {
			return cl.Hold(addr)
		})

	// ReleaseCmd drives the output low.
	ReleaseCmd = addrCmd("release", nil, "ADDR",
		func(cl *master.Client, addr byte, vals []byte) error {
			return cl.Release(addr)
		})

	// ProgramCmd persists a new device identity, effective after power up.
	ProgramCmd = addrCmd("program", nil, "ADDR NEWADDR",
		func(cl *master.Client, addr byte, vals []byte) error {
			return cl.ProgramID(addr, vals[0])
		}, "NEWADDR")

	// ProgramDutyCmd persists the duty applied at power up.
	ProgramDutyCmd = addrCmd("progduty", nil, "ADDR DUTY",
		func(cl *master.Client, addr byte, vals []byte) error {
			return cl.ProgramDuty(addr, vals[0])
		}, "DUTY")

	// StopCmd releases the outputs.
	StopCmd = addrCmd("stop", nil, "ADDR",
		func(cl *master.Client, addr byte, vals []byte) error {
			return cl.Stop(addr)
		})

	// StartCmd drives the outputs again.
	StartCmd = addrCmd("start", nil, "ADDR",
		func(cl *master.Client, addr byte, vals []byte) error {
			return cl.Start(addr)
		})

	// SendCmd sends a raw frame.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "ADDR CMD [PARAM]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("ADDR CMD required"))
				return
			}
			addr, err := sh.ParseAddress(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			cmd, err := frame.ParseCommand(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			var param byte
			if len(c.Args) > 2 {
				if param, err = sh.ParseByte(c.Args[2]); err != nil {
					c.Err(fmt.Errorf("invalid PARAM: %v", err))
					return
				}
			}
			sh.Do(c, func(cl *master.Client) error {
				return cl.Send(addr, cmd, param)
			})
		}),
	}
)

func init() {
	sh.AddCmds(
		&DutyCmd,
		&MoveCmd,
		&OutCmd,
		&StrikeCmd,
		&HoldCmd,
		&ReleaseCmd,
		&ProgramCmd,
		&ProgramDutyCmd,
		&StopCmd,
		&StartCmd,
		&SendCmd,
	)
}
