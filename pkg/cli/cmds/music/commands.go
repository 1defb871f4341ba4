package music

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/cymbal/pkg/cli/sh"
	"github.com/robotalks/cymbal/pkg/l1/master"
)

const instrumentKey = "$instrument"

var instrumentFile string

func init() {
	flag.StringVar(&instrumentFile, "instrument", instrumentFile, "Instrument preset YAML, built-in preset if empty.")
}

// Instrument loads the instrument once per shell.
func Instrument(c *ishell.Context) (*master.Instrument, error) {
	if inst, ok := c.Get(instrumentKey).(*master.Instrument); ok {
		return inst, nil
	}
	inst := master.DefaultInstrument()
	if instrumentFile != "" {
		var err error
		if inst, err = master.LoadInstrument(instrumentFile); err != nil {
			return nil, err
		}
	}
	c.Set(instrumentKey, inst)
	return inst, nil
}

func player(c *ishell.Context) (*master.Player, error) {
	inst, err := Instrument(c)
	if err != nil {
		return nil, err
	}
	s := sh.ShellFrom(c)
	p := master.NewPlayer(s.Bus.Client, inst)
	if s.Interactive && !s.OutputJSON {
		p.OnBeat = func(b master.Beat) {
			c.Print(b.String(), " ")
		}
	}
	return p, nil
}

var (
	// NoteCmd plays notes.
	NoteCmd = ishell.Cmd{
		Name:    "note",
		Aliases: []string{"n"},
		Help:    "NOTE...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("NOTE required"))
				return
			}
			p, err := player(c)
			if err != nil {
				c.Err(err)
				return
			}
			for _, name := range c.Args {
				if _, err := p.Instrument.Note(name); err != nil {
					c.Err(err)
					return
				}
			}
			sh.Do(c, func(*master.Client) error {
				for _, name := range c.Args {
					if err := p.PlayNote(context.TODO(), name); err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}

	// PlayCmd plays a sheet from a file, or from the arguments.
	PlayCmd = ishell.Cmd{
		Name: "play",
		Help: "FILE | -- BEATS...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("FILE required"))
				return
			}
			var text string
			if c.Args[0] == "--" {
				text = strings.Join(c.Args[1:], " ")
			} else {
				data, err := os.ReadFile(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				text = string(data)
			}
			p, err := player(c)
			if err != nil {
				c.Err(err)
				return
			}
			beats := master.ParseSheet(text)
			if err := p.Check(beats); err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(*master.Client) error {
				err := p.Play(context.TODO(), beats)
				if p.OnBeat != nil {
					c.Println()
				}
				return err
			})
		}),
	}
)

func init() {
	sh.AddCmds(
		&NoteCmd,
		&PlayCmd,
	)
}
