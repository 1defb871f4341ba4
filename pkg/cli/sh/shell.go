package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l1/comm"
	"github.com/robotalks/cymbal/pkg/l1/comm/mqtt"
	"github.com/robotalks/cymbal/pkg/l1/env/bus"
	"github.com/robotalks/cymbal/pkg/l1/master"
	"github.com/robotalks/cymbal/pkg/l1/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *bus.Config
	Bus    *BusLoop
}

// BusLoop is a running loop with an open bus.
type BusLoop struct {
	Ctx    context.Context
	Cancel func()
	URL    string
	Loop   *fx.Loop
	Pipe   *comm.Pipe
	Client *master.Client
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *bus.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires an open bus.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Bus == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// ParseAddress parses a device address. "all" and "*" are the
// broadcast address.
func ParseAddress(s string) (byte, error) {
	switch strings.ToLower(s) {
	case "all", "*":
		return frame.BroadcastAddress, nil
	}
	addr, err := ParseByte(s)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return addr, nil
}

// ParseByte parses a decimal or 0x prefixed byte.
func ParseByte(s string) (byte, error) {
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(val), nil
}

// FormatStatus prints a device status into friendly string for display.
func FormatStatus(status *msgs.Status) string {
	mode := "active"
	if status.Inert {
		mode = "inert"
	}
	out := "low"
	if status.Output {
		out = "high"
	}
	return fmt.Sprintf("%s: address=%d %s duty=%d output=%s frames=%d checksum-errors=%d",
		status.Name, status.Address, mode, status.Duty, out, status.Frames, status.ChecksumErrors)
}

// Do runs fn with the bus client and reports the result.
func Do(c *ishell.Context, fn func(*master.Client) error) error {
	s := ShellFrom(c)
	if s.Bus == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	if err := fn(s.Bus.Client); err != nil {
		c.Err(err)
		return err
	}
	s.PrintResult(c, nil)
	return nil
}

// PrintResult prints a command result, OK if result is nil.
func (s *Shell) PrintResult(c *ishell.Context, result interface{}) {
	if s.OutputJSON {
		if result == nil {
			result = map[string]bool{"ok": true}
		}
		out, err := json.Marshal(result)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	if result == nil {
		c.Println("OK")
		return
	}
	c.Println(result)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Discover collects the status of devices publishing on the broker.
func (s *Shell) Discover(ctx context.Context) ([]*msgs.Status, error) {
	if s.Config.MQTTBrokerURL == "" {
		return nil, fmt.Errorf("MQTT broker not configured")
	}
	return mqtt.Discover(ctx, s.Config.MQTTBrokerURL, mqtt.DefaultDiscoverTimeout)
}

// Connect opens the bus at busURL.
func (s *Shell) Connect(busURL string) error {
	conn, err := bus.Open(busURL)
	if err != nil {
		return err
	}
	busLoop := &BusLoop{URL: busURL, Pipe: comm.NewPipe(conn)}
	busLoop.Pipe.Handler = frameLogger{}
	busLoop.Client = master.NewClient(busLoop.Pipe)
	busLoop.Ctx, busLoop.Cancel = context.WithCancel(context.Background())
	busLoop.Loop = fx.NewLoop()
	busLoop.Loop.Add(busLoop.Pipe)
	if s.Bus != nil {
		s.Bus.Cancel()
	}
	s.Bus = busLoop
	go busLoop.Loop.Run(busLoop.Ctx)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", busURL))
	return nil
}

// Disconnect closes the current bus.
func (s *Shell) Disconnect() {
	if s.Bus != nil {
		s.Bus.Cancel()
		s.Bus = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.BusURL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.BusURL)
		}
		if err := s.Connect(s.Config.BusURL); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.BusURL, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// frameLogger logs frames other masters put on the bus.
type frameLogger struct{}

func (frameLogger) HandleFrame(ctx context.Context, f frame.Frame) {
	glog.V(1).Infof("RCV %s", f)
}

var (
	// DiscoverCmd lists devices publishing status.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			statusList, err := s.Discover(context.TODO())
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(statusList) == 0 {
					// in case statusList is nil, make it empty slice.
					statusList = []*msgs.Status{}
				}
				out, err := json.Marshal(statusList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(statusList) == 0 {
				c.Println("No devices found")
				return
			}
			for _, status := range statusList {
				c.Println(FormatStatus(status))
			}
		},
	}

	// ConnectCmd opens a bus.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			busURL := s.Config.BusURL
			if len(c.Args) > 0 {
				busURL = c.Args[0]
			}
			if busURL == "" {
				c.Err(fmt.Errorf("URL required"))
				return
			}
			if err := s.Connect(busURL); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// DisconnectCmd closes current bus.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(bus.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
