// Package joystick plays an instrument from a joystick.
package joystick

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/joystick/device"
	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l1/master"
)

// TuneAxis is the axis moving the device of the last note, the
// vertical hat on most gamepads.
const TuneAxis = 7

// Controller strikes a note when a button is pressed. TuneAxis moves
// the device of the last note by one duty step.
type Controller struct {
	Player        *master.Player
	DeviceIndex   int
	Verbose       bool
	Buttons       []string
	RetryInterval time.Duration
	// Open opens a joystick by index, negative to detect.
	Open func(index int) (device.Device, error)

	lock     sync.Mutex
	pending  []pendingEvent
	lastNote string
}

type pendingEvent struct {
	event device.Event
	lost  bool
}

// NewController creates a Controller.
func NewController(player *master.Player) *Controller {
	return &Controller{
		Player:        player,
		DeviceIndex:   defaultConfig.DeviceIndex,
		Buttons:       defaultConfig.Buttons,
		RetryInterval: DefaultRetryInterval,
		Open:          openDevice,
	}
}

func openDevice(index int) (device.Device, error) {
	if index >= 0 {
		return device.Open(index)
	}
	return device.DetectAndOpen(0)
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(c)
	loop.AddController(fx.PrLvControl, c)
}

// Run implements Runnable.
func (c *Controller) Run(ctx context.Context) error {
	var js device.Device
	defer func() {
		if js != nil {
			js.Close()
		}
	}()
	loopCtl := fx.LoopCtlFrom(ctx)
	var eventCh chan device.Event
	retry := time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-retry:
			retry = nil
			var err error
			if js, err = c.Open(c.DeviceIndex); err != nil {
				glog.Errorf("open joystick: %v", err)
			} else if js == nil {
				glog.V(1).Info("no joystick detected")
			}
			if err != nil || js == nil {
				retry = time.After(c.RetryInterval)
				continue
			}
			glog.Infof("joystick %d %q opened", js.Index(), js.Name())
			eventCh = make(chan device.Event, 1)
			go c.poll(ctx, js, eventCh)
		case ev, ok := <-eventCh:
			if !ok {
				js.Close()
				js, eventCh = nil, nil
				retry = time.After(c.RetryInterval)
			}
			c.lock.Lock()
			c.pending = append(c.pending, pendingEvent{event: ev, lost: !ok})
			c.lock.Unlock()
			loopCtl.TriggerNext()
		}
	}
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	c.lock.Lock()
	pending := c.pending
	c.pending = nil
	c.lock.Unlock()
	for _, p := range pending {
		if p.lost {
			glog.Warning("joystick lost, releasing outputs")
			if err := c.Player.Client.Release(frame.BroadcastAddress); err != nil {
				return err
			}
			continue
		}
		if err := c.handle(cc.Context(), p.event); err != nil {
			glog.Errorf("joystick %v: %v", p.event, err)
		}
	}
	return nil
}

func (c *Controller) handle(ctx context.Context, ev device.Event) error {
	if ev.Init {
		return nil
	}
	switch ev.Kind {
	case device.KindButton:
		if !ev.Pressed() || ev.Index >= len(c.Buttons) || c.Buttons[ev.Index] == "" {
			return nil
		}
		c.lastNote = c.Buttons[ev.Index]
		return c.Player.PlayNote(ctx, c.lastNote)
	case device.KindAxis:
		if ev.Index != TuneAxis || ev.Value == 0 || c.lastNote == "" {
			return nil
		}
		note, err := c.Player.Instrument.Note(c.lastNote)
		if err != nil {
			return err
		}
		// up reads negative
		delta := 1
		if ev.Value > 0 {
			delta = -1
		}
		duty, err := c.Player.Client.Move(note.Address, delta)
		if err == nil {
			glog.Infof("note %s: device %d duty %d", c.lastNote, note.Address, duty)
		}
		return err
	}
	return nil
}

func (c *Controller) poll(ctx context.Context, js device.Device, ch chan<- device.Event) {
	defer close(ch)
	for {
		ev, err := js.ReadEvent()
		if err != nil {
			glog.Errorf("joystick read: %v", err)
			return
		}
		if c.Verbose {
			glog.Infof("joystick %+v", ev)
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}
