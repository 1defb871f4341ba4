// Package trace prints device state changes as JSON lines, one object
// per change, for plotting or diffing runs.
package trace

import (
	"encoding/json"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/sim"
)

// Record is one traced change.
type Record struct {
	TimeMs       int64  `json:"t"`
	Name         string `json:"name"`
	ID           byte   `json:"id"`
	Mode         string `json:"mode"`
	Duty         byte   `json:"duty"`
	PulseWidthUs int64  `json:"pulse_width_us"`
	Pin          string `json:"pin"`
}

// RecordFrom converts a snapshot.
func RecordFrom(s sim.Snapshot) Record {
	return Record{
		TimeMs:       s.At.UnixNano() / 1e6,
		Name:         s.Name,
		ID:           s.ID,
		Mode:         s.Mode.String(),
		Duty:         s.Duty,
		PulseWidthUs: s.PulseWidth.Microseconds(),
		Pin:          s.Pin.String(),
	}
}

// Adapter collects snapshots and prints those which changed.
type Adapter struct {
	Config *Config

	pending []sim.Snapshot
	last    *sim.Snapshot
}

// NewAdapter creates the adapter.
func NewAdapter(config *Config) *Adapter {
	return &Adapter{Config: config}
}

// Subscribe is a helper to subscribe status changes.
func (a *Adapter) Subscribe(sub interface{ SubscribeStatus(sim.StatusListener) }) *Adapter {
	if a.Config.Enabled {
		sub.SubscribeStatus(a)
	}
	return a
}

// StatusChanged implements StatusListener.
func (a *Adapter) StatusChanged(cc fx.ControlContext, s sim.Snapshot) {
	if a.last != nil && a.last.SameAs(s) {
		return
	}
	a.last = &s
	a.pending = append(a.pending, s)
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	if a.Config.Enabled {
		l.AddController(fx.PrLvIdle, fx.ControlFunc(a.ReportChanges))
	}
}

// ReportChanges is a controller to report changes.
func (a *Adapter) ReportChanges(cc fx.ControlContext) error {
	pending := a.pending
	a.pending = nil
	for _, s := range pending {
		encoded, err := json.Marshal(RecordFrom(s))
		if err != nil {
			glog.Errorf("trace: %v", err)
			continue
		}
		if _, err = fmt.Fprintln(a.Config.Output, string(encoded)); err != nil {
			return err
		}
	}
	return nil
}
