package sim

import (
	"github.com/robotalks/cymbal/pkg/l0/device"
	"github.com/robotalks/cymbal/pkg/l0/frame"
)

// ObserverMux forwards device events to every observer in it.
type ObserverMux []device.Observer

// ReceiverEvent implements frame.EventObserver.
func (m ObserverMux) ReceiverEvent(ev frame.Event) {
	for _, o := range m {
		o.ReceiverEvent(ev)
	}
}

// Dispatched implements device.Observer.
func (m ObserverMux) Dispatched(f frame.Frame, outcome device.Outcome) {
	for _, o := range m {
		o.Dispatched(f, outcome)
	}
}

// DispatchHook calls a func after every dispatched frame.
type DispatchHook func(frame.Frame, device.Outcome)

// ReceiverEvent implements frame.EventObserver.
func (h DispatchHook) ReceiverEvent(frame.Event) {}

// Dispatched implements device.Observer.
func (h DispatchHook) Dispatched(f frame.Frame, outcome device.Outcome) {
	h(f, outcome)
}
