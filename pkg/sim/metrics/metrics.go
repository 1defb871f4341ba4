// Package metrics exports simulated device counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/cymbal/pkg/l0/device"
	"github.com/robotalks/cymbal/pkg/l0/frame"
)

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the /metrics handler.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics implements device.Observer with Prometheus metrics.
type Metrics struct {
	ReceiverEvents *prometheus.CounterVec // labels: event
	Frames         *prometheus.CounterVec // labels: command, outcome
	Duty           prometheus.Gauge
	Output         prometheus.Gauge
	Inert          prometheus.Gauge
	PulseWidth     prometheus.Gauge
}

// New registers and returns the device metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReceiverEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cymbal_receiver_bytes_total",
			Help: "Bus bytes received by outcome.",
		}, []string{"event"}),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cymbal_dispatched_frames_total",
			Help: "Frames dispatched by command and outcome.",
		}, []string{"command", "outcome"}),
		Duty: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cymbal_duty",
			Help: "Live pulse duty in timer ticks.",
		}),
		Output: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cymbal_output",
			Help: "Digital output latch, 1 is high.",
		}),
		Inert: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cymbal_inert",
			Help: "1 while the outputs are released.",
		}),
		PulseWidth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cymbal_pulse_width_seconds",
			Help: "Pulse width seen on the pin, 0 while released.",
		}),
	}
	reg.MustRegister(m.ReceiverEvents, m.Frames, m.Duty, m.Output, m.Inert, m.PulseWidth)
	return m
}

// ReceiverEvent implements frame.EventObserver.
func (m *Metrics) ReceiverEvent(ev frame.Event) {
	m.ReceiverEvents.WithLabelValues(ev.String()).Inc()
}

// Dispatched implements device.Observer.
func (m *Metrics) Dispatched(f frame.Frame, outcome device.Outcome) {
	m.Frames.WithLabelValues(f.Command.String(), outcome.String()).Inc()
}

// Update sets the gauges from a snapshot.
func (m *Metrics) Update(state device.State, pulseWidthSeconds float64) {
	m.Duty.Set(float64(state.Duty))
	m.Output.Set(boolValue(bool(state.Output)))
	m.Inert.Set(boolValue(state.Mode == device.ModeInert))
	m.PulseWidth.Set(pulseWidthSeconds)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
