// Package metrics exposes Prometheus instrumentation for the table store and
// the dialogue machine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call results used as the "result" label.
const (
	ResultOK        = "ok"
	ResultRetryable = "retryable_error"
	ResultError     = "error"
)

// Metrics holds the labbot collectors.
//
// Metrics:
//   - labbot_adapter_calls_total{op,result} - spreadsheet backend calls
//   - labbot_adapter_call_duration_seconds{op} - backend call latency
//   - labbot_dialogue_events_total{event} - dialogue transitions
//   - labbot_dialogues_active - dialogues waiting for a link
type Metrics struct {
	AdapterCalls    *prometheus.CounterVec
	AdapterDuration *prometheus.HistogramVec
	DialogueEvents  *prometheus.CounterVec

	reg prometheus.Registerer
}

// New registers the collectors on reg. Each registry may only be used once.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AdapterCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "labbot_adapter_calls_total",
				Help: "Total number of spreadsheet backend calls",
			},
			[]string{"op", "result"},
		),
		AdapterDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "labbot_adapter_call_duration_seconds",
				Help:    "Duration of spreadsheet backend calls in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"op"},
		),
		DialogueEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "labbot_dialogue_events_total",
				Help: "Total number of dialogue events",
			},
			[]string{"event"},
		),
		reg: reg,
	}
}

// ObserveEvent counts a dialogue event. It matches dialogue.Options.OnEvent.
func (m *Metrics) ObserveEvent(event string) {
	m.DialogueEvents.WithLabelValues(event).Inc()
}

// TrackActive registers a gauge sampling active on every scrape.
func (m *Metrics) TrackActive(active func() int) error {
	return m.reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "labbot_dialogues_active",
			Help: "Number of dialogues waiting for a link",
		},
		func() float64 { return float64(active()) },
	))
}
