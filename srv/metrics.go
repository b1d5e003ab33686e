package srv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes listener lifecycle counters. A nil *Metrics records nothing.
type Metrics struct {
	activeConnections *prometheus.GaugeVec
	transitions       *prometheus.CounterVec
	rejected          *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		activeConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "handoff",
			Name:      "listener_active_connections",
			Help:      "Connections currently open on an inherited listener",
		}, []string{"listener"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handoff",
			Name:      "listener_transitions_total",
			Help:      "Listener state transitions by target state",
		}, []string{"listener", "state"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handoff",
			Name:      "listener_rejected_connections_total",
			Help:      "Connections or requests closed because the listener was draining",
		}, []string{"listener"}),
	}
}

func (m *Metrics) setActive(name string, n int) {
	if m == nil {
		return
	}
	m.activeConnections.WithLabelValues(name).Set(float64(n))
}

func (m *Metrics) transition(name string, to State) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(name, to.String()).Inc()
}

func (m *Metrics) reject(name string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(name).Inc()
}
