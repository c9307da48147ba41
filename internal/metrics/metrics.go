// Package metrics tracks RPC call counts, latencies and outcomes: a
// small struct wrapping prometheus primitives, registered once per
// client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks per-opcode RPC call counts, error counts and latency.
type Metrics struct {
	calls      *prometheus.CounterVec
	errors     *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	reconnects prometheus.Counter
}

// NewMetrics creates a Metrics instance registered against reg. Pass
// prometheus.NewRegistry() for an isolated registry (tests) or
// prometheus.DefaultRegisterer to publish on the default /metrics
// endpoint.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcdclient",
			Name:      "rpc_calls_total",
			Help:      "Total RPC calls issued, by opcode.",
		}, []string{"opcode"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcdclient",
			Name:      "rpc_errors_total",
			Help:      "Total RPC calls that returned a non-OK status or failed locally, by opcode and code.",
		}, []string{"opcode", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mcdclient",
			Name:      "rpc_latency_seconds",
			Help:      "RPC round-trip latency, by opcode.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us .. ~27s
		}, []string{"opcode"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcdclient",
			Name:      "transport_reconnects_total",
			Help:      "Total transport reconnect attempts.",
		}),
	}
	reg.MustRegister(m.calls, m.errors, m.latency, m.reconnects)
	return m
}

// RecordCall records one RPC call's latency and outcome. code is the
// empty string on success.
func (m *Metrics) RecordCall(opcode string, start time.Time, code string) {
	m.calls.WithLabelValues(opcode).Inc()
	m.latency.WithLabelValues(opcode).Observe(time.Since(start).Seconds())
	if code != "" {
		m.errors.WithLabelValues(opcode, code).Inc()
	}
}

// RecordReconnect records one transport reconnect attempt.
func (m *Metrics) RecordReconnect() {
	m.reconnects.Inc()
}
