package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects gateway-level Prometheus metrics.
//
// Tracked series:
//   - Live bridged sessions for capacity planning
//   - Event flow in both relay directions
//   - Whitelist rejections of client events
//   - Tool executions by tool and status
//   - Upstream connect failures
//   - Session lifetimes
type Metrics struct {
	// ActiveSessions is a gauge of currently bridged sessions.
	ActiveSessions prometheus.Gauge

	// EventsRelayed counts relayed events.
	// Labels: direction (client_to_upstream|upstream_to_client)
	EventsRelayed *prometheus.CounterVec

	// EventsRejected counts client events blocked by the whitelist.
	// Labels: event_type
	EventsRejected *prometheus.CounterVec

	// ToolExecutions counts tool invocations.
	// Labels: tool, status (success|error)
	ToolExecutions *prometheus.CounterVec

	// UpstreamConnectFailures counts failed upstream handshakes.
	UpstreamConnectFailures prometheus.Counter

	// SessionDuration measures session lifetime in seconds.
	SessionDuration prometheus.Histogram
}

// NewMetrics creates and registers all gateway metrics with the given
// registerer. Pass prometheus.DefaultRegisterer in production; tests use
// a fresh registry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tutor_gateway_active_sessions",
			Help: "Number of currently bridged sessions.",
		}),
		EventsRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_gateway_events_relayed_total",
			Help: "Events relayed between client and upstream.",
		}, []string{"direction"}),
		EventsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_gateway_events_rejected_total",
			Help: "Client events rejected by the event whitelist.",
		}, []string{"event_type"}),
		ToolExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_gateway_tool_executions_total",
			Help: "Tool invocations triggered by upstream function calls.",
		}, []string{"tool", "status"}),
		UpstreamConnectFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tutor_gateway_upstream_connect_failures_total",
			Help: "Failed handshakes with the upstream realtime service.",
		}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tutor_gateway_session_duration_seconds",
			Help:    "Lifetime of bridged sessions in seconds.",
			Buckets: []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
		}),
	}
}
