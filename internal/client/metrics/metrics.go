// Package metrics instruments the client with prometheus collectors kept on
// a private registry. The CLI dumps them in textfile format on exit so a
// node-exporter textfile collector can pick them up.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	// Gateway calls by operation and result (ok, rejected, unauthorized, unavailable, error).
	GatewayRequests *prometheus.CounterVec
	// Gateway latency by operation.
	GatewayDuration *prometheus.HistogramVec
	// Session state transitions by target state.
	SessionTransitions *prometheus.CounterVec
	// Stale startup resolutions that were discarded.
	StaleResolutions prometheus.Counter
	// Route guard decisions by action.
	GuardDecisions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophsocial_gateway_requests_total",
			Help: "Total number of API gateway requests.",
		}, []string{"operation", "result"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gophsocial_gateway_request_duration_seconds",
			Help:    "Duration of API gateway requests in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		SessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophsocial_session_transitions_total",
			Help: "Session state transitions by resulting state.",
		}, []string{"state"}),
		StaleResolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gophsocial_session_stale_resolutions_total",
			Help: "Session resolutions discarded because an explicit login or logout landed first.",
		}),
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophsocial_guard_decisions_total",
			Help: "Route guard decisions by action.",
		}, []string{"action"}),
	}
	m.registry.MustRegister(
		m.GatewayRequests,
		m.GatewayDuration,
		m.SessionTransitions,
		m.StaleResolutions,
		m.GuardDecisions,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveGateway records one gateway call. Nil receivers are ignored so
// components can run without metrics.
func (m *Metrics) ObserveGateway(operation string, start time.Time, result string) {
	if m == nil {
		return
	}
	m.GatewayDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	m.GatewayRequests.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.SessionTransitions.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveStaleResolution() {
	if m == nil {
		return
	}
	m.StaleResolutions.Inc()
}

func (m *Metrics) ObserveGuard(action string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(action).Inc()
}

// WriteFile dumps all collectors to path in the prometheus text format.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	if path == "" {
		return errors.New("metrics file path is empty")
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
