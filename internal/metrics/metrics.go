// Package metrics provides Prometheus metrics for the outreach agent.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	PlansTotal          *prometheus.CounterVec
	ControlActionsTotal *prometheus.CounterVec
	ErrorsTotal         *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_requests_total",
				Help: "Total API requests by route and status.",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "outreach_request_duration_seconds",
				Help:    "Request processing duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		PlansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_plans_synthesized_total",
				Help: "Plans synthesized by detected project type.",
			},
			[]string{"project_type"},
		),
		ControlActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_control_actions_total",
				Help: "Session control actions by action and result.",
			},
			[]string{"action", "result"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_errors_total",
				Help: "Errors by module and type.",
			},
			[]string{"module", "type"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.PlansTotal)
	reg.MustRegister(m.ControlActionsTotal)
	reg.MustRegister(m.ErrorsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(route, status string) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}

// RecordPlan increments the plan-synthesis counter.
func (m *Metrics) RecordPlan(projectType string) {
	m.PlansTotal.WithLabelValues(projectType).Inc()
}

// RecordControlAction increments the control-action counter.
func (m *Metrics) RecordControlAction(action, result string) {
	m.ControlActionsTotal.WithLabelValues(action, result).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(module, errType string) {
	m.ErrorsTotal.WithLabelValues(module, errType).Inc()
}

// ObserveDuration records request duration.
func (m *Metrics) ObserveDuration(route string, seconds float64) {
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}
