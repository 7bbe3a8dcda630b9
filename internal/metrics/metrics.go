// Package metrics exposes Prometheus counters for job and application lifecycle events.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method then does nothing.
type Metrics struct {
	registry *prometheus.Registry

	jobEvents         *prometheus.CounterVec
	applicationEvents *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	denied            *prometheus.CounterVec
	registrations     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		jobEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobboard",
			Name:      "job_events_total",
			Help:      "Job lifecycle events by action.",
		}, []string{"action"}),
		applicationEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobboard",
			Name:      "application_events_total",
			Help:      "Job application lifecycle events by action.",
		}, []string{"action"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobboard",
			Name:      "application_transitions_total",
			Help:      "Application status changes by target status.",
		}, []string{"status"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobboard",
			Name:      "authorization_denied_total",
			Help:      "Operations rejected by the management policy.",
		}, []string{"operation"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobboard",
			Name:      "registrations_total",
			Help:      "Successful user registrations by role.",
		}, []string{"role"}),
	}
	reg.MustRegister(
		m.jobEvents,
		m.applicationEvents,
		m.transitions,
		m.denied,
		m.registrations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) JobEvent(action string) {
	if m == nil {
		return
	}
	m.jobEvents.WithLabelValues(action).Inc()
}

func (m *Metrics) ApplicationEvent(action string) {
	if m == nil {
		return
	}
	m.applicationEvents.WithLabelValues(action).Inc()
}

func (m *Metrics) Transition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) Denied(operation string) {
	if m == nil {
		return
	}
	m.denied.WithLabelValues(operation).Inc()
}

func (m *Metrics) Registered(role string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(role).Inc()
}

// Gatherer exposes the underlying registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
