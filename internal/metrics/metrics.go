// Package metrics exposes Prometheus counters for the calendar service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors in a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	renders             prometheus.Counter
	collaboratorErrors  *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	remindersSent       prometheus.Counter
	activeSessions      prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agenda_renders_total",
			Help: "Total week views rendered.",
		}),
		collaboratorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agenda_collaborator_errors_total",
			Help: "Persistence collaborator failures by operation.",
		}, []string{"op"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agenda_validation_failures_total",
			Help: "Inputs rejected locally by field.",
		}, []string{"field"}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agenda_reminders_sent_total",
			Help: "Event reminders pushed to clients.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "agenda_active_sessions",
			Help: "Calendar sessions held in memory.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.renders,
		m.collaboratorErrors,
		m.validationFailures,
		m.remindersSent,
		m.activeSessions,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Rendered() {
	if m == nil {
		return
	}
	m.renders.Inc()
}

func (m *Metrics) CollaboratorError(op string) {
	if m == nil {
		return
	}
	m.collaboratorErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) ValidationFailure(field string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(field).Inc()
}

func (m *Metrics) ReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
