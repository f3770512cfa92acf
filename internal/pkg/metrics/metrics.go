// Package metrics exposes Prometheus instrumentation for the API.
//
// A *Metrics is built once at startup and injected; every recording method
// is safe on a nil receiver so tests can pass nil.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "replate"

// Metrics holds the registry and the collectors recorded by the app
type Metrics struct {
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	inFlight        prometheus.Gauge

	authEvents   *prometheus.CounterVec
	storeEvents  *prometheus.CounterVec
	emailsSent   *prometheus.CounterVec
	uploadsSwept prometheus.Counter
}

// New creates a registry with runtime collectors and the app's metrics
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Account lifecycle events by type and outcome.",
		}, []string{"event", "outcome"}),
		storeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stores",
			Name:      "transitions_total",
			Help:      "Store onboarding and review transitions.",
		}, []string{"transition"}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "sent_total",
			Help:      "Transactional emails by template and outcome.",
		}, []string{"template", "outcome"}),
		uploadsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "swept_total",
			Help:      "Orphaned upload files removed by the janitor.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.inFlight,
		m.authEvents,
		m.storeEvents,
		m.emailsSent,
		m.uploadsSwept,
	)
	return m
}

// Middleware records duration and count per matched route
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		err := c.Next()

		// route pattern, not raw path, to keep label cardinality bounded
		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		m.requestDuration.WithLabelValues(c.Method(), route, status).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(c.Method(), route, status).Inc()
		return err
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}

// AuthEvent counts an account lifecycle event, e.g. ("login", "failed")
func (m *Metrics) AuthEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(event, outcome).Inc()
}

// StoreTransition counts an onboarding or review transition
func (m *Metrics) StoreTransition(transition string) {
	if m == nil {
		return
	}
	m.storeEvents.WithLabelValues(transition).Inc()
}

// EmailSent counts a dispatch attempt for template
func (m *Metrics) EmailSent(template string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.emailsSent.WithLabelValues(template, outcome).Inc()
}

// UploadsSwept adds n removed files
func (m *Metrics) UploadsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.uploadsSwept.Add(float64(n))
}
