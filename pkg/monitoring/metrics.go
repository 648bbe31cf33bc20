package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles Prometheus metrics collection.
// A nil *MetricsCollector records nothing.
type MetricsCollector struct {
	serviceName string
	registry    *prometheus.Registry

	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	dbQueryDuration        *prometheus.HistogramVec
	authAttemptsTotal      *prometheus.CounterVec
	appointmentTransitions *prometheus.CounterVec
	chatbotRepliesTotal    *prometheus.CounterVec
	rateLimitedTotal       *prometheus.CounterVec
}

// NewMetricsCollector creates a collector with its own registry
func NewMetricsCollector(serviceName string) *MetricsCollector {
	labels := prometheus.Labels{"service": serviceName}

	m := &MetricsCollector{
		serviceName: serviceName,
		registry:    prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "route", "status_code"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"method", "route"},
		),

		dbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "db_query_duration_seconds",
				Help:        "Duration of database queries in seconds",
				Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
				ConstLabels: labels,
			},
			[]string{"operation", "table"},
		),

		authAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "auth_attempts_total",
				Help:        "Total number of authentication attempts",
				ConstLabels: labels,
			},
			[]string{"method", "status"},
		),

		appointmentTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "appointment_status_transitions_total",
				Help:        "Total number of appointment status changes",
				ConstLabels: labels,
			},
			[]string{"from", "to"},
		),

		chatbotRepliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "chatbot_replies_total",
				Help:        "Total number of assistant replies",
				ConstLabels: labels,
			},
			[]string{"role", "source"},
		),

		rateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "rate_limited_requests_total",
				Help:        "Total number of requests rejected by the rate limiter",
				ConstLabels: labels,
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.authAttemptsTotal,
		m.appointmentTransitions,
		m.chatbotRepliesTotal,
		m.rateLimitedTotal,
	)

	return m
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDBQuery records database query metrics
func (m *MetricsCollector) RecordDBQuery(operation, table string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordAuthAttempt records authentication attempt metrics
func (m *MetricsCollector) RecordAuthAttempt(method string, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.authAttemptsTotal.WithLabelValues(method, status).Inc()
}

// RecordStatusTransition records an appointment status change
func (m *MetricsCollector) RecordStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.appointmentTransitions.WithLabelValues(from, to).Inc()
}

// RecordChatbotReply records an assistant reply by role and source
func (m *MetricsCollector) RecordChatbotReply(role, source string) {
	if m == nil {
		return
	}
	m.chatbotRepliesTotal.WithLabelValues(role, source).Inc()
}

// RecordRateLimited records a request rejected by the rate limiter
func (m *MetricsCollector) RecordRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimitedTotal.WithLabelValues(route).Inc()
}

// Registry returns the registry the collector's metrics live in
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
