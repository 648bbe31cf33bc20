package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
)

func TestMetricsCollector_NilIsNoop(t *testing.T) {
	var m *MetricsCollector
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordAuthAttempt("password", true)
		m.RecordStatusTransition("pending", "confirmed")
		m.RecordChatbotReply("user", "canned")
		m.RecordDBQuery("select", "users", time.Millisecond)
		m.RecordRateLimited("/api/v1/me")
	})
}

func TestMetricsCollector_Counters(t *testing.T) {
	m := NewMetricsCollector("portal-test")

	m.RecordAuthAttempt("doctor", false)
	m.RecordAuthAttempt("doctor", false)
	m.RecordAuthAttempt("password", true)
	m.RecordChatbotReply("patient", "canned")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.authAttemptsTotal.WithLabelValues("doctor", "failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.authAttemptsTotal.WithLabelValues("password", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.chatbotRepliesTotal.WithLabelValues("patient", "canned")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `auth_attempts_total{method="doctor",service="portal-test",status="failure"} 2`)
}

type staticChecker struct{ status HealthStatus }

func (s staticChecker) Check(ctx context.Context) HealthCheck {
	return HealthCheck{Status: s.status}
}

func TestHealthManager_WorstStatusWins(t *testing.T) {
	hm := NewHealthManager("portal", "test")
	hm.RegisterChecker("database", staticChecker{HealthStatusHealthy})
	hm.RegisterChecker("sessions", NewPingHealthChecker("session store", func(ctx context.Context) error {
		return errors.New("connection refused")
	}))

	report := hm.CheckHealth(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "database", report.Checks[0].Name)
	assert.Equal(t, "sessions", report.Checks[1].Name)
	assert.Contains(t, report.Checks[1].Message, "connection refused")
	assert.Equal(t, 1, report.Summary["unhealthy"])

	rec := httptest.NewRecorder()
	hm.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthManager_DegradedStillServes(t *testing.T) {
	hm := NewHealthManager("portal", "test")
	hm.RegisterChecker("database", staticChecker{HealthStatusDegraded})

	rec := httptest.NewRecorder()
	hm.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var report HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, HealthStatusDegraded, report.Status)
}

func TestMonitoringMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOutput("info", &buf)
	metrics := NewMetricsCollector("portal-test")
	tracing, err := NewTracingManager(context.Background(), &TracingConfig{ServiceName: "portal-test"})
	require.NoError(t, err)

	var seenRequestID string
	router := mux.NewRouter()
	router.Use(NewMonitoringMiddleware(metrics, tracing, log).HTTPMiddleware)
	router.HandleFunc("/api/v1/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		seenRequestID = logger.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/123", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42", seenRequestID)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.httpRequestsTotal.WithLabelValues("GET", "/api/v1/appointments/{id}", "404")))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "req-42", line["request_id"])
}

func TestTracingManager_DisabledShutdown(t *testing.T) {
	tm, err := NewTracingManager(context.Background(), &TracingConfig{ServiceName: "portal-test"})
	require.NoError(t, err)

	_, span := tm.StartSpan(context.Background(), "noop")
	span.End()

	assert.NoError(t, tm.Shutdown(context.Background()))
	assert.Empty(t, tm.TraceIDFromContext(context.Background()))
}
