package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "enrollments", 200, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "enrollments", 500, 30*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "courses", 0, 20*time.Millisecond)
	m.RecordEnrollment(OutcomeCreated)
	m.RecordEnrollment(OutcomeConflict)
	m.RecordEnrollment(OutcomeConflict)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.RequestsTotal)
	assert.Equal(t, uint64(2), snap.RequestFailures)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(1), snap.EnrollmentsCreated)
	assert.Equal(t, uint64(2), snap.EnrollmentConflicts)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.enrollmentOutcomes.WithLabelValues(OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "courses", "0")))
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordSessionEvent("login")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `session_events_total{event="login"} 1`))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "x", 200, time.Millisecond)
	m.RecordEnrollment(OutcomeCreated)
	m.RecordSessionEvent("logout")
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
