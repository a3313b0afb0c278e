package service

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/coursehub-client/internal/models"
)

// Enrollment attempt outcomes recorded by MetricsService.
const (
	OutcomeCreated         = "created"
	OutcomeConflict        = "conflict"
	OutcomeNotFound        = "not_found"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeFailed          = "failed"
)

// MetricsService encapsulates Prometheus instrumentation for backend calls and
// workflow outcomes, and keeps counters for quick snapshots.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	enrollmentOutcomes *prometheus.CounterVec
	sessionEvents      *prometheus.CounterVec

	requestCount         uint64
	requestFailures      uint64
	requestDurationTotal uint64
	enrollmentsCreated   uint64
	enrollmentConflicts  uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	enrollmentOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_attempts_total",
		Help: "Enrollment attempts by outcome",
	}, []string{"outcome"})

	sessionEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_events_total",
		Help: "Session lifecycle events",
	}, []string{"event"})

	registry.MustRegister(requestDuration, requestTotal, enrollmentOutcomes, sessionEvents)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		enrollmentOutcomes: enrollmentOutcomes,
		sessionEvents:      sessionEvents,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records one request. Status 0 means the request never got a
// response and is counted as a failure.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
	if status == 0 || status >= http.StatusBadRequest {
		atomic.AddUint64(&m.requestFailures, 1)
	}
}

// RecordEnrollment counts one enrollment attempt by outcome.
func (m *MetricsService) RecordEnrollment(outcome string) {
	if m == nil {
		return
	}
	m.enrollmentOutcomes.WithLabelValues(outcome).Inc()
	switch outcome {
	case OutcomeCreated:
		atomic.AddUint64(&m.enrollmentsCreated, 1)
	case OutcomeConflict:
		atomic.AddUint64(&m.enrollmentConflicts, 1)
	}
}

// RecordSessionEvent counts login, logout, and migration events.
func (m *MetricsService) RecordSessionEvent(event string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(event).Inc()
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() models.ClientMetrics {
	if m == nil {
		return models.ClientMetrics{GeneratedAt: time.Now().UTC()}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	duration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgMs float64
	if requests > 0 {
		avgMs = float64(duration) / float64(requests) / float64(time.Millisecond)
	}

	return models.ClientMetrics{
		RequestsTotal:            requests,
		RequestFailures:          atomic.LoadUint64(&m.requestFailures),
		AverageRequestDurationMs: avgMs,
		EnrollmentsCreated:       atomic.LoadUint64(&m.enrollmentsCreated),
		EnrollmentConflicts:      atomic.LoadUint64(&m.enrollmentConflicts),
		GeneratedAt:              time.Now().UTC(),
	}
}
