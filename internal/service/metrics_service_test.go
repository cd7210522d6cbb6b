package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceObservePlan(t *testing.T) {
	metrics := NewMetricsService()

	metrics.ObservePlan(OutcomeComplete, 10*time.Millisecond, 0)
	metrics.ObservePlan(OutcomeInsufficient, 20*time.Millisecond, 1.5)
	metrics.ObservePlan(OutcomeInvalid, 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.plans.WithLabelValues(OutcomeComplete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.plans.WithLabelValues(OutcomeInvalid)))
	assert.InDelta(t, 1.5, testutil.ToFloat64(metrics.unallocated), 1e-9)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.PlansGenerated)
	assert.Positive(t, snapshot.Goroutines)
}

func TestMetricsServiceHTTPAndExposition(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodPost, "/api/study-plan", http.StatusOK, 5*time.Millisecond)
	metrics.ObserveBatch(3)

	assert.Equal(t, uint64(1), metrics.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "study_plan_batch_size")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService

	assert.NotPanics(t, func() {
		metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		metrics.RecordCacheOperation(true, time.Millisecond)
		metrics.ObserveCacheWrite(time.Millisecond)
		metrics.ObservePlan(OutcomeComplete, time.Millisecond, 0)
		metrics.ObserveBatch(1)
	})
	assert.Nil(t, metrics.Registry())
	assert.Zero(t, metrics.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
