package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/service"
)

type fakeReadiness struct {
	err error
}

func (f fakeReadiness) Ready(context.Context) error {
	return f.err
}

func serveGet(h gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	h(c)
	c.Writer.WriteHeaderNow()
	return rec
}

func TestMetricsHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.ObservePlan(service.OutcomeComplete, time.Millisecond, 0)
	handler := NewMetricsHandler(metrics, nil)

	rec := serveGet(handler.Status, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message string                  `json:"message"`
		Metrics service.MetricsSnapshot `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, uint64(1), body.Metrics.PlansGenerated)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := serveGet(NewMetricsHandler(nil, nil).Ready, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveGet(NewMetricsHandler(nil, fakeReadiness{err: errors.New("redis down")}).Ready, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis down")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.ObservePlan(service.OutcomeInsufficient, time.Millisecond, 2.5)

	rec := serveGet(NewMetricsHandler(metrics, nil).Prometheus, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `study_plans_total{outcome="insufficient"} 1`))
	assert.True(t, strings.Contains(rec.Body.String(), "study_plan_unallocated_hours_total 2.5"))

	rec = serveGet(NewMetricsHandler(nil, nil).Prometheus, "/metrics")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
