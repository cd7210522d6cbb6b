package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Plan generation outcomes used as metric labels.
const (
	OutcomeComplete     = "complete"
	OutcomeInsufficient = "insufficient"
	OutcomeInvalid      = "invalid"
	OutcomeTimeout      = "timeout"
)

// MetricsService owns the Prometheus registry for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	plans           *prometheus.CounterVec
	allocation      prometheus.Observer
	unallocated     prometheus.Counter
	batchSize       prometheus.Observer

	cacheHitCount  uint64
	cacheMissCount uint64
	requestCount   uint64
	planCount      uint64
}

// MetricsSnapshot is a cheap summary for the status endpoint.
type MetricsSnapshot struct {
	RequestsTotal  uint64  `json:"requests_total"`
	PlansGenerated uint64  `json:"plans_generated"`
	CacheHits      uint64  `json:"cache_hits"`
	CacheMisses    uint64  `json:"cache_misses"`
	CacheHitRatio  float64 `json:"cache_hit_ratio"`
	Goroutines     int     `json:"goroutines"`
}

// NewMetricsService registers the collectors.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_cache_latency_seconds",
		Help:    "Latency of plan cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_cache_write_seconds",
		Help:    "Latency of plan cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plan_cache_hit_ratio",
		Help: "Ratio of plan cache hits to lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_cache_hits_total",
		Help: "Total plan cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_cache_misses_total",
		Help: "Total plan cache misses",
	})

	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "study_plans_total",
		Help: "Study plan generations by outcome",
	}, []string{"outcome"})

	allocation := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "study_plan_allocation_seconds",
		Help:    "Time spent inside the allocation engine",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	unallocated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "study_plan_unallocated_hours_total",
		Help: "Study hours that could not be placed in the window",
	})

	batchSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "study_plan_batch_size",
		Help:    "Number of plans requested per batch call",
		Buckets: prometheus.LinearBuckets(1, 2, 8),
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio,
		cacheHits, cacheMisses, plans, allocation, unallocated, batchSize, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		plans:           plans,
		allocation:      allocation,
		unallocated:     unallocated,
		batchSize:       batchSize,
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

// ObserveHTTPRequest records request duration and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObservePlan records one generation attempt. unallocated is the number of
// study hours left over, zero for complete plans.
func (m *MetricsService) ObservePlan(outcome string, duration time.Duration, unallocated float64) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(outcome).Inc()
	if outcome == OutcomeInvalid {
		return
	}
	m.allocation.Observe(duration.Seconds())
	if unallocated > 0 {
		m.unallocated.Add(unallocated)
	}
	atomic.AddUint64(&m.planCount, 1)
}

// ObserveBatch records the size of a batch call.
func (m *MetricsService) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Goroutines: runtime.NumGoroutine()}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}

	return MetricsSnapshot{
		RequestsTotal:  atomic.LoadUint64(&m.requestCount),
		PlansGenerated: atomic.LoadUint64(&m.planCount),
		CacheHits:      hits,
		CacheMisses:    misses,
		CacheHitRatio:  ratio,
		Goroutines:     runtime.NumGoroutine(),
	}
}
