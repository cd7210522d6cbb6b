package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	status int
}

type fakeObserver struct {
	seen []recordedRequest
}

func (f *fakeObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	f.seen = append(f.seen, recordedRequest{method: method, path: path, status: status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &fakeObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/plans/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, target := range []string{"/plans/1", "/missing"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	}

	require.Len(t, observer.seen, 2)
	assert.Equal(t, recordedRequest{http.MethodGet, "/plans/:id", http.StatusNoContent}, observer.seen[0])
	assert.Equal(t, recordedRequest{http.MethodGet, "unmatched", http.StatusNotFound}, observer.seen[1])
}

func TestSetCacheHitHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithRequestTiming())
	router.GET("/hit", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.Status(http.StatusOK)
	})
	router.GET("/miss", func(c *gin.Context) {
		SetCacheHit(c, false)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hit", nil))
	assert.Equal(t, "HIT", rec.Header().Get(HeaderPlanCache))
	assert.NotEmpty(t, rec.Header().Get(HeaderProcessingTime))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/miss", nil))
	assert.Equal(t, "MISS", rec.Header().Get(HeaderPlanCache))
}

func TestSetCacheHitWithoutTiming(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SetCacheHit(c, false)
	c.Status(http.StatusOK)

	assert.Equal(t, "MISS", rec.Header().Get(HeaderPlanCache))
	assert.Empty(t, rec.Header().Get(HeaderProcessingTime))
}
