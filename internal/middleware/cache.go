package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Response headers describing how a plan was produced.
const (
	HeaderPlanCache      = "X-Plan-Cache"
	HeaderProcessingTime = "X-Processing-Time-Ms"

	requestStartKey = "request_start"
)

// WithRequestTiming stamps the request start so handlers can report
// processing time before the body is written.
func WithRequestTiming() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the plan came from cache, along with the
// elapsed processing time. It must run before the response body is written.
func SetCacheHit(c *gin.Context, hit bool) {
	if c == nil {
		return
	}
	value := "MISS"
	if hit {
		value = "HIT"
	}
	c.Header(HeaderPlanCache, value)
	if elapsed, ok := Elapsed(c); ok {
		c.Header(HeaderProcessingTime, strconv.FormatInt(elapsed.Milliseconds(), 10))
	}
}

// Elapsed returns the time since WithRequestTiming saw the request.
func Elapsed(c *gin.Context) (time.Duration, bool) {
	raw, exists := c.Get(requestStartKey)
	if !exists {
		return 0, false
	}
	start, ok := raw.(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
