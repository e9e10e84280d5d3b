package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Route template rather than raw path, so /api/sessions/:id stays
		// one series instead of one per session.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())

		metrics.RecordHTTPRequest(method, path, status, duration)
	}
}

// Timer measures operation duration
type Timer struct {
	start    time.Time
	observer func(status string, duration time.Duration)
}

// NewProvisionTimer times one provisioning attempt for a region.
func NewProvisionTimer(metrics *Metrics, region string) *Timer {
	return &Timer{
		start: time.Now(),
		observer: func(status string, duration time.Duration) {
			metrics.RecordProvision(region, status, duration)
		},
	}
}

// Stop stops the timer and records the duration. A nil timer is inert, so
// callers running without metrics skip the guard.
func (t *Timer) Stop(status string) {
	if t == nil {
		return
	}
	t.observer(status, time.Since(t.start))
}
