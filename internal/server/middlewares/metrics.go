package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetricsRecorder is satisfied by *metrics.Recorder.
type HTTPMetricsRecorder interface {
	RequestStarted()
	RequestFinished(method, route, status string, d time.Duration)
}

func MetricsMiddleware(rec HTTPMetricsRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rec.RequestStarted()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RequestFinished(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
