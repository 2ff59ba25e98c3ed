package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/freightrate/pkg/telemetry"
)

// MetricsMiddleware counts requests per route template. A nil m records nothing.
func MetricsMiddleware(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPIRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
