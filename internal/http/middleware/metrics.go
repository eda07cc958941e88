package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchprocess-backend/internal/observability"
)

// unmeteredRoutes are polled by orchestrators and would drown the API series.
var unmeteredRoutes = map[string]bool{
	"/healthcheck": true,
}

// Metrics records per-route request counts, latency and in-flight requests.
// Unmatched paths are folded into a single "unmatched" route.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if unmeteredRoutes[c.FullPath()] {
			c.Next()
			return
		}
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, routeOf(c), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// routeOf is the registered route template, e.g. "/api/bap/:id/steps".
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
