package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchprocess-backend/internal/platform/ctxutil"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

// RequestLogger writes one line per request after the handler chain ran.
// 5xx logs at error, 4xx at warn.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := requestFields(c, status, time.Since(start))
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func requestFields(c *gin.Context, status int, took time.Duration) []interface{} {
	ctx := c.Request.Context()
	fields := []interface{}{
		"method", c.Request.Method,
		"route", routeOf(c),
		"path", c.Request.URL.Path,
		"status", status,
		"duration_ms", took.Milliseconds(),
	}
	optional := func(key, val string) {
		if val != "" {
			fields = append(fields, key, val)
		}
	}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		optional("trace_id", td.TraceID)
		optional("request_id", td.RequestID)
	}
	optional("job_id", c.Param("id"))
	optional("actor", ctxutil.ActorFrom(ctx, ""))
	if len(c.Errors) > 0 {
		optional("errors", c.Errors.String())
	}
	return fields
}
