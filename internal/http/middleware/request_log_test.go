package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

func TestRequestLoggerLevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.FromZap(zap.New(core))))
	r.GET("/api/bap/:id", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/bap/7", nil)
	req.Header.Set(headerActor, "ops")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(entries))
	}
	conflict := entries[0]
	if conflict.Level != zapcore.WarnLevel {
		t.Fatalf("4xx must log at warn, got %v", conflict.Level)
	}
	fields := conflict.ContextMap()
	if fields["route"] != "/api/bap/:id" || fields["job_id"] != "7" || fields["actor"] != "ops" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["request_id"] == nil {
		t.Fatalf("request id missing: %v", fields)
	}
	if entries[1].Level != zapcore.InfoLevel {
		t.Fatalf("2xx must log at info, got %v", entries[1].Level)
	}
}
