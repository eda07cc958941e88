package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/ctxutil"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

func TestAttachTraceContextPropagatesIDsAndActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()

	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.NewNop()), Metrics(m))

	var actor string
	var td *ctxutil.TraceData
	r.GET("/api/bap", func(c *gin.Context) {
		actor = ctxutil.ActorFrom(c.Request.Context(), "system")
		td = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/bap", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerActor, "ops")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if actor != "ops" {
		t.Fatalf("actor not propagated: %q", actor)
	}
	if td == nil || td.RequestID != "req-1" || td.TraceID == "" {
		t.Fatalf("unexpected trace data: %+v", td)
	}
	if rec.Header().Get(headerRequestID) != "req-1" {
		t.Fatalf("request id header missing")
	}
}
