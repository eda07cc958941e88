package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
)

const (
	storeFailureMessage = "batch process store unavailable"
	retryAfterSeconds   = "1"
)

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(err error) int {
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeInvalidTransition, domainagg.CodeSequenceLookup, domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondAggregateError writes err with the status and code derived from it.
// Caller-facing messages are passed through unchanged; raw store errors are
// replaced and only reach the request log.
func RespondAggregateError(c *gin.Context, err error) {
	_ = c.Error(err)

	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	msg := domainagg.MessageOf(err)
	if code == domainagg.CodeStore {
		msg = storeFailureMessage
	}
	if code.Temporary() {
		c.Header("Retry-After", retryAfterSeconds)
	}
	writeError(c, StatusFor(err), APIError{Message: msg, Code: string(code)})
}
