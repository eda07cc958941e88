package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/http/response"
	"github.com/yungbote/batchprocess-backend/internal/jobs/runner"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

// BatchRunner is the part of runner.Runner the handler needs.
type BatchRunner interface {
	Run(ctx context.Context, total int, process runner.Processor) (domainagg.JobContext, error)
}

type BatchRunHandler struct {
	log     *logger.Logger
	runner  BatchRunner
	process runner.Processor
}

func NewBatchRunHandler(log *logger.Logger, r BatchRunner, process runner.Processor) *BatchRunHandler {
	return &BatchRunHandler{
		log:     log.With("handler", "BatchRunHandler"),
		runner:  r,
		process: process,
	}
}

// batchRunRequest accepts the camelCase field of the original endpoint and the
// snake_case spelling used by the rest of this API.
type batchRunRequest struct {
	CountRecords      int `json:"countRecords"`
	CountRecordsSnake int `json:"count_records"`
}

func (r batchRunRequest) count() int {
	if r.CountRecords != 0 {
		return r.CountRecords
	}
	return r.CountRecordsSnake
}

// POST /api/test-batch-process
func (h *BatchRunHandler) Run(c *gin.Context) {
	var req batchRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	jc, err := h.runner.Run(c.Request.Context(), req.count(), h.process)
	if err != nil {
		if jc.JobID != uuid.Nil {
			h.log.Warn("Batch run finished with failure", "job_id", jc.JobID, "error", err)
		}
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"job": jc})
}
