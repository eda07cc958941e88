package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/batchprocess-backend/internal/data/repos"
	"github.com/yungbote/batchprocess-backend/internal/http/response"
	"github.com/yungbote/batchprocess-backend/internal/services"
)

type StepHandler struct {
	jobs services.JobService
}

func NewStepHandler(jobs services.JobService) *StepHandler {
	return &StepHandler{jobs: jobs}
}

// GET /api/bapn
func (h *StepHandler) ListSteps(c *gin.Context) {
	opts := repos.StepListOptions{
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	}
	if raw := strings.TrimSpace(c.Query("job_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
			return
		}
		opts.JobID = id
	}
	rows, err := h.jobs.ListAllSteps(c.Request.Context(), opts)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"steps": rows})
}

// GET /api/bapn/:id
func (h *StepHandler) GetStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_step_id")
	if !ok {
		return
	}
	row, err := h.jobs.GetStep(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"step": row})
}
