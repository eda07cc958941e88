package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/batchprocess-backend/internal/data/repos"
	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/http/response"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"github.com/yungbote/batchprocess-backend/internal/services"
)

type JobHandlerDeps struct {
	Log      *logger.Logger
	Jobs     services.JobService
	Notifier services.BatchNotifier
}

type JobHandler struct {
	log      *logger.Logger
	jobs     services.JobService
	notifier services.BatchNotifier
}

func NewJobHandlerWithDeps(deps JobHandlerDeps) *JobHandler {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &JobHandler{
		log:      log.With("handler", "JobHandler"),
		jobs:     deps.Jobs,
		notifier: deps.Notifier,
	}
}

type startJobRequest struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type countRequest struct {
	SessionID string `json:"session_id"`
	Count     *int   `json:"count"`
}

type failureRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// GET /api/bap
func (h *JobHandler) ListJobs(c *gin.Context) {
	opts := repos.JobListOptions{
		Code:   strings.TrimSpace(c.Query("code")),
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	}
	if raw := strings.TrimSpace(c.Query("state")); raw != "" {
		st, ok := jobs.ParseState(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_state", errInvalid("state", raw))
			return
		}
		opts.State = &st
	}
	rows, err := h.jobs.List(c.Request.Context(), opts)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": rows})
}

// GET /api/bap/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	row, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": row})
}

// GET /api/bap/:id/steps
func (h *JobHandler) ListJobSteps(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	rows, err := h.jobs.ListSteps(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"steps": rows})
}

// DELETE /api/bap/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	if err := h.jobs.Delete(c.Request.Context(), id); err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/bap
func (h *JobHandler) StartJob(c *gin.Context) {
	var req startJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	jc, err := h.notifier.Start(c.Request.Context(), req.Code, req.Message)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"job": jc})
}

// POST /api/bap/:id/in-progress
func (h *JobHandler) InProgress(c *gin.Context) {
	h.transition(c, h.notifier.InProgress)
}

// POST /api/bap/:id/cancel
func (h *JobHandler) Cancel(c *gin.Context) {
	h.transition(c, h.notifier.Cancel)
}

// POST /api/bap/:id/success
func (h *JobHandler) Success(c *gin.Context) {
	h.transition(c, h.notifier.Success)
}

// POST /api/bap/:id/end
func (h *JobHandler) End(c *gin.Context) {
	h.transition(c, h.notifier.End)
}

// POST /api/bap/:id/failure
func (h *JobHandler) Failure(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	var req failureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	jc, ok := jobContext(c, id, req.SessionID)
	if !ok {
		return
	}
	out, err := h.notifier.Failure(c.Request.Context(), jc, req.Message)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": out})
}

// POST /api/bap/:id/total-count
func (h *JobHandler) TotalCount(c *gin.Context) {
	h.count(c, h.notifier.TotalCount)
}

// POST /api/bap/:id/progress
func (h *JobHandler) Progress(c *gin.Context) {
	h.count(c, h.notifier.Progress)
}

func (h *JobHandler) transition(c *gin.Context, verb func(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error)) {
	id, ok := parseIDParam(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	jc, ok := jobContext(c, id, req.SessionID)
	if !ok {
		return
	}
	out, err := verb(c.Request.Context(), jc)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": out})
}

func (h *JobHandler) count(c *gin.Context, verb func(ctx context.Context, jc domainagg.JobContext, n int) (domainagg.StepRef, error)) {
	id, ok := parseIDParam(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Count == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissing("count"))
		return
	}
	jc, ok := jobContext(c, id, req.SessionID)
	if !ok {
		return
	}
	step, err := verb(c.Request.Context(), jc, *req.Count)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"step": step})
}

func jobContext(c *gin.Context, jobID uuid.UUID, rawSession string) (domainagg.JobContext, bool) {
	sessionID, err := uuid.Parse(strings.TrimSpace(rawSession))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return domainagg.JobContext{}, false
	}
	return domainagg.JobContext{JobID: jobID, SessionID: sessionID}, true
}

func parseIDParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, err)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func errInvalid(field, value string) error {
	return fmt.Errorf("invalid %s %q", field, value)
}

func errMissing(field string) error {
	return fmt.Errorf("missing %s", field)
}
