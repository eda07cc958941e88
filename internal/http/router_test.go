package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/batchprocess-backend/internal/data/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/data/repos"
	repotest "github.com/yungbote/batchprocess-backend/internal/data/repos/testutil"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	httpH "github.com/yungbote/batchprocess-backend/internal/http/handlers"
	"github.com/yungbote/batchprocess-backend/internal/jobs/runner"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"github.com/yungbote/batchprocess-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repotest.DB(t)
	log := logger.NewNop()
	r := repos.New(db, log)
	agg := aggregates.NewBatchJobAggregate(aggregates.BatchJobAggregateDeps{
		Base:  aggregates.BaseDeps{DB: db, Log: log},
		Jobs:  r.Jobs,
		Steps: r.Steps,
	})
	notifier := services.NewBatchNotifier(log, agg, services.NewMessageCatalog(services.LocaleGreek), nil, nil, "system")
	jobSvc := services.NewJobService(db, log, r.Jobs, r.Steps)
	run := runner.New(log, notifier, nil, runner.Config{Workers: 2, ChunkSize: 2})

	return NewRouter(RouterConfig{
		Log:             log,
		JobHandler:      httpH.NewJobHandlerWithDeps(httpH.JobHandlerDeps{Log: log, Jobs: jobSvc, Notifier: notifier}),
		StepHandler:     httpH.NewStepHandler(jobSvc),
		BatchRunHandler: httpH.NewBatchRunHandler(log, run, runner.Discard),
		HealthHandler:   httpH.NewHealthHandler(db),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "http-test")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type jobEnvelope struct {
	Job struct {
		JobID     uuid.UUID  `json:"job_id"`
		SessionID uuid.UUID  `json:"session_id"`
		State     jobs.State `json:"state"`
	} `json:"job"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestRouterLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/bap", map[string]any{"code": "CEM_CREATE_AFN", "message": "init"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var started jobEnvelope
	decode(t, rec, &started)
	id := started.Job.JobID.String()
	session := map[string]any{"session_id": started.Job.SessionID.String()}

	if rec := do(t, r, http.MethodPost, "/api/bap/"+id+"/in-progress", session); rec.Code != http.StatusOK {
		t.Fatalf("in-progress: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodPost, "/api/bap/"+id+"/in-progress", session)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second in-progress: status=%d", rec.Code)
	}
	var apiErr errorEnvelope
	decode(t, rec, &apiErr)
	if apiErr.Error.Code != "invalid_transition" || apiErr.Error.Message != "no process in expected state found" {
		t.Fatalf("unexpected error envelope: %+v", apiErr)
	}

	if rec := do(t, r, http.MethodPost, "/api/bap/"+id+"/total-count", map[string]any{"session_id": started.Job.SessionID.String(), "count": 100}); rec.Code != http.StatusCreated {
		t.Fatalf("total-count: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := do(t, r, http.MethodPost, "/api/bap/"+id+"/progress", map[string]any{"session_id": started.Job.SessionID.String(), "count": -1}); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative progress: status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/bap/"+id+"/failure", map[string]any{"session_id": started.Job.SessionID.String(), "message": "disk full"}); rec.Code != http.StatusOK {
		t.Fatalf("failure: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/api/bap/"+id+"/steps", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("steps: status=%d", rec.Code)
	}
	var steps struct {
		Steps []jobs.Step `json:"steps"`
	}
	decode(t, rec, &steps)
	if len(steps.Steps) != 3 || steps.Steps[2].Data != "Η δημιουργία διαδικασίας απέτυχε. - disk full" {
		t.Fatalf("unexpected steps: %+v", steps.Steps)
	}
	if steps.Steps[0].CreatedBy != "http-test" {
		t.Fatalf("actor not recorded: %q", steps.Steps[0].CreatedBy)
	}

	rec = do(t, r, http.MethodGet, "/api/bap/"+id, nil)
	var got struct {
		Job jobs.Job `json:"job"`
	}
	decode(t, rec, &got)
	if got.Job.State != jobs.StateFailed || got.Job.FailedAt == nil {
		t.Fatalf("unexpected job: %+v", got.Job)
	}

	if rec := do(t, r, http.MethodGet, "/api/bapn/"+steps.Steps[1].ID.String(), nil); rec.Code != http.StatusOK {
		t.Fatalf("get step: status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/bap?state=failed", nil); rec.Code != http.StatusOK {
		t.Fatalf("list: status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodDelete, "/api/bap/"+id, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/bap/"+id, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status=%d", rec.Code)
	}
}

func TestRouterRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		method, path string
		body         any
		want         int
	}{
		{http.MethodGet, "/api/bap/not-a-uuid", nil, http.StatusBadRequest},
		{http.MethodGet, "/api/bap?state=7", nil, http.StatusBadRequest},
		{http.MethodPost, "/api/bap", map[string]any{"code": ""}, http.StatusBadRequest},
		{http.MethodPost, "/api/bap/" + uuid.NewString() + "/cancel", map[string]any{"session_id": "x"}, http.StatusBadRequest},
		{http.MethodPost, "/api/bap/" + uuid.NewString() + "/cancel", map[string]any{"session_id": uuid.NewString()}, http.StatusConflict},
		{http.MethodPost, "/api/bap/" + uuid.NewString() + "/progress", map[string]any{"session_id": uuid.NewString()}, http.StatusBadRequest},
		{http.MethodGet, "/api/bapn/" + uuid.NewString(), nil, http.StatusNotFound},
		{http.MethodPost, "/api/test-batch-process", map[string]any{"count_records": 0}, http.StatusBadRequest},
		{http.MethodPost, "/api/test-batch-process", map[string]any{"countRecords": 0}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := do(t, r, tc.method, tc.path, tc.body); rec.Code != tc.want {
			t.Fatalf("%s %s: want=%d got=%d body=%s", tc.method, tc.path, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRouterBatchRunAndHealth(t *testing.T) {
	r := newTestRouter(t)

	if rec := do(t, r, http.MethodGet, "/healthcheck", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: status=%d", rec.Code)
	}

	rec := do(t, r, http.MethodPost, "/api/test-batch-process", map[string]any{"count_records": 5})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("batch run: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out jobEnvelope
	decode(t, rec, &out)
	if out.Job.State != jobs.StateCompleted {
		t.Fatalf("batch run state: %s", out.Job.State)
	}

	rec = do(t, r, http.MethodPost, "/api/test-batch-process", map[string]any{"countRecords": 3})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("batch run (camelCase): status=%d body=%s", rec.Code, rec.Body.String())
	}
}
