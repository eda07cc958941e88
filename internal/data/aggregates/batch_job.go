package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	jobrepos "github.com/yungbote/batchprocess-backend/internal/data/repos/jobs"
	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
)

const (
	opStartJob   = "Jobs.BatchJob.Start"
	opTransition = "Jobs.BatchJob.Transition"
	opAppendStep = "Jobs.BatchJob.AppendStep"

	msgNoProcessInState = "no process in expected state found"
	msgNoProcess        = "no process found for job and session"
)

type BatchJobAggregateDeps struct {
	Base BaseDeps

	Jobs      jobrepos.JobRepo
	Steps     jobrepos.StepRepo
	Sequencer *Sequencer
}

type batchJobAggregate struct {
	deps BatchJobAggregateDeps
}

func NewBatchJobAggregate(deps BatchJobAggregateDeps) domainagg.BatchJobAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Sequencer == nil && deps.Steps != nil {
		deps.Sequencer = NewSequencer(deps.Steps)
	}
	return &batchJobAggregate{deps: deps}
}

func (a *batchJobAggregate) Contract() domainagg.Contract {
	return domainagg.BatchJobAggregateContract
}

func (a *batchJobAggregate) StartJob(ctx context.Context, in domainagg.StartJobInput) (domainagg.StartJobResult, error) {
	var out domainagg.StartJobResult

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, opStartJob, "missing job code", nil)
	}
	if utf8.RuneCountInString(code) > jobs.MaxCodeLength {
		return out, domainagg.NewError(domainagg.CodeValidation, opStartJob, fmt.Sprintf("job code longer than %d characters", jobs.MaxCodeLength), nil)
	}
	if a.deps.Jobs == nil || a.deps.Steps == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, opStartJob, "batch job repos not configured", nil)
	}
	at := a.at(in.StartedAt)

	err := executeWrite(ctx, a.deps.Base, opStartJob, func(dbc dbctx.Context) error {
		job := &jobs.Job{
			ID:        uuid.New(),
			SessionID: uuid.New(),
			Code:      code,
			State:     jobs.StateInitial,
			StartedAt: jobs.DateOf(at),
			CreatedBy: in.Actor,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if _, err := a.deps.Jobs.Create(dbc, []*jobs.Job{job}); err != nil {
			return err
		}
		// step #1 is written inline; the sequencer only serves successors
		step := &jobs.Step{
			JobID:      job.ID,
			Sequence:   1,
			OccurredAt: jobs.DateOf(at),
			Data:       jobs.TruncateData(in.Message),
			CreatedBy:  in.Actor,
			CreatedAt:  at,
			UpdatedAt:  at,
		}
		if _, err := a.deps.Steps.Create(dbc, []*jobs.Step{step}); err != nil {
			return err
		}
		out = domainagg.StartJobResult{
			Job:  domainagg.JobContext{JobID: job.ID, SessionID: job.SessionID, State: job.State},
			Step: stepRef(step),
		}
		return nil
	})
	return out, err
}

func (a *batchJobAggregate) Transition(ctx context.Context, in domainagg.TransitionJobInput) (domainagg.TransitionJobResult, error) {
	var out domainagg.TransitionJobResult

	if err := validateJobContext(opTransition, in.Job); err != nil {
		return out, err
	}
	if err := RequireTransitionAllowed(in.From, in.To); err != nil {
		return out, MapError(opTransition, err)
	}
	if a.deps.Jobs == nil || (in.StepData != nil && a.deps.Sequencer == nil) {
		return out, domainagg.NewError(domainagg.CodeInternal, opTransition, "batch job repos not configured", nil)
	}
	at := a.at(in.At)
	from := in.From
	guard := jobrepos.JobFilter{ID: in.Job.JobID, SessionID: in.Job.SessionID, State: &from}

	err := executeWrite(ctx, a.deps.Base, opTransition, func(dbc dbctx.Context) error {
		rows, err := a.deps.Jobs.Filter(dbc, guard)
		if err != nil {
			return err
		}
		if err := RequireFound(len(rows), msgNoProcessInState); err != nil {
			return err
		}

		var ref *domainagg.StepRef
		if in.StepData != nil {
			r, err := a.appendStep(dbc, in.Job.JobID, *in.StepData, 0, in.Actor, at)
			if err != nil {
				return err
			}
			ref = &r
		}

		updates := map[string]interface{}{
			"state":      in.To,
			"updated_at": at,
		}
		if col := timestampColumn(in.To); col != "" {
			updates[col] = jobs.DateOf(at)
		}
		n, err := a.deps.Jobs.UpdateWhere(dbc, guard, updates)
		if err != nil {
			return err
		}
		if err := RequireRowsAffected(n, "job state changed concurrently"); err != nil {
			return err
		}

		out = domainagg.TransitionJobResult{
			Job:  domainagg.JobContext{JobID: in.Job.JobID, SessionID: in.Job.SessionID, State: in.To},
			Step: ref,
			At:   at,
		}
		return nil
	})
	return out, err
}

func (a *batchJobAggregate) AppendStep(ctx context.Context, in domainagg.AppendStepInput) (domainagg.AppendStepResult, error) {
	var out domainagg.AppendStepResult

	if err := validateJobContext(opAppendStep, in.Job); err != nil {
		return out, err
	}
	if a.deps.Jobs == nil || a.deps.Sequencer == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, opAppendStep, "batch job repos not configured", nil)
	}
	at := a.at(in.At)

	err := executeWrite(ctx, a.deps.Base, opAppendStep, func(dbc dbctx.Context) error {
		// locks the job row so concurrent appends serialize on it
		rows, err := a.deps.Jobs.Filter(dbc, jobrepos.JobFilter{ID: in.Job.JobID, SessionID: in.Job.SessionID})
		if err != nil {
			return err
		}
		if err := RequireFound(len(rows), msgNoProcess); err != nil {
			return err
		}
		ref, err := a.appendStep(dbc, in.Job.JobID, in.Data, in.Kind, in.Actor, at)
		if err != nil {
			return err
		}
		out = domainagg.AppendStepResult{Step: ref}
		return nil
	})
	return out, err
}

func (a *batchJobAggregate) appendStep(dbc dbctx.Context, jobID uuid.UUID, data string, kind int, actor string, at time.Time) (domainagg.StepRef, error) {
	seq, err := a.deps.Sequencer.NextSequence(dbc, jobID)
	if err != nil {
		return domainagg.StepRef{}, err
	}
	step := &jobs.Step{
		JobID:      jobID,
		Sequence:   seq,
		OccurredAt: jobs.DateOf(at),
		Kind:       kind,
		Data:       jobs.TruncateData(data),
		CreatedBy:  actor,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	if _, err := a.deps.Steps.Create(dbc, []*jobs.Step{step}); err != nil {
		return domainagg.StepRef{}, err
	}
	return stepRef(step), nil
}

func (a *batchJobAggregate) at(t time.Time) time.Time {
	if t.IsZero() {
		t = a.deps.Base.Clock()
	}
	return t.UTC()
}

func validateJobContext(op string, jc domainagg.JobContext) error {
	if jc.JobID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing job_id", nil)
	}
	if jc.SessionID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	return nil
}

func stepRef(s *jobs.Step) domainagg.StepRef {
	return domainagg.StepRef{StepID: s.ID, JobID: s.JobID, Sequence: s.Sequence, Data: s.Data}
}
