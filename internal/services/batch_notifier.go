package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/ctxutil"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"github.com/yungbote/batchprocess-backend/internal/realtime/bus"
)

const (
	VerbStart      = "start"
	VerbInProgress = "in_progress"
	VerbCancel     = "cancel"
	VerbSuccess    = "success"
	VerbFailure    = "failure"
	VerbEnd        = "end"
	VerbTotalCount = "total_count"
	VerbProgress   = "progress"
)

// BatchNotifier is the lifecycle facade used by batch processes. It keeps no
// per-job state: callers carry the JobContext returned by Start.
type BatchNotifier interface {
	Start(ctx context.Context, code, message string) (domainagg.JobContext, error)
	InProgress(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error)
	Cancel(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error)
	Success(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error)
	Failure(ctx context.Context, jc domainagg.JobContext, message string) (domainagg.JobContext, error)
	End(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error)
	TotalCount(ctx context.Context, jc domainagg.JobContext, total int) (domainagg.StepRef, error)
	Progress(ctx context.Context, jc domainagg.JobContext, progress int) (domainagg.StepRef, error)
}

type batchNotifier struct {
	log      *logger.Logger
	agg      domainagg.BatchJobAggregate
	messages MessageCatalog
	events   bus.Bus
	metrics  *observability.Metrics
	actor    string
}

func NewBatchNotifier(
	baseLog *logger.Logger,
	agg domainagg.BatchJobAggregate,
	messages MessageCatalog,
	events bus.Bus,
	metrics *observability.Metrics,
	actor string,
) BatchNotifier {
	if messages == nil {
		messages = NewMessageCatalog(LocaleGreek)
	}
	if events == nil {
		events = bus.NewNoopBus()
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = "system"
	}
	return &batchNotifier{
		log:      baseLog.With("service", "BatchNotifier"),
		agg:      agg,
		messages: messages,
		events:   events,
		metrics:  metrics,
		actor:    actor,
	}
}

func (s *batchNotifier) Start(ctx context.Context, code, message string) (domainagg.JobContext, error) {
	var out domainagg.JobContext
	err := s.run(ctx, VerbStart, domainagg.JobContext{}, func(ctx context.Context) error {
		res, err := s.agg.StartJob(ctx, domainagg.StartJobInput{Code: code, Message: message, Actor: ctxutil.ActorFrom(ctx, s.actor)})
		if err != nil {
			return err
		}
		out = res.Job
		trace.SpanFromContext(ctx).SetAttributes(observability.JobAttributes(out.JobID, out.SessionID)...)
		s.log.Info("Starting new batch process", "job_id", out.JobID, "code", code)
		s.publish(ctx, VerbStart, out, &res.Step, time.Now())
		return nil
	}, "job_code", code)
	return out, err
}

func (s *batchNotifier) InProgress(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error) {
	return s.transition(ctx, VerbInProgress, jc, jobs.StateInitial, jobs.StateInProgress, nil)
}

func (s *batchNotifier) Cancel(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error) {
	return s.transition(ctx, VerbCancel, jc, jobs.StateInProgress, jobs.StateInterrupted, nil)
}

func (s *batchNotifier) Success(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error) {
	text := s.messages.Success()
	return s.transition(ctx, VerbSuccess, jc, jobs.StateInProgress, jobs.StateCompleted, &text)
}

func (s *batchNotifier) Failure(ctx context.Context, jc domainagg.JobContext, message string) (domainagg.JobContext, error) {
	text := s.messages.Failure(message)
	return s.transition(ctx, VerbFailure, jc, jobs.StateInProgress, jobs.StateFailed, &text)
}

func (s *batchNotifier) End(ctx context.Context, jc domainagg.JobContext) (domainagg.JobContext, error) {
	return s.transition(ctx, VerbEnd, jc, jobs.StateInProgress, jobs.StateCompleted, nil)
}

func (s *batchNotifier) TotalCount(ctx context.Context, jc domainagg.JobContext, total int) (domainagg.StepRef, error) {
	if total < 0 {
		return domainagg.StepRef{}, s.reject(ctx, VerbTotalCount, jc, "total must not be negative")
	}
	return s.appendStep(ctx, VerbTotalCount, jc, s.messages.TotalCount(total))
}

func (s *batchNotifier) Progress(ctx context.Context, jc domainagg.JobContext, progress int) (domainagg.StepRef, error) {
	if progress < 0 {
		return domainagg.StepRef{}, s.reject(ctx, VerbProgress, jc, "progress must not be negative")
	}
	return s.appendStep(ctx, VerbProgress, jc, s.messages.Progress(progress))
}

func (s *batchNotifier) transition(ctx context.Context, verb string, jc domainagg.JobContext, from, to jobs.State, data *string) (domainagg.JobContext, error) {
	out := jc
	err := s.run(ctx, verb, jc, func(ctx context.Context) error {
		res, err := s.agg.Transition(ctx, domainagg.TransitionJobInput{
			Job:      jc,
			From:     from,
			To:       to,
			Actor:    ctxutil.ActorFrom(ctx, s.actor),
			StepData: data,
		})
		if err != nil {
			return err
		}
		out = res.Job
		s.log.Info("Batch process transitioned", "verb", verb, "job_id", jc.JobID, "state", to.String())
		s.publish(ctx, verb, out, res.Step, res.At)
		return nil
	})
	return out, err
}

func (s *batchNotifier) appendStep(ctx context.Context, verb string, jc domainagg.JobContext, text string) (domainagg.StepRef, error) {
	var out domainagg.StepRef
	err := s.run(ctx, verb, jc, func(ctx context.Context) error {
		res, err := s.agg.AppendStep(ctx, domainagg.AppendStepInput{Job: jc, Data: text, Actor: ctxutil.ActorFrom(ctx, s.actor)})
		if err != nil {
			return err
		}
		out = res.Step
		s.log.Debug("Batch process step recorded", "verb", verb, "job_id", jc.JobID, "sequence", out.Sequence)
		s.publish(ctx, verb, jc, &out, time.Now())
		return nil
	})
	return out, err
}

func (s *batchNotifier) reject(ctx context.Context, verb string, jc domainagg.JobContext, msg string) error {
	return s.run(ctx, verb, jc, func(context.Context) error {
		return domainagg.NewError(domainagg.CodeValidation, "BatchNotifier."+verb, msg, nil)
	})
}

// run wraps one verb in a span, counts it, and logs failures with the job context.
// Extra key/values are appended to the failure log line.
func (s *batchNotifier) run(ctx context.Context, verb string, jc domainagg.JobContext, fn func(ctx context.Context) error, kv ...interface{}) error {
	if s == nil || s.agg == nil {
		return domainagg.NewError(domainagg.CodeInternal, "BatchNotifier."+verb, "batch notifier not configured", nil)
	}
	ctx, span := observability.Tracer().Start(ctx, "batch."+verb)
	defer span.End()
	span.SetAttributes(observability.JobAttributes(jc.JobID, jc.SessionID)...)

	err := fn(ctx)
	status := "success"
	if err != nil {
		status = string(domainagg.CodeOf(err))
		if status == "" {
			status = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, domainagg.MessageOf(err))
		fields := append([]interface{}{"verb", verb, "code", status, "error", err}, kv...)
		s.log.Error(fmt.Sprintf("%s for %s failed", verb, jobJSON(jc)), fields...)
	}
	s.metrics.IncLifecycleVerb(verb, status)
	return err
}

func (s *batchNotifier) publish(ctx context.Context, verb string, jc domainagg.JobContext, step *domainagg.StepRef, at time.Time) {
	ev := bus.Event{
		Verb:      verb,
		JobID:     jc.JobID,
		SessionID: jc.SessionID,
		State:     jc.State,
		At:        at.UTC(),
	}
	if step != nil {
		ev.Sequence = step.Sequence
		ev.Data = step.Data
	}
	// the transaction already committed; a lost event is logged, not returned
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("Publish lifecycle event failed", "verb", verb, "job_id", jc.JobID, "error", err)
		s.metrics.IncEventPublished("error")
		return
	}
	s.metrics.IncEventPublished("success")
}

func jobJSON(jc domainagg.JobContext) string {
	raw, err := json.Marshal(jc)
	if err != nil {
		return jc.JobID.String()
	}
	return string(raw)
}
