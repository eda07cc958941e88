package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
)

var BatchJobAggregateContract = Contract{
	Name:        "Jobs.BatchJobAggregate",
	TxOwnership: TxOwnedByAggregate,
	Tables:      []string{"bap", "bap_n"},
	Notes:       "Job state and the step recorded with it commit together.",
}

// BatchJobAggregate owns the lifecycle invariants of a batch job and its audit steps.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeInvalidTransition, CodeSequenceLookup, CodeConflict, CodeRetryable, CodeStore, CodeInternal.
type BatchJobAggregate interface {
	Aggregate

	// StartJob creates a job in the initial state together with step #1.
	StartJob(ctx context.Context, in StartJobInput) (StartJobResult, error)

	// Transition moves a job from an expected state to a new one, optionally
	// appending a step in the same transaction.
	Transition(ctx context.Context, in TransitionJobInput) (TransitionJobResult, error)

	// AppendStep appends the next step of a job without changing its state.
	AppendStep(ctx context.Context, in AppendStepInput) (AppendStepResult, error)
}

// JobContext identifies one job run and carries its last known state.
// It replaces any hidden "current job" held by callers.
type JobContext struct {
	JobID     uuid.UUID  `json:"job_id"`
	SessionID uuid.UUID  `json:"session_id"`
	State     jobs.State `json:"state"`
}

// StepRef points at a persisted step.
type StepRef struct {
	StepID   uuid.UUID `json:"step_id"`
	JobID    uuid.UUID `json:"job_id"`
	Sequence int       `json:"sequence"`
	Data     string    `json:"data,omitempty"`
}

type StartJobInput struct {
	Code      string
	Message   string
	Actor     string
	StartedAt time.Time
}

type StartJobResult struct {
	Job  JobContext
	Step StepRef
}

type TransitionJobInput struct {
	Job   JobContext
	From  jobs.State
	To    jobs.State
	Actor string
	At    time.Time

	// StepData, when set, is appended as a step in the same transaction.
	StepData *string
}

type TransitionJobResult struct {
	Job  JobContext
	Step *StepRef
	At   time.Time
}

type AppendStepInput struct {
	Job   JobContext
	Data  string
	Kind  int
	Actor string
	At    time.Time
}

type AppendStepResult struct {
	Step StepRef
}
