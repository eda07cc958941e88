package aggregates

import (
	"fmt"

	"github.com/google/uuid"
	jobrepos "github.com/yungbote/batchprocess-backend/internal/data/repos/jobs"
	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
)

const opNextSequence = "Jobs.BatchJob.NextSequence"

// Sequencer assigns step numbers as max(sequence)+1 per job.
//
// Called inside a transaction that holds the job row lock, two appends for the
// same job cannot compute the same number; the (job_id, sequence) unique index
// rejects anything that still slips through.
type Sequencer struct {
	steps jobrepos.StepRepo
}

func NewSequencer(steps jobrepos.StepRepo) *Sequencer {
	return &Sequencer{steps: steps}
}

// NextSequence returns the number of the next step of jobID.
// A job without steps is a usage error: Start always writes step #1 itself.
func (s *Sequencer) NextSequence(dbc dbctx.Context, jobID uuid.UUID) (int, error) {
	if jobID == uuid.Nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, opNextSequence, "missing job_id", nil)
	}
	if s == nil || s.steps == nil {
		return 0, domainagg.NewError(domainagg.CodeInternal, opNextSequence, "sequencer step repo not configured", nil)
	}
	max, count, err := s.steps.GetMaxSequence(dbc, jobID)
	if err != nil {
		return 0, MapError(opNextSequence, err)
	}
	if count == 0 {
		return 0, domainagg.NewError(
			domainagg.CodeSequenceLookup,
			opNextSequence,
			fmt.Sprintf("no active process steps found for job %s", jobID),
			ErrSequenceLookup,
		)
	}
	return max + 1, nil
}
