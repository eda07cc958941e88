package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"gorm.io/gorm"
)

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, code string, state jobs.State) *jobs.Job {
	tb.Helper()
	j := &jobs.Job{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Code:      code,
		State:     state,
		StartedAt: jobs.DateOf(time.Now()),
		CreatedBy: "test",
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return j
}

func SeedStep(tb testing.TB, ctx context.Context, tx *gorm.DB, jobID uuid.UUID, seq int, data string) *jobs.Step {
	tb.Helper()
	s := &jobs.Step{
		ID:         uuid.New(),
		JobID:      jobID,
		Sequence:   seq,
		OccurredAt: jobs.DateOf(time.Now()),
		Data:       data,
		CreatedBy:  "test",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed step: %v", err)
	}
	return s
}

func PtrState(v jobs.State) *jobs.State { return &v }
