package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/batchprocess-backend/internal/data/repos"
	repotest "github.com/yungbote/batchprocess-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

func TestJobServiceReadsAndDeletes(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	log := logger.NewNop()
	r := repos.New(db, log)
	svc := NewJobService(db, log, r.Jobs, r.Steps)

	a := repotest.SeedJob(t, ctx, db, "A", jobs.StateInProgress)
	b := repotest.SeedJob(t, ctx, db, "B", jobs.StateCompleted)
	repotest.SeedStep(t, ctx, db, a.ID, 1, "init")
	step := repotest.SeedStep(t, ctx, db, a.ID, 2, "progress")

	all, err := svc.List(ctx, repos.JobListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := svc.List(ctx, repos.JobListOptions{State: repotest.PtrState(jobs.StateCompleted)})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, b.ID, done[0].ID)

	_, err = svc.List(ctx, repos.JobListOptions{State: repotest.PtrState(jobs.State(9))})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Code)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	steps, err := svc.ListSteps(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].Sequence)

	gotStep, err := svc.GetStep(ctx, step.ID)
	require.NoError(t, err)
	assert.Equal(t, "progress", gotStep.Data)

	allSteps, err := svc.ListAllSteps(ctx, repos.StepListOptions{JobID: a.ID})
	require.NoError(t, err)
	assert.Len(t, allSteps, 2)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
	_, err = svc.GetStep(ctx, step.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	err = svc.Delete(ctx, a.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}
