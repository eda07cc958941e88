package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/batchprocess-backend/internal/data/aggregates"
	jobrepos "github.com/yungbote/batchprocess-backend/internal/data/repos/jobs"
	repotest "github.com/yungbote/batchprocess-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"github.com/yungbote/batchprocess-backend/internal/services"
)

type runnerHarness struct {
	runner  *Runner
	jobs    jobrepos.JobRepo
	steps   jobrepos.StepRepo
	metrics *observability.Metrics
}

func newRunnerHarness(t *testing.T, cfg Config) *runnerHarness {
	t.Helper()
	db := repotest.DB(t)
	log := logger.NewNop()
	h := &runnerHarness{
		jobs:    jobrepos.NewJobRepo(db, log),
		steps:   jobrepos.NewStepRepo(db, log),
		metrics: observability.NewMetrics(),
	}
	agg := aggregates.NewBatchJobAggregate(aggregates.BatchJobAggregateDeps{
		Base:  aggregates.BaseDeps{DB: db, Log: log},
		Jobs:  h.jobs,
		Steps: h.steps,
	})
	notifier := services.NewBatchNotifier(log, agg, services.NewMessageCatalog(services.LocaleEnglish), nil, h.metrics, "runner")
	h.runner = New(log, notifier, h.metrics, cfg)
	return h
}

func (h *runnerHarness) stepsOf(t *testing.T, jc domainagg.JobContext) []*jobs.Step {
	t.Helper()
	rows, err := h.steps.ListByJobID(dbctx.Context{Ctx: context.Background()}, jc.JobID)
	require.NoError(t, err)
	return rows
}

func TestRunnerCompletesAllChunks(t *testing.T) {
	h := newRunnerHarness(t, Config{Workers: 3, ChunkSize: 100})

	var processed atomic.Int64
	jc, err := h.runner.Run(context.Background(), 250, func(_ context.Context, c Chunk) error {
		processed.Add(int64(c.Size))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, jobs.StateCompleted, jc.State)
	assert.Equal(t, int64(250), processed.Load())

	steps := h.stepsOf(t, jc)
	// start, total, three progress steps, success
	require.Len(t, steps, 6)
	assert.Equal(t, "Δημιουργία διαδικασίας καταχώρησης", steps[0].Data)
	assert.Equal(t, "Total records to process: 250", steps[1].Data)
	assert.Equal(t, "Successfully recorded 250 records.", steps[4].Data)
	assert.Equal(t, "Process creation completed successfully.", steps[5].Data)

	row, err := h.jobs.GetByID(dbctx.Context{Ctx: context.Background()}, jc.JobID)
	require.NoError(t, err)
	assert.Equal(t, DefaultCode, row.Code)
	assert.NotNil(t, row.FinishedAt)
}

func TestRunnerRecordsFailure(t *testing.T) {
	h := newRunnerHarness(t, Config{Workers: 1, ChunkSize: 10})

	boom := errors.New("disk full")
	jc, err := h.runner.Run(context.Background(), 30, func(_ context.Context, c Chunk) error {
		if c.Index == 1 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, jobs.StateFailed, jc.State)

	steps := h.stepsOf(t, jc)
	last := steps[len(steps)-1]
	assert.Equal(t, "Process creation failed. - disk full", last.Data)

	row, err := h.jobs.GetByID(dbctx.Context{Ctx: context.Background()}, jc.JobID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StateFailed, row.State)
	assert.NotNil(t, row.FailedAt)
	assert.Nil(t, row.FinishedAt)
}

func TestRunnerRecordsFailureAfterCancellation(t *testing.T) {
	h := newRunnerHarness(t, Config{Workers: 1, ChunkSize: 10})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jc, err := h.runner.Run(ctx, 30, func(c context.Context, _ Chunk) error {
		cancel()
		return c.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, jobs.StateFailed, jc.State)

	steps := h.stepsOf(t, jc)
	last := steps[len(steps)-1]
	assert.Equal(t, "Process creation failed. - context canceled", last.Data)

	row, err := h.jobs.GetByID(dbctx.Context{Ctx: context.Background()}, jc.JobID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StateFailed, row.State)
	assert.NotNil(t, row.FailedAt)
}

func TestRunnerRecoversProcessorPanic(t *testing.T) {
	h := newRunnerHarness(t, Config{Workers: 2, ChunkSize: 5})

	jc, err := h.runner.Run(context.Background(), 5, func(context.Context, Chunk) error {
		panic("bad record")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad record")
	assert.Equal(t, jobs.StateFailed, jc.State)
}

func TestRunnerRejectsEmptyRun(t *testing.T) {
	h := newRunnerHarness(t, Config{})

	_, err := h.runner.Run(context.Background(), 0, func(context.Context, Chunk) error { return nil })
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	assert.Equal(t, "Number of records is required.", domainagg.MessageOf(err))

	rows, err := h.jobs.List(dbctx.Context{Ctx: context.Background()}, jobrepos.JobListOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSplit(t *testing.T) {
	chunks := split(25, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, Chunk{Index: 2, Offset: 20, Size: 5}, chunks[2])
	assert.Len(t, split(10, 10), 1)
}
