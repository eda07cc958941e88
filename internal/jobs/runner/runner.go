package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"github.com/yungbote/batchprocess-backend/internal/services"
)

const (
	DefaultCode      = "CEM_CREATE_AFN"
	DefaultMessage   = "Δημιουργία διαδικασίας καταχώρησης"
	DefaultWorkers   = 4
	DefaultChunkSize = 100

	failureRecordTimeout = 10 * time.Second
)

// Chunk is a contiguous slice [Offset, Offset+Size) of the records of one run.
type Chunk struct {
	Index  int
	Offset int
	Size   int
}

// Processor handles one chunk. It must honor ctx cancellation.
type Processor func(ctx context.Context, chunk Chunk) error

type Config struct {
	Workers   int
	ChunkSize int
	Code      string
	Message   string
}

type Runner struct {
	log      *logger.Logger
	notifier services.BatchNotifier
	metrics  *observability.Metrics
	cfg      Config
}

func New(baseLog *logger.Logger, notifier services.BatchNotifier, metrics *observability.Metrics, cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if strings.TrimSpace(cfg.Code) == "" {
		cfg.Code = DefaultCode
	}
	if strings.TrimSpace(cfg.Message) == "" {
		cfg.Message = DefaultMessage
	}
	return &Runner{
		log:      baseLog.With("component", "BatchRunner"),
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
	}
}

type chunkResult struct {
	chunk Chunk
	err   error
}

// Run drives one audited batch: Start, InProgress, TotalCount, one Progress per
// finished chunk, then Success. A processing error records Failure and is returned.
func (r *Runner) Run(ctx context.Context, total int, process Processor) (domainagg.JobContext, error) {
	var jc domainagg.JobContext
	if total <= 0 {
		return jc, domainagg.NewError(domainagg.CodeValidation, "BatchRunner.Run", "Number of records is required.", nil)
	}
	if process == nil {
		return jc, domainagg.NewError(domainagg.CodeValidation, "BatchRunner.Run", "missing processor", nil)
	}

	jc, err := r.notifier.Start(ctx, r.cfg.Code, r.cfg.Message)
	if err != nil {
		return jc, err
	}
	if jc, err = r.notifier.InProgress(ctx, jc); err != nil {
		return jc, err
	}
	if _, err := r.notifier.TotalCount(ctx, jc, total); err != nil {
		return r.fail(ctx, jc, err)
	}

	if err := r.process(ctx, jc, total, process); err != nil {
		return r.fail(ctx, jc, err)
	}
	return r.notifier.Success(ctx, jc)
}

func (r *Runner) process(ctx context.Context, jc domainagg.JobContext, total int, process Processor) error {
	pool, err := ants.NewPool(r.cfg.Workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks := split(total, r.cfg.ChunkSize)
	results := make(chan chunkResult, len(chunks))
	submitted := 0
	for _, c := range chunks {
		c := c
		if err := pool.Submit(func() { results <- r.runChunk(runCtx, c, process) }); err != nil {
			cancel()
			r.drain(results, submitted)
			return fmt.Errorf("submit chunk %d: %w", c.Index, err)
		}
		submitted++
	}

	done := 0
	var firstErr error
	for i := 0; i < submitted; i++ {
		res := <-results
		if res.err != nil {
			r.metrics.ObserveRunnerChunk("failed", 0)
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			continue
		}
		r.metrics.ObserveRunnerChunk("succeeded", res.chunk.Size)
		if firstErr != nil {
			continue
		}
		done += res.chunk.Size
		if _, err := r.notifier.Progress(ctx, jc, done); err != nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}

func (r *Runner) runChunk(ctx context.Context, c Chunk, process Processor) (res chunkResult) {
	res.chunk = c
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("Chunk processor panic", "chunk", c.Index, "panic", v)
			res.err = errFromRecover(v)
		}
	}()
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}
	res.err = process(ctx, c)
	return res
}

func (r *Runner) drain(results <-chan chunkResult, n int) {
	for i := 0; i < n; i++ {
		<-results
	}
}

// fail records Failure even when ctx is already cancelled, so an aborted run
// never stays InProgress.
func (r *Runner) fail(ctx context.Context, jc domainagg.JobContext, cause error) (domainagg.JobContext, error) {
	r.log.Warn("Batch run failed", "job_id", jc.JobID, "error", cause)
	msg := domainagg.MessageOf(cause)
	if msg == "" {
		msg = cause.Error()
	}
	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureRecordTimeout)
	defer cancel()
	out, err := r.notifier.Failure(failCtx, jc, msg)
	if err != nil {
		r.log.Error("Recording batch failure failed", "job_id", jc.JobID, "error", err)
		return jc, cause
	}
	return out, cause
}

func split(total, size int) []Chunk {
	out := make([]Chunk, 0, (total+size-1)/size)
	for off, i := 0, 0; off < total; off, i = off+size, i+1 {
		n := size
		if off+n > total {
			n = total - off
		}
		out = append(out, Chunk{Index: i, Offset: off, Size: n})
	}
	return out
}

func errFromRecover(v any) error {
	return &panicError{Val: v}
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }

// Discard acknowledges every chunk without doing work.
func Discard(ctx context.Context, _ Chunk) error { return ctx.Err() }
