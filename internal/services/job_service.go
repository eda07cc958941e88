package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/batchprocess-backend/internal/data/repos"
	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

const maxListLimit = 500

// JobService is the read/delete surface over recorded jobs and steps.
// State changes go through BatchNotifier only.
type JobService interface {
	List(ctx context.Context, opts repos.JobListOptions) ([]*jobs.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*jobs.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListSteps(ctx context.Context, jobID uuid.UUID) ([]*jobs.Step, error)
	ListAllSteps(ctx context.Context, opts repos.StepListOptions) ([]*jobs.Step, error)
	GetStep(ctx context.Context, id uuid.UUID) (*jobs.Step, error)
}

type jobService struct {
	db    *gorm.DB
	log   *logger.Logger
	jobs  repos.JobRepo
	steps repos.StepRepo
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, jobRepo repos.JobRepo, stepRepo repos.StepRepo) JobService {
	return &jobService{
		db:    db,
		log:   baseLog.With("service", "JobService"),
		jobs:  jobRepo,
		steps: stepRepo,
	}
}

func (s *jobService) List(ctx context.Context, opts repos.JobListOptions) ([]*jobs.Job, error) {
	opts.Limit = clampLimit(opts.Limit)
	if opts.State != nil && !opts.State.Valid() {
		return nil, domainagg.NewError(domainagg.CodeValidation, "JobService.List", fmt.Sprintf("unknown state %d", int(*opts.State)), nil)
	}
	rows, err := s.jobs.List(dbctx.Context{Ctx: ctx}, opts)
	if err != nil {
		s.log.Error("Error occurred while retrieving job list", "error", err)
		return nil, domainagg.Wrap(domainagg.CodeStore, "JobService.List", err)
	}
	return rows, nil
}

func (s *jobService) Get(ctx context.Context, id uuid.UUID) (*jobs.Job, error) {
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "JobService.Get", "missing job id", nil)
	}
	row, err := s.jobs.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		s.log.Error("Error occurred while retrieving job by id", "job_id", id, "error", err)
		return nil, domainagg.Wrap(domainagg.CodeStore, "JobService.Get", err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "JobService.Get", "job not found", nil)
	}
	return row, nil
}

func (s *jobService) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, "JobService.Delete", "missing job id", nil)
	}
	deleted, err := s.jobs.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		s.log.Error("Error occurred while deleting job", "job_id", id, "error", err)
		return domainagg.Wrap(domainagg.CodeStore, "JobService.Delete", err)
	}
	if !deleted {
		return domainagg.NewError(domainagg.CodeNotFound, "JobService.Delete", "job not found", nil)
	}
	s.log.Info("Deleted job", "job_id", id)
	return nil
}

func (s *jobService) ListSteps(ctx context.Context, jobID uuid.UUID) ([]*jobs.Step, error) {
	if _, err := s.Get(ctx, jobID); err != nil {
		return nil, err
	}
	rows, err := s.steps.ListByJobID(dbctx.Context{Ctx: ctx}, jobID)
	if err != nil {
		s.log.Error("Error occurred while retrieving job steps", "job_id", jobID, "error", err)
		return nil, domainagg.Wrap(domainagg.CodeStore, "JobService.ListSteps", err)
	}
	return rows, nil
}

func (s *jobService) ListAllSteps(ctx context.Context, opts repos.StepListOptions) ([]*jobs.Step, error) {
	opts.Limit = clampLimit(opts.Limit)
	rows, err := s.steps.List(dbctx.Context{Ctx: ctx}, opts)
	if err != nil {
		s.log.Error("Error occurred while retrieving step list", "error", err)
		return nil, domainagg.Wrap(domainagg.CodeStore, "JobService.ListAllSteps", err)
	}
	return rows, nil
}

func (s *jobService) GetStep(ctx context.Context, id uuid.UUID) (*jobs.Step, error) {
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "JobService.GetStep", "missing step id", nil)
	}
	row, err := s.steps.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		s.log.Error("Error occurred while retrieving step by id", "step_id", id, "error", err)
		return nil, domainagg.Wrap(domainagg.CodeStore, "JobService.GetStep", err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "JobService.GetStep", "step not found", nil)
	}
	return row, nil
}

func clampLimit(n int) int {
	if n <= 0 || n > maxListLimit {
		return maxListLimit
	}
	return n
}
