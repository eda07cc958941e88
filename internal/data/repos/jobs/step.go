package jobs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

type StepFilter struct {
	ID    uuid.UUID
	JobID uuid.UUID
}

type StepListOptions struct {
	JobID  uuid.UUID
	Limit  int
	Offset int
}

type StepRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Step) ([]*domain.Step, error)

	FilterNoTracking(dbc dbctx.Context, f StepFilter) ([]*domain.Step, error)

	// GetMaxSequence returns the highest sequence of a job and the number of its steps.
	GetMaxSequence(dbc dbctx.Context, jobID uuid.UUID) (max int, count int64, err error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Step, error)
	ListByJobID(dbc dbctx.Context, jobID uuid.UUID) ([]*domain.Step, error)
	List(dbc dbctx.Context, opts StepListOptions) ([]*domain.Step, error)

	DeleteByJobID(dbc dbctx.Context, jobID uuid.UUID) (int64, error)
}

type stepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepRepo(db *gorm.DB, baseLog *logger.Logger) StepRepo {
	return &stepRepo{db: db, log: baseLog.With("repo", "StepRepo")}
}

func (r *stepRepo) Create(dbc dbctx.Context, rows []*domain.Step) ([]*domain.Step, error) {
	if len(rows) == 0 {
		return []*domain.Step{}, nil
	}
	if err := dbc.Handle(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *stepRepo) FilterNoTracking(dbc dbctx.Context, f StepFilter) ([]*domain.Step, error) {
	q := dbc.Handle(r.db)
	if f.ID != uuid.Nil {
		q = q.Where("id = ?", f.ID)
	}
	if f.JobID != uuid.Nil {
		q = q.Where("job_id = ?", f.JobID)
	}
	var out []*domain.Step
	if err := q.Order("sequence ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *stepRepo) GetMaxSequence(dbc dbctx.Context, jobID uuid.UUID) (int, int64, error) {
	if jobID == uuid.Nil {
		return 0, 0, nil
	}
	var agg struct {
		MaxSeq int
		Cnt    int64
	}
	if err := dbc.Handle(r.db).
		Model(&domain.Step{}).
		Select("COALESCE(MAX(sequence), 0) AS max_seq, COUNT(*) AS cnt").
		Where("job_id = ?", jobID).
		Scan(&agg).Error; err != nil {
		return 0, 0, err
	}
	return agg.MaxSeq, agg.Cnt, nil
}

func (r *stepRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Step, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Step
	if err := dbc.Handle(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *stepRepo) ListByJobID(dbc dbctx.Context, jobID uuid.UUID) ([]*domain.Step, error) {
	var out []*domain.Step
	if jobID == uuid.Nil {
		return out, nil
	}
	return r.FilterNoTracking(dbc, StepFilter{JobID: jobID})
}

func (r *stepRepo) List(dbc dbctx.Context, opts StepListOptions) ([]*domain.Step, error) {
	q := dbc.Handle(r.db)
	if opts.JobID != uuid.Nil {
		q = q.Where("job_id = ?", opts.JobID)
	}
	q = q.Order("created_at DESC").Order("sequence DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	var out []*domain.Step
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *stepRepo) DeleteByJobID(dbc dbctx.Context, jobID uuid.UUID) (int64, error) {
	if jobID == uuid.Nil {
		return 0, nil
	}
	res := dbc.Handle(r.db).Where("job_id = ?", jobID).Delete(&domain.Step{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
