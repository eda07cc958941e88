package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

// JobFilter narrows job reads and updates. Zero fields are ignored.
type JobFilter struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	State     *domain.State
	Code      string
}

type JobListOptions struct {
	State  *domain.State
	Code   string
	Limit  int
	Offset int
}

type JobRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Job) ([]*domain.Job, error)

	// Filter reads rows for mutation; inside a transaction the rows are locked.
	Filter(dbc dbctx.Context, f JobFilter) ([]*domain.Job, error)
	// FilterNoTracking is a read-only snapshot and never takes locks.
	FilterNoTracking(dbc dbctx.Context, f JobFilter) ([]*domain.Job, error)

	// UpdateWhere applies updates to every row matching f and returns the rows affected.
	UpdateWhere(dbc dbctx.Context, f JobFilter, updates map[string]interface{}) (int64, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Job, error)
	List(dbc dbctx.Context, opts JobListOptions) ([]*domain.Job, error)

	// Delete removes the job and all of its steps.
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{db: db, log: baseLog.With("repo", "JobRepo")}
}

func (r *jobRepo) Create(dbc dbctx.Context, rows []*domain.Job) ([]*domain.Job, error) {
	if len(rows) == 0 {
		return []*domain.Job{}, nil
	}
	if err := dbc.Handle(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *jobRepo) Filter(dbc dbctx.Context, f JobFilter) ([]*domain.Job, error) {
	q := applyJobFilter(dbc.Handle(r.db), f)
	if dbc.InTx() && dbc.Tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out []*domain.Job
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) FilterNoTracking(dbc dbctx.Context, f JobFilter) ([]*domain.Job, error) {
	var out []*domain.Job
	if err := applyJobFilter(dbc.Handle(r.db), f).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) UpdateWhere(dbc dbctx.Context, f JobFilter, updates map[string]interface{}) (int64, error) {
	if f.ID == uuid.Nil {
		return 0, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := applyJobFilter(dbc.Handle(r.db).Model(&domain.Job{}), f).Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *jobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Job, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Job
	if err := dbc.Handle(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *jobRepo) List(dbc dbctx.Context, opts JobListOptions) ([]*domain.Job, error) {
	q := applyJobFilter(dbc.Handle(r.db), JobFilter{State: opts.State, Code: opts.Code}).Order("created_at DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	var out []*domain.Job
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	del := func(tx *gorm.DB) (bool, error) {
		if err := tx.Where("job_id = ?", id).Delete(&domain.Step{}).Error; err != nil {
			return false, err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Job{})
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected > 0, nil
	}
	if dbc.InTx() {
		return del(dbc.Handle(r.db))
	}
	var deleted bool
	err := dbc.Handle(r.db).Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = del(tx)
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		r.log.Debug("Deleted job", "job_id", id)
	}
	return deleted, nil
}

func applyJobFilter(q *gorm.DB, f JobFilter) *gorm.DB {
	if f.ID != uuid.Nil {
		q = q.Where("id = ?", f.ID)
	}
	if f.SessionID != uuid.Nil {
		q = q.Where("session_id = ?", f.SessionID)
	}
	if f.State != nil {
		q = q.Where("state = ?", int(*f.State))
	}
	if f.Code != "" {
		q = q.Where("code = ?", f.Code)
	}
	return q
}
