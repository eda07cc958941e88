package repos

import (
	"github.com/yungbote/batchprocess-backend/internal/data/repos/jobs"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type JobRepo = jobs.JobRepo
type StepRepo = jobs.StepRepo

type JobFilter = jobs.JobFilter
type StepFilter = jobs.StepFilter
type JobListOptions = jobs.JobListOptions
type StepListOptions = jobs.StepListOptions

type Repos struct {
	Jobs  JobRepo
	Steps StepRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Jobs:  jobs.NewJobRepo(db, log),
		Steps: jobs.NewStepRepo(db, log),
	}
}
