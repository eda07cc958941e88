package db

import (
	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&jobs.Job{},
		&jobs.Step{},
	)
}
