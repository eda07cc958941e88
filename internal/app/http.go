package app

import (
	"gorm.io/gorm"

	apphttp "github.com/yungbote/batchprocess-backend/internal/http"
	httpH "github.com/yungbote/batchprocess-backend/internal/http/handlers"
	"github.com/yungbote/batchprocess-backend/internal/jobs/runner"
	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Job      *httpH.JobHandler
	Step     *httpH.StepHandler
	BatchRun *httpH.BatchRunHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Job: httpH.NewJobHandlerWithDeps(httpH.JobHandlerDeps{
			Log:      log,
			Jobs:     services.Jobs,
			Notifier: services.Notifier,
		}),
		Step:     httpH.NewStepHandler(services.Jobs),
		BatchRun: httpH.NewBatchRunHandler(log, services.Runner, runner.Discard),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *apphttp.Server {
	log.Info("Wiring router...")
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		JobHandler:      handlers.Job,
		StepHandler:     handlers.Step,
		BatchRunHandler: handlers.BatchRun,
		HealthHandler:   handlers.Health,
	})
}
