package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/batchprocess-backend/internal/data/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/data/repos"
	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/jobs/runner"
	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"github.com/yungbote/batchprocess-backend/internal/services"
)

type Services struct {
	BatchJob domainagg.BatchJobAggregate
	Notifier services.BatchNotifier
	Jobs     services.JobService
	Runner   *runner.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet repos.Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	batchJob := aggregates.NewBatchJobAggregate(aggregates.BatchJobAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log.Named("aggregate"),
			Hooks: aggregates.NewObservabilityHooks(metrics, log.Named("aggregate")),
		},
		Jobs:  reposet.Jobs,
		Steps: reposet.Steps,
	})

	notifier := services.NewBatchNotifier(
		log.Named("notifier"),
		batchJob,
		services.NewMessageCatalog(cfg.MessagesLocale),
		clients.Events,
		metrics,
		cfg.Actor,
	)

	return Services{
		BatchJob: batchJob,
		Notifier: notifier,
		Jobs:     services.NewJobService(db, log, reposet.Jobs, reposet.Steps),
		Runner: runner.New(log.Named("runner"), notifier, metrics, runner.Config{
			Workers:   cfg.RunnerWorkers,
			ChunkSize: cfg.RunnerChunkSize,
		}),
	}
}
