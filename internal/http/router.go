package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/batchprocess-backend/internal/http/handlers"
	httpMW "github.com/yungbote/batchprocess-backend/internal/http/middleware"
	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	JobHandler      *httpH.JobHandler
	StepHandler     *httpH.StepHandler
	BatchRunHandler *httpH.BatchRunHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	service := cfg.ServiceName
	if service == "" {
		service = "batchprocess"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(service))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Jobs (Bap)
		if cfg.JobHandler != nil {
			api.GET("/bap", cfg.JobHandler.ListJobs)
			api.POST("/bap", cfg.JobHandler.StartJob)
			api.GET("/bap/:id", cfg.JobHandler.GetJob)
			api.DELETE("/bap/:id", cfg.JobHandler.DeleteJob)
			api.GET("/bap/:id/steps", cfg.JobHandler.ListJobSteps)

			api.POST("/bap/:id/in-progress", cfg.JobHandler.InProgress)
			api.POST("/bap/:id/total-count", cfg.JobHandler.TotalCount)
			api.POST("/bap/:id/progress", cfg.JobHandler.Progress)
			api.POST("/bap/:id/success", cfg.JobHandler.Success)
			api.POST("/bap/:id/failure", cfg.JobHandler.Failure)
			api.POST("/bap/:id/cancel", cfg.JobHandler.Cancel)
			api.POST("/bap/:id/end", cfg.JobHandler.End)
		}

		// Steps (BapN)
		if cfg.StepHandler != nil {
			api.GET("/bapn", cfg.StepHandler.ListSteps)
			api.GET("/bapn/:id", cfg.StepHandler.GetStep)
		}

		// Runner
		if cfg.BatchRunHandler != nil {
			api.POST("/test-batch-process", cfg.BatchRunHandler.Run)
		}
	}

	return r
}
