package observability

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

// StartServer exposes WritePrometheus on addr until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil || strings.TrimSpace(addr) == "" {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.WriteHTTP)
	srv := &http.Server{Addr: strings.TrimSpace(addr), Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) && log != nil {
			log.Error("metrics server failed", "error", err, "addr", srv.Addr)
		}
	}()
}

// collectEvery calls collect on every tick of the scrape interval until ctx is done.
// A failing collect is logged and retried on the next tick.
func collectEvery(ctx context.Context, log *logger.Logger, name string, collect func(ctx context.Context) error) {
	ticker := time.NewTicker(scrapeInterval())
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := collect(ctx); err != nil && log != nil {
					log.Warn("metrics collector failed", "collector", name, "error", err)
				}
			}
		}
	}()
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	collectEvery(ctx, log, "db_pool", func(context.Context) error {
		return m.CollectDBStats(db)
	})
}

func (m *Metrics) CollectDBStats(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	stats := sqlDB.Stats()
	for stat, v := range map[string]float64{
		"open_connections":      float64(stats.OpenConnections),
		"in_use":                float64(stats.InUse),
		"idle":                  float64(stats.Idle),
		"wait_count":            float64(stats.WaitCount),
		"wait_duration_seconds": stats.WaitDuration.Seconds(),
		"max_open_connections":  float64(stats.MaxOpenConnections),
	} {
		m.dbStats.Set(v, stat)
	}
	return nil
}

// StartRedisCollector pings the event broker on its own client so a stalled
// pub/sub connection does not hide the outage.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, opts *redis.Options) {
	if m == nil || opts == nil || strings.TrimSpace(opts.Addr) == "" {
		return
	}
	rdb := redis.NewClient(opts)
	go func() {
		<-ctx.Done()
		_ = rdb.Close()
	}()
	collectEvery(ctx, log, "redis", func(ctx context.Context) error {
		started := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			return err
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(started).Seconds())
		return nil
	})
}

// StartJobStateCollector samples the number of jobs per lifecycle state.
func (m *Metrics) StartJobStateCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	collectEvery(ctx, log, "job_states", func(ctx context.Context) error {
		return m.CollectJobStates(ctx, db)
	})
}

func (m *Metrics) CollectJobStates(ctx context.Context, db *gorm.DB) error {
	if m == nil || db == nil {
		return nil
	}
	var rows []struct {
		State int
		Count int64
	}
	err := db.WithContext(ctx).
		Model(&jobs.Job{}).
		Select("state, count(*) as count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	counts := make(map[jobs.State]float64, 5)
	for _, row := range rows {
		counts[jobs.State(row.State)] = float64(row.Count)
	}
	for s := jobs.StateInitial; s <= jobs.StateCompleted; s++ {
		m.jobsByState.Set(counts[s], s.String())
	}
	return nil
}
