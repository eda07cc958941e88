package observability

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/batchprocess-backend/internal/platform/envutil"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	lifecycleVerbs  *CounterVec
	runnerChunks    *CounterVec
	runnerRecords   *Counter
	eventsPublished *CounterVec

	jobsByState *GaugeVec
	dbStats     *GaugeVec
	redisUp     *Gauge
	redisPing   *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	d := envutil.Duration("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Init returns the process-wide metrics registry, or nil when METRICS_ENABLED is off.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// NewMetrics builds an unregistered metrics set.
func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("batch_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"batch_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("batch_api_inflight_requests", "In-flight API requests."),

		aggregateOps: NewCounterVec("batch_aggregate_operations_total", "Aggregate write operations by op/status.", []string{"op", "status"}),
		aggregateLatency: NewHistogramVec(
			"batch_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds by op/status.",
			[]string{"op", "status"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		),
		aggregateConflicts: NewCounterVec("batch_aggregate_conflicts_total", "Aggregate writes rejected by a concurrent change.", []string{"op"}),
		aggregateRetries:   NewCounterVec("batch_aggregate_retryable_total", "Aggregate writes that failed with a retryable error.", []string{"op"}),

		lifecycleVerbs:  NewCounterVec("batch_lifecycle_verbs_total", "Lifecycle verbs by verb/status.", []string{"verb", "status"}),
		runnerChunks:    NewCounterVec("batch_runner_chunks_total", "Runner chunks by status.", []string{"status"}),
		runnerRecords:   NewCounter("batch_runner_records_total", "Records processed by the runner."),
		eventsPublished: NewCounterVec("batch_events_published_total", "Lifecycle events published by status.", []string{"status"}),

		jobsByState: NewGaugeVec("batch_jobs", "Jobs by state.", []string{"state"}),
		dbStats:     NewGaugeVec("batch_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:     NewGauge("batch_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing:   NewGauge("batch_redis_ping_seconds", "Last Redis ping latency in seconds."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	collectors := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.lifecycleVerbs, m.runnerChunks, m.runnerRecords, m.eventsPublished,
		m.jobsByState, m.dbStats, m.redisUp, m.redisPing,
	}
	for _, c := range collectors {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.Inc(orUnknown(method), orUnknown(route), orUnknown(status))
	m.apiLatency.Observe(dur.Seconds(), orUnknown(method), orUnknown(route), orUnknown(status))
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(orUnknown(op), orUnknown(status))
	m.aggregateLatency.Observe(dur.Seconds(), orUnknown(op), orUnknown(status))
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(orUnknown(op))
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(orUnknown(op))
}

func (m *Metrics) IncLifecycleVerb(verb, status string) {
	if m == nil {
		return
	}
	m.lifecycleVerbs.Inc(orUnknown(verb), orUnknown(status))
}

func (m *Metrics) ObserveRunnerChunk(status string, records int) {
	if m == nil {
		return
	}
	m.runnerChunks.Inc(orUnknown(status))
	if records > 0 {
		m.runnerRecords.Add(float64(records))
	}
}

func (m *Metrics) IncEventPublished(status string) {
	if m == nil {
		return
	}
	m.eventsPublished.Inc(orUnknown(status))
}

// LifecycleVerbCount reports the counter value for one verb/status pair.
func (m *Metrics) LifecycleVerbCount(verb, status string) float64 {
	if m == nil {
		return 0
	}
	return m.lifecycleVerbs.Value(verb, status)
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
