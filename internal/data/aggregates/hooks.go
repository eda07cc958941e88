package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

// Hooks receives one ObserveOperation per aggregate write, plus IncConflict or
// IncRetry when the mapped error carries that code.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type observabilityHooks struct {
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewObservabilityHooks feeds aggregate signals into metrics and warns about
// lost races in the log. Either dependency may be nil.
func NewObservabilityHooks(metrics *observability.Metrics, log *logger.Logger) Hooks {
	if metrics == nil && log == nil {
		return noopHooks{}
	}
	if log != nil {
		log = log.With("component", "AggregateHooks")
	}
	return &observabilityHooks{metrics: metrics, log: log}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncConflict(name string) {
	name = strings.TrimSpace(name)
	h.metrics.IncAggregateConflict(name)
	if h.log != nil {
		h.log.Warn("Concurrent batch job write lost", "op", name)
	}
}

func (h *observabilityHooks) IncRetry(name string) {
	name = strings.TrimSpace(name)
	h.metrics.IncAggregateRetry(name)
	if h.log != nil {
		h.log.Warn("Batch job write hit a transient store error", "op", name)
	}
}
