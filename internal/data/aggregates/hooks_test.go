package aggregates

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/batchprocess-backend/internal/observability"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

func TestObservabilityHooksFeedMetrics(t *testing.T) {
	m := observability.NewMetrics()
	h := NewObservabilityHooks(m, logger.NewNop())

	h.ObserveOperation(opStartJob, "success", 2*time.Millisecond)
	h.IncConflict(opAppendStep)
	h.IncRetry(" " + opTransition + " ")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`batch_aggregate_operations_total{op="Jobs.BatchJob.Start",status="success"} 1.000000`,
		`batch_aggregate_conflicts_total{op="Jobs.BatchJob.AppendStep"} 1.000000`,
		`batch_aggregate_retryable_total{op="Jobs.BatchJob.Transition"} 1.000000`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestObservabilityHooksWithoutDepsAreNoop(t *testing.T) {
	if _, ok := NewObservabilityHooks(nil, nil).(noopHooks); !ok {
		t.Fatalf("expected noop hooks without metrics or logger")
	}
	h := NewObservabilityHooks(nil, logger.NewNop())
	h.ObserveOperation(opStartJob, "success", time.Millisecond)
	h.IncConflict(opStartJob)
}
