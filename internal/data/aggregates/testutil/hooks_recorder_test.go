package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorderKeepsOrder(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Jobs.BatchJob.StartJob", "success", 3*time.Millisecond)
	h.IncConflict("Jobs.BatchJob.AppendStep")
	h.ObserveOperation("Jobs.BatchJob.AppendStep", "conflict", time.Millisecond)
	h.IncRetry("Jobs.BatchJob.Transition")

	evs := h.Events()
	if len(evs) != 4 {
		t.Fatalf("expected 4 events, got %d", len(evs))
	}
	if evs[1].Kind != HookConflict || evs[1].Op != "Jobs.BatchJob.AppendStep" {
		t.Fatalf("unexpected second event: %+v", evs[1])
	}
	if got := h.Statuses(); len(got) != 2 || got[0] != "success" || got[1] != "conflict" {
		t.Fatalf("unexpected statuses: %v", got)
	}
	if h.Count(HookRetry) != 1 || h.Count(HookConflict) != 1 || h.Count(HookOperation) != 2 {
		t.Fatalf("unexpected counts: %+v", evs)
	}
}

func TestHooksRecorderEventsIsACopy(t *testing.T) {
	h := &HooksRecorder{}
	h.IncRetry("op")
	evs := h.Events()
	evs[0].Op = "changed"
	if h.Events()[0].Op != "op" {
		t.Fatalf("recorder state leaked through Events()")
	}
}
