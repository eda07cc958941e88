package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/batchprocess-backend/internal/data/aggregates"
)

type HookKind string

const (
	HookOperation HookKind = "operation"
	HookConflict  HookKind = "conflict"
	HookRetry     HookKind = "retry"
)

// HookEvent is one signal seen by a HooksRecorder, in arrival order.
type HookEvent struct {
	Kind     HookKind
	Op       string
	Status   string
	Duration time.Duration
}

// HooksRecorder is an aggregates.Hooks that keeps every signal for assertions.
type HooksRecorder struct {
	mu     sync.Mutex
	events []HookEvent
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.add(HookEvent{Kind: HookOperation, Op: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.add(HookEvent{Kind: HookConflict, Op: name})
}

func (h *HooksRecorder) IncRetry(name string) {
	h.add(HookEvent{Kind: HookRetry, Op: name})
}

func (h *HooksRecorder) add(ev HookEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

// Events returns a copy of everything recorded so far.
func (h *HooksRecorder) Events() []HookEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HookEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Statuses lists the status of every finished operation, in order.
func (h *HooksRecorder) Statuses() []string {
	var out []string
	for _, ev := range h.Events() {
		if ev.Kind == HookOperation {
			out = append(out, ev.Status)
		}
	}
	return out
}

// Count returns how many signals of kind were recorded.
func (h *HooksRecorder) Count(kind HookKind) int {
	n := 0
	for _, ev := range h.Events() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
