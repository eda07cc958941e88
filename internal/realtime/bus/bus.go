package bus

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/batchprocess-backend/internal/domain/jobs"
)

// Event is one lifecycle change of a batch job, fanned out after the
// corresponding transaction committed.
type Event struct {
	Verb      string     `json:"verb"`
	JobID     uuid.UUID  `json:"job_id"`
	SessionID uuid.UUID  `json:"session_id"`
	State     jobs.State `json:"state"`
	Sequence  int        `json:"sequence,omitempty"`
	Data      string     `json:"data,omitempty"`
	At        time.Time  `json:"at"`
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onEvent func(ev Event)) error
	Close() error
}

type noopBus struct{}

// NewNoopBus drops every event. Used when no broker is configured.
func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, Event) error { return nil }

func (noopBus) StartForwarder(context.Context, func(Event)) error { return nil }

func (noopBus) Close() error { return nil }
