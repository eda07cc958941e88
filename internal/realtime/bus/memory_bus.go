package bus

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBus delivers events to in-process forwarders and keeps a copy of
// everything published.
type MemoryBus struct {
	mu     sync.Mutex
	events []Event
	subs   []func(Event)
	closed bool
}

func NewMemoryBus() *MemoryBus { return &MemoryBus{} }

func (b *MemoryBus) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus closed")
	}
	b.events = append(b.events, ev)
	subs := append([]func(Event){}, b.subs...)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onEvent func(ev Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, onEvent)
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = nil
	return nil
}

// Events returns a snapshot of everything published so far.
func (b *MemoryBus) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}
