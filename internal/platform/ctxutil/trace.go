package ctxutil

import (
	"context"
	"strings"
)

type traceDataKey struct{}

type actorKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// WithActor records who triggered the request; it ends up in created_by.
func WithActor(ctx context.Context, actor string) context.Context {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the request actor or fallback when none was set.
func ActorFrom(ctx context.Context, fallback string) string {
	if ctx != nil {
		if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
			return a
		}
	}
	return fallback
}
