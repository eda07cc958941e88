package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"postgres_password", "hunter2",
		"dsn", "postgres://u:p@h/db",
		"job_id", "abc",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	if out[1] != redacted || out[3] != redacted {
		t.Fatalf("secrets not redacted: %+v", out)
	}
	if out[5] != "abc" {
		t.Fatalf("plain value changed: %+v", out)
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key dropped: %+v", out)
	}
}

func TestSanitizeValueNestedMap(t *testing.T) {
	got := sanitizeValue("config", map[string]interface{}{"redis_password": "x", "channel": "c"})
	m, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["redis_password"] != redacted || m["channel"] != "c" {
		t.Fatalf("unexpected map: %+v", m)
	}
}

func TestNewNopDoesNotPanic(t *testing.T) {
	l := NewNop().With("service", "test")
	l.Info("hello", "k", "v")
	l.Error("boom", "error", "x")
	l.Sync()
}

func TestFromZapRedactsInOutput(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).Named("runner").With("redis_password", "pw")
	l.Warn("job failed", "job_id", "j1", "token", "t")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "runner" || e.Level != zapcore.WarnLevel {
		t.Fatalf("unexpected entry: %+v", e.Entry)
	}
	fields := e.ContextMap()
	if fields["redis_password"] != redacted || fields["token"] != redacted || fields["job_id"] != "j1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	if got := levelFromEnv(zapcore.DebugLevel); got != zapcore.WarnLevel {
		t.Fatalf("want warn, got %v", got)
	}
	t.Setenv("LOG_LEVEL", "loud")
	if got := levelFromEnv(zapcore.InfoLevel); got != zapcore.InfoLevel {
		t.Fatalf("bad level must fall back, got %v", got)
	}
}
