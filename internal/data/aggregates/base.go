package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

const (
	statusSuccess  = "success"
	statusFailure  = "failure"
	defaultWriteOp = "aggregate.write"
)

// BaseDeps is shared by every aggregate. Zero fields get working defaults.
type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Clock  func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// executeWrite runs fn as one transaction, maps whatever it returns into a
// *domainagg.Error and reports the outcome to the hooks.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = defaultWriteOp
	}
	started := time.Now()
	err := MapError(op, deps.Runner.InTx(ctx, fn))

	status := writeStatus(err)
	switch domainagg.CodeOf(err) {
	case domainagg.CodeConflict:
		deps.Hooks.IncConflict(op)
	case domainagg.CodeRetryable:
		deps.Hooks.IncRetry(op)
	}
	if err != nil {
		deps.Log.Debug("Aggregate write failed", "op", op, "code", status, "error", err)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(started))
	return err
}

// writeStatus is the metric label for an outcome: "success", the error code, or "failure".
func writeStatus(err error) string {
	if err == nil {
		return statusSuccess
	}
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeOf(MapError(defaultWriteOp, err))
	}
	if code == "" {
		return statusFailure
	}
	return string(code)
}
