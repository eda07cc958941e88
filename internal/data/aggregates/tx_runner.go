package aggregates

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/batchprocess-backend/internal/domain/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
)

// TxRunner owns the transaction boundary of one aggregate write.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db   *gorm.DB
	opts []*sql.TxOptions
}

// NewGormTxRunner runs each write in a GORM transaction, optionally with the
// given isolation settings. A db that is already a transaction nests via savepoints.
func NewGormTxRunner(db *gorm.DB, opts ...*sql.TxOptions) TxRunner {
	return &gormTxRunner{db: db, opts: opts}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	switch {
	case fn == nil:
		return nil
	case r == nil || r.db == nil:
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	body := func(tx *gorm.DB) error { return fn(dbctx.Context{Ctx: ctx, Tx: tx}) }
	return r.db.WithContext(ctx).Transaction(body, r.opts...)
}
