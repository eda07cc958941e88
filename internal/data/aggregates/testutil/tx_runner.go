package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/batchprocess-backend/internal/data/aggregates"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
)

// FailStage selects where a FaultyTxRunner injects its error.
type FailStage int

const (
	FailNever FailStage = iota
	// FailOnBegin returns Err before the body runs.
	FailOnBegin
	// FailOnCommit runs the body, then rolls back and returns Err.
	FailOnCommit
)

// FaultyTxRunner runs aggregate bodies inside a real transaction on DB (or
// with no transaction when DB is nil) and injects Err at Stage.
type FaultyTxRunner struct {
	DB    *gorm.DB
	Stage FailStage
	Err   error

	mu        sync.Mutex
	begins    int
	commits   int
	rollbacks int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.bump(&r.begins)
	if r.Stage == FailOnBegin {
		return r.Err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		if r.Stage == FailOnCommit {
			return r.Err
		}
		return nil
	}

	var err error
	if r.DB == nil {
		err = body(dbctx.Context{Ctx: ctx})
	} else {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return body(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	}
	if err != nil {
		r.bump(&r.rollbacks)
		return err
	}
	r.bump(&r.commits)
	return nil
}

// Counts reports how many transactions were begun, committed and rolled back.
func (r *FaultyTxRunner) Counts() (begins, commits, rollbacks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.begins, r.commits, r.rollbacks
}

func (r *FaultyTxRunner) bump(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
