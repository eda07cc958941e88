package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/batchprocess-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/batchprocess-backend/internal/domain/jobs"
	"github.com/yungbote/batchprocess-backend/internal/platform/dbctx"
)

func TestStepRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewStepRepo(db, testutil.Logger(t))

	j := testutil.SeedJob(t, ctx, db, "CODE", domain.StateInProgress)

	max, count, err := repo.GetMaxSequence(dbc, j.ID)
	if err != nil || max != 0 || count != 0 {
		t.Fatalf("GetMaxSequence empty: err=%v max=%d count=%d", err, max, count)
	}

	created, err := repo.Create(dbc, []*domain.Step{
		{JobID: j.ID, Sequence: 1, Data: "first"},
		{JobID: j.ID, Sequence: 2, Data: "second"},
		{JobID: j.ID, Sequence: 3, Data: "third"},
	})
	if err != nil || len(created) != 3 {
		t.Fatalf("Create: err=%v len=%d", err, len(created))
	}

	max, count, err = repo.GetMaxSequence(dbc, j.ID)
	if err != nil || max != 3 || count != 3 {
		t.Fatalf("GetMaxSequence: err=%v max=%d count=%d", err, max, count)
	}

	rows, err := repo.ListByJobID(dbc, j.ID)
	if err != nil || len(rows) != 3 {
		t.Fatalf("ListByJobID: err=%v len=%d", err, len(rows))
	}
	for i, r := range rows {
		if r.Sequence != i+1 {
			t.Fatalf("ListByJobID order: idx=%d seq=%d", i, r.Sequence)
		}
	}

	got, err := repo.GetByID(dbc, created[1].ID)
	if err != nil || got == nil || got.Data != "second" {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}

	one, err := repo.FilterNoTracking(dbc, StepFilter{ID: created[0].ID})
	if err != nil || len(one) != 1 {
		t.Fatalf("FilterNoTracking by id: err=%v len=%d", err, len(one))
	}

	all, err := repo.List(dbc, StepListOptions{Limit: 2})
	if err != nil || len(all) != 2 {
		t.Fatalf("List limit: err=%v len=%d", err, len(all))
	}

	n, err := repo.DeleteByJobID(dbc, j.ID)
	if err != nil || n != 3 {
		t.Fatalf("DeleteByJobID: err=%v n=%d", err, n)
	}
}

func TestStepRepoRejectsDuplicateSequence(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewStepRepo(db, testutil.Logger(t))

	j := testutil.SeedJob(t, ctx, db, "CODE", domain.StateInProgress)
	testutil.SeedStep(t, ctx, db, j.ID, 1, "first")

	if _, err := repo.Create(dbc, []*domain.Step{{JobID: j.ID, Sequence: 1, Data: "dup"}}); err == nil {
		t.Fatalf("expected unique violation on (job_id, sequence)")
	}
}

func TestStepRepoReadsDoNotMutate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewStepRepo(db, testutil.Logger(t))

	j := testutil.SeedJob(t, ctx, db, "CODE", domain.StateInProgress)
	s := testutil.SeedStep(t, ctx, db, j.ID, 1, "first")

	for i := 0; i < 3; i++ {
		rows, err := repo.FilterNoTracking(dbc, StepFilter{JobID: j.ID})
		if err != nil || len(rows) != 1 {
			t.Fatalf("FilterNoTracking: err=%v len=%d", err, len(rows))
		}
		rows[0].Data = "mutated in memory"
	}
	got, err := repo.GetByID(dbc, s.ID)
	if err != nil || got == nil || got.Data != "first" {
		t.Fatalf("snapshot read mutated store: err=%v got=%+v", err, got)
	}
	if _, _, err := repo.GetMaxSequence(dbc, uuid.Nil); err != nil {
		t.Fatalf("GetMaxSequence nil id: %v", err)
	}
}
