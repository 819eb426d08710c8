package generation

import (
	"context"
	"testing"
	"time"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos/testutil"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
)

func txContext(t *testing.T) dbctx.Context {
	t.Helper()
	gdb := testutil.DB(t)
	return dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
}

func TestListRecentOrder(t *testing.T) {
	dbc := txContext(t)
	repo := NewLogRepo(testutil.DB(t), testutil.Logger(t))

	now := time.Now()
	logs := []*types.GenerationLog{
		{Type: "product_ingestion", Status: types.GenerationStatusCompleted, StartedAt: now.Add(-3 * time.Hour)},
		{Type: "product_ingestion", Status: types.GenerationStatusCompleted, StartedAt: now.Add(-1 * time.Hour)},
		{Type: "product_ingestion", Status: types.GenerationStatusFailed, StartedAt: now.Add(-2 * time.Hour)},
	}
	if _, err := repo.Create(dbc, logs); err != nil {
		t.Fatalf("create logs: %v", err)
	}

	recent, err := repo.ListRecent(dbc, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if !recent[0].StartedAt.After(recent[1].StartedAt) {
		t.Fatalf("not ordered by started_at desc: %v then %v", recent[0].StartedAt, recent[1].StartedAt)
	}
}

func TestFailStaleRunning(t *testing.T) {
	dbc := txContext(t)
	repo := NewLogRepo(testutil.DB(t), testutil.Logger(t))

	now := time.Now()
	stale := &types.GenerationLog{Type: "product_ingestion", Status: types.GenerationStatusRunning, StartedAt: now.Add(-2 * time.Hour)}
	fresh := &types.GenerationLog{Type: "product_ingestion", Status: types.GenerationStatusRunning, StartedAt: now.Add(-time.Minute)}
	finished := &types.GenerationLog{Type: "product_ingestion", Status: types.GenerationStatusCompleted, StartedAt: now.Add(-3 * time.Hour)}
	if _, err := repo.Create(dbc, []*types.GenerationLog{stale, fresh, finished}); err != nil {
		t.Fatalf("create logs: %v", err)
	}

	closed, err := repo.FailStaleRunning(dbc, time.Hour)
	if err != nil {
		t.Fatalf("FailStaleRunning: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	reloaded, err := repo.GetByID(dbc, stale.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload stale: %v", err)
	}
	if reloaded.Status != types.GenerationStatusFailed || reloaded.CompletedAt == nil {
		t.Fatalf("stale row not closed: %+v", reloaded)
	}

	stillRunning, err := repo.GetByID(dbc, fresh.ID)
	if err != nil || stillRunning == nil {
		t.Fatalf("reload fresh: %v", err)
	}
	if stillRunning.Status != types.GenerationStatusRunning {
		t.Fatalf("fresh row touched: %+v", stillRunning)
	}
}

func TestFailStaleRunningZeroCutoffClosesEverything(t *testing.T) {
	dbc := txContext(t)
	repo := NewLogRepo(testutil.DB(t), testutil.Logger(t))

	row := &types.GenerationLog{Type: "product_ingestion", Status: types.GenerationStatusRunning, StartedAt: time.Now().Add(-time.Second)}
	if _, err := repo.Create(dbc, []*types.GenerationLog{row}); err != nil {
		t.Fatalf("create: %v", err)
	}

	closed, err := repo.FailStaleRunning(dbc, 0)
	if err != nil {
		t.Fatalf("FailStaleRunning: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}
}
