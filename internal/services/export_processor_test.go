package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/memory"
	"financas/internal/ports"
)

type fakeExporter struct {
	fail     bool
	upserted map[int64]string
	removed  []int64
}

func newFakeExporter() *fakeExporter {
	return &fakeExporter{upserted: make(map[int64]string)}
}

func (f *fakeExporter) UpsertTransaction(_ context.Context, t core.Transaction, category string) error {
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.upserted[t.ID] = category
	return nil
}

func (f *fakeExporter) RemoveTransaction(_ context.Context, id int64) error {
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.removed = append(f.removed, id)
	return nil
}

func seedTransaction(t *testing.T, store *memory.Store, categoryID *int64) core.Transaction {
	t.Helper()
	tx, err := store.CreateTransaction(context.Background(), core.Transaction{
		UserID:      1,
		Type:        core.Expense,
		Amount:      core.Cents(1500),
		Description: "Padaria",
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CategoryID:  categoryID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func TestDefaultExportProcessorConfig(t *testing.T) {
	p := NewExportProcessor(nil, nil, ExportProcessorConfig{}, applog.Discard())
	want := DefaultExportProcessorConfig()
	if p.config != want {
		t.Fatalf("config = %+v, want %+v", p.config, want)
	}
	if p.IsRunning() {
		t.Fatal("processor should not be running initially")
	}
}

func TestProcessPendingExportsAndMarks(t *testing.T) {
	store := memory.New()
	exp := newFakeExporter()
	ctx := context.Background()

	cat := int64(5)
	a := seedTransaction(t, store, &cat)
	b := seedTransaction(t, store, nil)

	p := NewExportProcessor(store, exp, ExportProcessorConfig{BatchSize: 10}, applog.Discard())
	if n := p.ProcessPending(ctx); n != 2 {
		t.Fatalf("exported %d, want 2", n)
	}
	if exp.upserted[a.ID] == "" {
		t.Error("category name should be resolved")
	}
	if exp.upserted[b.ID] != "" {
		t.Error("uncategorized transaction should export an empty category")
	}

	pending, _ := store.PendingExports(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("still pending: %d", len(pending))
	}
}

func TestExportRetriesThenMarksError(t *testing.T) {
	store := memory.New()
	exp := newFakeExporter()
	exp.fail = true
	ctx := context.Background()

	tx := seedTransaction(t, store, nil)
	p := NewExportProcessor(store, exp, ExportProcessorConfig{MaxRetries: 2}, applog.Discard())

	if err := p.HandleEvent(ctx, ports.ActionCreated, tx.ID); err == nil {
		t.Fatal("first failure should be returned for redelivery")
	}
	if err := p.HandleEvent(ctx, ports.ActionCreated, tx.ID); err != nil {
		t.Fatalf("final failure should be absorbed, got %v", err)
	}

	pending, _ := store.PendingExports(ctx, 10)
	if len(pending) != 0 {
		t.Fatal("transaction should leave the pending queue after max retries")
	}
}

func TestHandleEventForDeletedTransaction(t *testing.T) {
	store := memory.New()
	exp := newFakeExporter()
	ctx := context.Background()

	tx := seedTransaction(t, store, nil)
	if err := store.DeleteTransaction(ctx, 1, tx.ID); err != nil {
		t.Fatal(err)
	}

	p := NewExportProcessor(store, exp, ExportProcessorConfig{}, applog.Discard())
	if err := p.HandleEvent(ctx, ports.ActionDeleted, tx.ID); err != nil {
		t.Fatal(err)
	}
	if len(exp.removed) != 1 || exp.removed[0] != tx.ID {
		t.Fatalf("removed = %v", exp.removed)
	}
}

func TestExportProcessorStartStop(t *testing.T) {
	store := memory.New()
	p := NewExportProcessor(store, newFakeExporter(), ExportProcessorConfig{PollInterval: time.Hour}, applog.Discard())
	ctx := context.Background()

	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(ctx); err == nil {
		t.Fatal("expected error when starting twice")
	}
	if err := p.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if p.IsRunning() {
		t.Fatal("processor should be stopped")
	}
	if err := p.Stop(ctx); err != nil {
		t.Fatal("stopping a stopped processor is a no-op")
	}
}
