package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"financas/internal/amqp"
	applog "financas/internal/log"
	"financas/internal/ports"
)

type fakeProcessor struct {
	mu      sync.Mutex
	pending []int
	handled []int64
	err     error
	started atomic.Bool
	stopped atomic.Bool
}

func (f *fakeProcessor) HandleEvent(_ context.Context, _ ports.TransactionAction, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.handled = append(f.handled, id)
	return nil
}

func (f *fakeProcessor) ProcessPending(context.Context) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return 0
	}
	n := f.pending[0]
	f.pending = f.pending[1:]
	return n
}

func (f *fakeProcessor) Start(context.Context) error { f.started.Store(true); return nil }
func (f *fakeProcessor) Stop(context.Context) error { f.stopped.Store(true); return nil }

type fakeConsumer struct {
	events []*amqp.LedgerEvent
	calls  atomic.Int32
}

func (f *fakeConsumer) ConsumeLedgerEvents(ctx context.Context, handler func(context.Context, *amqp.LedgerEvent) error) error {
	if f.calls.Add(1) > 1 {
		<-ctx.Done()
		return ctx.Err()
	}
	for _, e := range f.events {
		if err := handler(ctx, e); err != nil {
			return err
		}
	}
	return errors.New("channel closed")
}

func TestStartupExportCheckDrainsBatches(t *testing.T) {
	p := &fakeProcessor{pending: []int{10, 10, 3}}
	w := NewExportWorker(p, nil, applog.Discard())

	if got := w.StartupExportCheck(context.Background()); got != 23 {
		t.Fatalf("exported %d, want 23", got)
	}
}

func TestHandleLedgerEventWrapsErrors(t *testing.T) {
	p := &fakeProcessor{err: errors.New("boom")}
	w := NewExportWorker(p, nil, applog.Discard())

	err := w.HandleLedgerEvent(context.Background(), &amqp.LedgerEvent{TransactionID: 4, Action: ports.ActionCreated})
	if err == nil || !errors.Is(err, p.err) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRunConsumesAndRestarts(t *testing.T) {
	p := &fakeProcessor{}
	c := &fakeConsumer{events: []*amqp.LedgerEvent{
		{TransactionID: 1, Action: ports.ActionCreated},
		{TransactionID: 2, Action: ports.ActionDeleted},
	}}
	w := NewExportWorker(p, c, applog.Discard())
	w.retryDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for c.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("consumer was not restarted")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if !p.started.Load() || !p.stopped.Load() {
		t.Fatal("processor should be started and stopped")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.handled) != 2 {
		t.Fatalf("handled %v", p.handled)
	}
}

type countingDue struct {
	calls atomic.Int32
}

func (c *countingDue) ProcessDue(context.Context, time.Time) (int, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestReminderWorkerRunsImmediately(t *testing.T) {
	c := &countingDue{}
	w := NewReminderWorker(c, time.Hour, applog.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for c.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("processor was not run on startup")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}
