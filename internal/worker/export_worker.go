// Package worker runs the background loops: mirroring the ledger into the
// spreadsheet and announcing due reminders.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/amqp"
	applog "financas/internal/log"
	"financas/internal/ports"
)

// EventHandler exports the transaction a ledger event refers to.
type EventHandler interface {
	HandleEvent(ctx context.Context, action ports.TransactionAction, transactionID int64) error
	ProcessPending(ctx context.Context) int
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// LedgerConsumer delivers ledger events until ctx ends.
type LedgerConsumer interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(context.Context, *amqp.LedgerEvent) error) error
}

// ExportWorker mirrors ledger events into the spreadsheet. The consumer is
// optional; without it the worker relies on the pending scan alone.
type ExportWorker struct {
	processor EventHandler
	consumer  LedgerConsumer
	logger    *applog.Logger

	// startupBatches bounds the catch-up pass at startup.
	startupBatches int
	retryDelay     time.Duration
}

func NewExportWorker(processor EventHandler, consumer LedgerConsumer, logger *applog.Logger) *ExportWorker {
	return &ExportWorker{
		processor:      processor,
		consumer:       consumer,
		logger:         logger.WithComponent(applog.ComponentWorker),
		startupBatches: 5,
		retryDelay:     5 * time.Second,
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		applog.FieldMessageID, msg.MessageID,
		applog.FieldEntityID, msg.TransactionID,
		"action", msg.Action)

	if err := w.processor.HandleEvent(ctx, msg.Action, msg.TransactionID); err != nil {
		return fmt.Errorf("export transaction %d: %w", msg.TransactionID, err)
	}
	return nil
}

// StartupExportCheck exports transactions left pending while the worker
// was down.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) int {
	total := 0
	for i := 0; i < w.startupBatches; i++ {
		n := w.processor.ProcessPending(ctx)
		total += n
		if n == 0 {
			break
		}
	}
	if total == 0 {
		w.logger.InfoContext(ctx, "No pending exports found on startup")
	} else {
		w.logger.InfoContext(ctx, "Startup export completed", applog.FieldCount, total)
	}
	return total
}

// Run blocks until ctx is cancelled. It keeps the consumer alive,
// restarting it after failures, and runs the pending scan alongside.
func (w *ExportWorker) Run(ctx context.Context) error {
	w.StartupExportCheck(ctx)

	if err := w.processor.Start(ctx); err != nil {
		return fmt.Errorf("start export processor: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consume(gctx)
		})
	} else {
		w.logger.InfoContext(ctx, "Skipping AMQP consumption - no consumer configured")
	}

	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return w.processor.Stop(stopCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *ExportWorker) consume(ctx context.Context) error {
	for {
		err := w.consumer.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.ErrorContext(ctx, "Message consumption stopped, restarting",
			applog.FieldError, err,
			"retry_in", w.retryDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.retryDelay):
		}
	}
}
