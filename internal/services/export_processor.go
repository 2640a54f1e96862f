package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/ports"
)

// ExportProcessorConfig holds configuration for the export processor.
type ExportProcessorConfig struct {
	// PollInterval is how often pending transactions are scanned (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of transactions exported per scan (default: 10)
	BatchSize int

	// MaxRetries is how many failed attempts a transaction gets before it
	// is marked with an export error (default: 3)
	MaxRetries int
}

func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
		MaxRetries:   3,
	}
}

// ExportProcessor mirrors stored transactions into an external ledger.
// Ledger events drive it directly through HandleEvent; the poll loop picks
// up anything still pending, such as rows whose event was lost.
type ExportProcessor struct {
	queue    ports.ExportQueue
	exporter ports.LedgerExporter
	config   ExportProcessorConfig
	logger   *applog.Logger

	attemptsMu sync.Mutex
	attempts   map[int64]int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportProcessor(queue ports.ExportQueue, exporter ports.LedgerExporter, config ExportProcessorConfig, logger *applog.Logger) *ExportProcessor {
	def := DefaultExportProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = def.MaxRetries
	}
	return &ExportProcessor{
		queue:    queue,
		exporter: exporter,
		config:   config,
		logger:   logger.WithComponent(applog.ComponentWorker),
		attempts: make(map[int64]int),
	}
}

// Start begins the poll loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Export processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop ends the poll loop and waits for the current batch to finish.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		p.logger.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.ProcessPending(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessPending(ctx)
		}
	}
}

// ProcessPending exports one batch of pending transactions and reports
// how many succeeded.
func (p *ExportProcessor) ProcessPending(ctx context.Context) int {
	pending, err := p.queue.PendingExports(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to load pending exports", applog.FieldError, err)
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	p.logger.DebugContext(ctx, "Processing export batch", applog.FieldCount, len(pending))

	exported := 0
	for _, t := range pending {
		if ctx.Err() != nil {
			break
		}
		if err := p.export(ctx, t); err != nil {
			p.handleFailure(ctx, t.ID, err)
			continue
		}
		exported++
	}
	return exported
}

// HandleEvent reacts to one ledger event. The row is reloaded so the
// exported data is always the latest; a missing row means it was deleted.
func (p *ExportProcessor) HandleEvent(ctx context.Context, action ports.TransactionAction, transactionID int64) error {
	t, err := p.queue.TransactionByID(ctx, transactionID)
	if errors.Is(err, core.ErrNotFound) {
		if err := p.exporter.RemoveTransaction(ctx, transactionID); err != nil {
			return fmt.Errorf("remove transaction %d: %w", transactionID, err)
		}
		p.logger.InfoContext(ctx, "Removed transaction from ledger export",
			applog.FieldEntityID, transactionID,
			"action", action)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", transactionID, err)
	}

	if err := p.export(ctx, t); err != nil {
		return p.handleFailure(ctx, t.ID, err)
	}
	return nil
}

func (p *ExportProcessor) export(ctx context.Context, t core.Transaction) error {
	category := ""
	if t.CategoryID != nil {
		name, err := p.queue.CategoryName(ctx, *t.CategoryID)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("resolve category: %w", err)
		}
		category = name
	}

	if err := p.exporter.UpsertTransaction(ctx, t, category); err != nil {
		return fmt.Errorf("export transaction %d: %w", t.ID, err)
	}

	if err := p.queue.MarkExported(ctx, t.ID); err != nil {
		// exported but not marked: the next scan exports it again, which
		// the upsert tolerates
		p.logger.WarnContext(ctx, "Failed to mark transaction exported",
			applog.FieldEntityID, t.ID, applog.FieldError, err)
	}
	p.resetAttempts(t.ID)

	p.logger.InfoContext(ctx, "Exported transaction",
		applog.FieldEntityID, t.ID,
		applog.FieldUserID, t.UserID,
		applog.FieldAmountCents, t.Amount.Cents)
	return nil
}

// handleFailure counts a failed attempt. Past MaxRetries the row is marked
// with an export error and nil is returned so the event is not redelivered.
func (p *ExportProcessor) handleFailure(ctx context.Context, id int64, exportErr error) error {
	p.attemptsMu.Lock()
	p.attempts[id]++
	attempt := p.attempts[id]
	p.attemptsMu.Unlock()

	p.logger.WarnContext(ctx, "Export failed",
		applog.FieldEntityID, id,
		"attempt", attempt,
		applog.FieldError, exportErr)

	if attempt < p.config.MaxRetries {
		return exportErr
	}

	if err := p.queue.MarkExportError(ctx, id); err != nil {
		p.logger.ErrorContext(ctx, "Failed to mark export error",
			applog.FieldEntityID, id, applog.FieldError, err)
	}
	p.resetAttempts(id)
	p.logger.ErrorContext(ctx, "Export failed permanently after max retries",
		applog.FieldEntityID, id,
		"attempts", attempt)
	return nil
}

func (p *ExportProcessor) resetAttempts(id int64) {
	p.attemptsMu.Lock()
	delete(p.attempts, id)
	p.attemptsMu.Unlock()
}
