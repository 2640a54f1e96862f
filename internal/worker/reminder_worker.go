package worker

import (
	"context"
	"time"

	applog "financas/internal/log"
)

// DueProcessor announces the reminders due as of now.
type DueProcessor interface {
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

// ReminderWorker runs a DueProcessor on startup and then on every tick.
type ReminderWorker struct {
	processor DueProcessor
	interval  time.Duration
	logger    *applog.Logger
}

func NewReminderWorker(processor DueProcessor, interval time.Duration, logger *applog.Logger) *ReminderWorker {
	return &ReminderWorker{
		processor: processor,
		interval:  interval,
		logger:    logger.WithComponent(applog.ComponentReminder),
	}
}

// Run blocks until ctx is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Reminder processor configured", "interval", w.interval)

	w.tick(ctx, time.Now())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			w.tick(ctx, now)
		}
	}
}

func (w *ReminderWorker) tick(ctx context.Context, now time.Time) {
	count, err := w.processor.ProcessDue(ctx, now)
	if err != nil {
		w.logger.ErrorContext(ctx, "Reminder processing failed", applog.FieldError, err)
		return
	}
	w.logger.InfoContext(ctx, "Reminder processing complete",
		"announced", count,
		"next_check", now.Add(w.interval).Format("15:04:05"))
}
