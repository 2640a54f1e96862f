package services

import (
	"context"
	"fmt"
	"time"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/ports"
	"financas/internal/stats"
)

// ReminderProcessor announces reminders once their notice window opens.
// Each reminder is announced at most once until its due date or notice
// window changes.
type ReminderProcessor struct {
	store     ports.ReminderStore
	publisher ports.ReminderPublisher
	loc       *time.Location
	logger    *applog.Logger
}

func NewReminderProcessor(store ports.ReminderStore, publisher ports.ReminderPublisher, loc *time.Location, logger *applog.Logger) *ReminderProcessor {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderProcessor{
		store:     store,
		publisher: publisher,
		loc:       loc,
		logger:    logger.WithComponent(applog.ComponentReminder),
	}
}

// ProcessDue publishes every reminder due as of now and marks it notified.
// A reminder that fails to publish stays pending for the next run.
func (p *ReminderProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.publisher == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	now = now.In(p.loc)
	horizon := core.DateOf(now, p.loc).AddDays(core.MaxNotifyBefore + 1).In(p.loc)
	pending, err := p.store.PendingReminders(ctx, horizon)
	if err != nil {
		return 0, fmt.Errorf("get pending reminders: %w", err)
	}

	due := stats.DueReminders(pending, now)
	p.logger.InfoContext(ctx, "Processing reminders",
		"pending", len(pending),
		"due", len(due),
		"processing_date", core.DateOf(now, p.loc).String())

	processed := 0
	for _, d := range due {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		if err := p.publisher.PublishReminderDue(ctx, d); err != nil {
			p.logger.ErrorContext(ctx, "Failed to publish reminder",
				applog.FieldEntityID, d.Reminder.ID,
				applog.FieldUserID, d.Reminder.UserID,
				applog.FieldError, err)
			continue
		}

		if err := p.store.MarkReminderNotified(ctx, d.Reminder.ID, now); err != nil {
			// published but not marked: it will be announced again next run
			p.logger.ErrorContext(ctx, "Failed to mark reminder notified",
				applog.FieldEntityID, d.Reminder.ID,
				applog.FieldError, err)
			continue
		}

		processed++
		p.logger.InfoContext(ctx, "Reminder announced",
			applog.FieldEntityID, d.Reminder.ID,
			applog.FieldUserID, d.Reminder.UserID,
			"days_until", d.DaysUntil)
	}

	p.logger.InfoContext(ctx, "Reminder processing complete",
		"processed", processed,
		"total_checked", len(due))

	return processed, nil
}
