package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/memory"
)

type fakeReminderPublisher struct {
	failFor map[int64]bool
	sent    []core.DueReminder
}

func (f *fakeReminderPublisher) PublishReminderDue(_ context.Context, due core.DueReminder) error {
	if f.failFor[due.Reminder.ID] {
		return errors.New("broker down")
	}
	f.sent = append(f.sent, due)
	return nil
}

func TestReminderProcessor(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	mk := func(title string, due time.Time, notify int) core.Reminder {
		r, err := store.CreateReminder(ctx, core.Reminder{UserID: 1, Title: title, DueDate: due, NotifyBefore: notify})
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	tomorrow := mk("Aluguel", time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), 1)
	mk("Longe", time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC), 3)
	early := mk("Seguro", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), 30)
	failing := mk("Falha", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), 0)

	pub := &fakeReminderPublisher{failFor: map[int64]bool{failing.ID: true}}
	p := NewReminderProcessor(store, pub, time.UTC, applog.Discard())

	n, err := p.ProcessDue(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || len(pub.sent) != 2 {
		t.Fatalf("processed %d, sent %+v", n, pub.sent)
	}
	sentIDs := map[int64]bool{}
	for _, d := range pub.sent {
		sentIDs[d.Reminder.ID] = true
	}
	if !sentIDs[tomorrow.ID] || !sentIDs[early.ID] {
		t.Fatalf("unexpected reminders sent %+v", pub.sent)
	}

	// second run only retries the one that failed
	pub.failFor = nil
	pub.sent = nil
	n, err = p.ProcessDue(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || pub.sent[0].Reminder.ID != failing.ID {
		t.Fatalf("second run processed %d: %+v", n, pub.sent)
	}

	n, _ = p.ProcessDue(ctx, now)
	if n != 0 {
		t.Fatalf("reminders must be announced once, got %d", n)
	}
}

func TestReminderProcessorNotInitialized(t *testing.T) {
	p := NewReminderProcessor(nil, nil, nil, applog.Discard())
	if _, err := p.ProcessDue(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
