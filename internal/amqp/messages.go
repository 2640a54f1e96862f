package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"financas/internal/core"
	"financas/internal/ports"
)

// LedgerEvent announces that a transaction changed. It carries only ids;
// the consumer reloads the row so a stale message never overwrites newer
// data.
type LedgerEvent struct {
	MessageID     string                  `json:"messageId"`
	Action        ports.TransactionAction `json:"action"`
	TransactionID int64                   `json:"transactionId"`
	UserID        int64                   `json:"userId"`
	Timestamp     time.Time               `json:"timestamp"`
}

func NewLedgerEvent(action ports.TransactionAction, t core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		MessageID:     uuid.NewString(),
		Action:        action,
		TransactionID: t.ID,
		UserID:        t.UserID,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReminderDue is published once per reminder when it enters its notice
// window.
type ReminderDue struct {
	MessageID  string    `json:"messageId"`
	ReminderID int64     `json:"reminderId"`
	UserID     int64     `json:"userId"`
	Title      string    `json:"title"`
	DueDate    time.Time `json:"dueDate"`
	DaysUntil  int       `json:"daysUntil"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewReminderDue(due core.DueReminder) *ReminderDue {
	return &ReminderDue{
		MessageID:  uuid.NewString(),
		ReminderID: due.Reminder.ID,
		UserID:     due.Reminder.UserID,
		Title:      due.Reminder.Title,
		DueDate:    due.Reminder.DueDate,
		DaysUntil:  due.DaysUntil,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *ReminderDue) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
