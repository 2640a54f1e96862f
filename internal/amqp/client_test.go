package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/ports"
)

func newTestClient() *Client {
	return &Client{
		exchangeName:  "financas",
		queueName:     "ledger_events",
		reminderQueue: "reminders_due",
		logger:        applog.Discard(),
	}
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"closed", errors.New("connection closed"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestCircuitBreaker(t *testing.T) {
	c := newTestClient()

	if c.isCircuitOpen() {
		t.Fatal("new client must start closed")
	}

	for i := 0; i < maxFailures-1; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatal("circuit opened before reaching the failure threshold")
	}

	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("circuit should open after max failures")
	}

	c.cbMu.Lock()
	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	c.cbMu.Unlock()
	if c.isCircuitOpen() {
		t.Fatal("circuit should move to half-open after the timeout")
	}
	if atomic.LoadInt32(&c.state) != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", c.state)
	}

	c.recordFailure()
	if atomic.LoadInt32(&c.state) != StateOpen {
		t.Fatal("a failure while half-open must reopen the circuit")
	}

	c.recordSuccess()
	if atomic.LoadInt32(&c.state) != StateClosed || atomic.LoadInt64(&c.failureCount) != 0 {
		t.Fatal("success must reset the breaker")
	}
}

func TestPublishWithOpenCircuit(t *testing.T) {
	c := newTestClient()
	atomic.StoreInt32(&c.state, StateOpen)
	c.lastFailure = time.Now()

	err := c.PublishTransactionEvent(context.Background(), ports.ActionCreated, core.Transaction{ID: 1, UserID: 1})
	if err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Fatalf("expected circuit breaker error, got %v", err)
	}
}

func TestPublishWithCancelledContext(t *testing.T) {
	c := newTestClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.PublishReminderDue(ctx, core.DueReminder{Reminder: core.Reminder{ID: 3}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLedgerEventJSON(t *testing.T) {
	msg := NewLedgerEvent(ports.ActionUpdated, core.Transaction{ID: 7, UserID: 2})
	if msg.MessageID == "" {
		t.Fatal("message id must be set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"action":"updated"`) {
		t.Fatalf("unexpected payload %s", data)
	}

	got, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.TransactionID != 7 || got.UserID != 2 || got.Action != ports.ActionUpdated {
		t.Fatalf("decoded %+v", got)
	}

	if _, err := LedgerEventFromJSON([]byte("{bad")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
