// Package ports declares the interfaces between the services and their
// adapters: the stores, the event publisher and the spreadsheet exporter.
package ports

import (
	"context"
	"time"

	"financas/internal/core"
)

// TransactionFilter narrows ListTransactions. Zero values do not filter.
// From and To are inclusive.
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	Type       core.TransactionType
	CategoryID *int64
	Limit      int
}

// Ports for outbound adapters. Every store method is scoped to a user;
// rows owned by someone else behave as missing (core.ErrNotFound).
type (
	AccountStore interface {
		ListAccounts(ctx context.Context, userID int64) ([]core.Account, error)
		GetAccount(ctx context.Context, userID, id int64) (core.Account, error)
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
		UpdateAccount(ctx context.Context, a core.Account) (core.Account, error)
		DeleteAccount(ctx context.Context, userID, id int64) error
	}

	CreditCardStore interface {
		ListCreditCards(ctx context.Context, userID int64) ([]core.CreditCard, error)
		GetCreditCard(ctx context.Context, userID, id int64) (core.CreditCard, error)
		CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
		UpdateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
		DeleteCreditCard(ctx context.Context, userID, id int64) error
	}

	// CategoryStore lists the user's own categories together with the
	// shared defaults.
	CategoryStore interface {
		ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
		GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, userID, id int64) error
	}

	// TransactionStore returns transactions newest first.
	TransactionStore interface {
		ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id int64) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
		GetBudget(ctx context.Context, userID, id int64) (core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, userID, id int64) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
		GetGoal(ctx context.Context, userID, id int64) (core.Goal, error)
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		DeleteGoal(ctx context.Context, userID, id int64) error
	}

	// InvestmentStore returns positions by purchase date, newest first.
	InvestmentStore interface {
		ListInvestments(ctx context.Context, userID int64) ([]core.InvestmentPosition, error)
		GetInvestment(ctx context.Context, userID, id int64) (core.InvestmentPosition, error)
		CreateInvestment(ctx context.Context, i core.InvestmentPosition) (core.InvestmentPosition, error)
		UpdateInvestment(ctx context.Context, i core.InvestmentPosition) (core.InvestmentPosition, error)
		DeleteInvestment(ctx context.Context, userID, id int64) error
	}

	ReminderStore interface {
		ListReminders(ctx context.Context, userID int64) ([]core.Reminder, error)
		GetReminder(ctx context.Context, userID, id int64) (core.Reminder, error)
		CreateReminder(ctx context.Context, r core.Reminder) (core.Reminder, error)
		UpdateReminder(ctx context.Context, r core.Reminder) (core.Reminder, error)
		DeleteReminder(ctx context.Context, userID, id int64) error

		// PendingReminders returns open, not yet notified reminders of every
		// user whose due date is on or before dueBefore.
		PendingReminders(ctx context.Context, dueBefore time.Time) ([]core.Reminder, error)
		MarkReminderNotified(ctx context.Context, id int64, at time.Time) error
	}

	// SettingsStore returns core.ErrNotFound for users without settings.
	SettingsStore interface {
		GetSettings(ctx context.Context, userID int64) (core.UserSettings, error)
		SaveSettings(ctx context.Context, s core.UserSettings) (core.UserSettings, error)
		// DeleteUserData removes every row owned by the user.
		DeleteUserData(ctx context.Context, userID int64) error
	}

	// ExportQueue tracks which transactions still have to be mirrored to
	// the spreadsheet. It is not user scoped.
	ExportQueue interface {
		PendingExports(ctx context.Context, limit int) ([]core.Transaction, error)
		TransactionByID(ctx context.Context, id int64) (core.Transaction, error)
		CategoryName(ctx context.Context, id int64) (string, error)
		MarkExported(ctx context.Context, id int64) error
		MarkExportError(ctx context.Context, id int64) error
	}

	// Store is everything a backend provides.
	Store interface {
		AccountStore
		CreditCardStore
		CategoryStore
		TransactionStore
		BudgetStore
		GoalStore
		InvestmentStore
		ReminderStore
		SettingsStore
		ExportQueue
		Ping(ctx context.Context) error
		Close() error
	}
)

// Event ports.
type (
	TransactionAction string

	TransactionPublisher interface {
		PublishTransactionEvent(ctx context.Context, action TransactionAction, t core.Transaction) error
	}

	ReminderPublisher interface {
		PublishReminderDue(ctx context.Context, due core.DueReminder) error
	}

	// LedgerExporter mirrors transactions into an external ledger.
	LedgerExporter interface {
		UpsertTransaction(ctx context.Context, t core.Transaction, category string) error
		RemoveTransaction(ctx context.Context, id int64) error
	}
)

const (
	ActionCreated TransactionAction = "created"
	ActionUpdated TransactionAction = "updated"
	ActionDeleted TransactionAction = "deleted"
)
