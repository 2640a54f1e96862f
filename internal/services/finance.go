package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/ports"
)

// DefaultTransactionLimit caps transactions.list when no limit is given.
const DefaultTransactionLimit = 100

// Invalidator drops derived data for a user after a mutation.
type Invalidator interface {
	InvalidateUser(userID int64)
}

// FinanceService owns every user-scoped mutation. Transaction writes are
// stored first and announced afterwards; a failed announcement is logged and
// never fails the request.
type FinanceService struct {
	store       ports.Store
	publisher   ports.TransactionPublisher
	invalidator Invalidator
	loc         *time.Location
	logger      *applog.Logger
	events      *applog.StructuredLogger
}

type FinanceOption func(*FinanceService)

// WithPublisher announces transaction changes on p.
func WithPublisher(p ports.TransactionPublisher) FinanceOption {
	return func(s *FinanceService) { s.publisher = p }
}

// WithInvalidator is called with the user id after every successful mutation.
func WithInvalidator(inv Invalidator) FinanceOption {
	return func(s *FinanceService) { s.invalidator = inv }
}

// WithLocation sets the zone calendar dates from clients are anchored in.
func WithLocation(loc *time.Location) FinanceOption {
	return func(s *FinanceService) { s.loc = loc }
}

func NewFinanceService(store ports.Store, logger *applog.Logger, opts ...FinanceOption) *FinanceService {
	s := &FinanceService{
		store:  store,
		loc:    time.UTC,
		logger: logger.WithComponent(applog.ComponentFinance),
	}
	s.events = applog.NewStructuredLogger(s.logger)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FinanceService) changed(userID int64) {
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(userID)
	}
}

// Accounts

func (s *FinanceService) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

func (s *FinanceService) CreateAccount(ctx context.Context, userID int64, in AccountInput) (core.Account, error) {
	a := core.Account{UserID: userID, Type: core.Checking, Currency: "BRL", IncludeInTotal: true, IsActive: true}
	in.apply(&a)
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.changed(userID)
	return created, nil
}

func (s *FinanceService) UpdateAccount(ctx context.Context, userID int64, in UpdateAccountInput) (core.Account, error) {
	a, err := s.store.GetAccount(ctx, userID, in.ID)
	if err != nil {
		return core.Account{}, err
	}
	in.apply(&a)
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	updated, err := s.store.UpdateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account %d: %w", in.ID, err)
	}
	s.changed(userID)
	return updated, nil
}

func (s *FinanceService) DeleteAccount(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteAccount(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

// Credit cards

func (s *FinanceService) ListCreditCards(ctx context.Context, userID int64) ([]core.CreditCard, error) {
	return s.store.ListCreditCards(ctx, userID)
}

func (s *FinanceService) CreateCreditCard(ctx context.Context, userID int64, in CreditCardInput) (core.CreditCard, error) {
	c := core.CreditCard{UserID: userID, IsActive: true}
	in.apply(&c)
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	created, err := s.store.CreateCreditCard(ctx, c)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("create credit card: %w", err)
	}
	s.changed(userID)
	return created, nil
}

func (s *FinanceService) UpdateCreditCard(ctx context.Context, userID int64, in UpdateCreditCardInput) (core.CreditCard, error) {
	c, err := s.store.GetCreditCard(ctx, userID, in.ID)
	if err != nil {
		return core.CreditCard{}, err
	}
	in.apply(&c)
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	updated, err := s.store.UpdateCreditCard(ctx, c)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("update credit card %d: %w", in.ID, err)
	}
	s.changed(userID)
	return updated, nil
}

func (s *FinanceService) DeleteCreditCard(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteCreditCard(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

// Categories

func (s *FinanceService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

func (s *FinanceService) CreateCategory(ctx context.Context, userID int64, in CategoryInput) (core.Category, error) {
	c := core.Category{UserID: userID}
	in.apply(&c)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.changed(userID)
	return created, nil
}

// editableCategory loads a category the user may change. Shared defaults
// are visible but read-only.
func (s *FinanceService) editableCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.IsDefault || c.UserID != userID {
		return core.Category{}, core.ErrDefaultReadOnly
	}
	return c, nil
}

func (s *FinanceService) UpdateCategory(ctx context.Context, userID int64, in UpdateCategoryInput) (core.Category, error) {
	c, err := s.editableCategory(ctx, userID, in.ID)
	if err != nil {
		return core.Category{}, err
	}
	in.apply(&c)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	updated, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", in.ID, err)
	}
	s.changed(userID)
	return updated, nil
}

func (s *FinanceService) DeleteCategory(ctx context.Context, userID, id int64) error {
	if _, err := s.editableCategory(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

// Transactions

func (s *FinanceService) ListTransactions(ctx context.Context, userID int64, in ListTransactionsInput) ([]core.Transaction, error) {
	if in.Type != "" && !in.Type.IsValid() {
		return nil, fmt.Errorf("transaction %w %q", core.ErrInvalidType, in.Type)
	}
	if in.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", core.ErrInvalidArgument)
	}
	f := ports.TransactionFilter{Type: in.Type, CategoryID: in.CategoryID, Limit: in.Limit}
	if f.Limit == 0 {
		f.Limit = DefaultTransactionLimit
	}
	if in.StartDate != nil {
		from := in.StartDate.In(s.loc)
		f.From = &from
	}
	if in.EndDate != nil {
		// inclusive: up to the last instant of the end day
		to := in.EndDate.AddDays(1).In(s.loc).Add(-time.Nanosecond)
		f.To = &to
	}
	return s.store.ListTransactions(ctx, userID, f)
}

func (s *FinanceService) CreateTransaction(ctx context.Context, userID int64, in TransactionInput) (core.Transaction, error) {
	t := core.Transaction{UserID: userID, IsPaid: true}
	in.apply(&t, s.loc)
	if err := s.checkTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.events.LogTransactionSaved(ctx, applog.OpCreate, transactionInfo(created))
	s.publish(ctx, ports.ActionCreated, created)
	s.changed(userID)
	return created, nil
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, userID int64, in UpdateTransactionInput) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, in.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	in.apply(&t, s.loc)
	if err := s.checkTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", in.ID, err)
	}
	s.events.LogTransactionSaved(ctx, applog.OpUpdate, transactionInfo(updated))
	s.publish(ctx, ports.ActionUpdated, updated)
	s.changed(userID)
	return updated, nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, ports.ActionDeleted, t)
	s.changed(userID)
	return nil
}

// checkTransaction validates t and makes sure every referenced row belongs
// to the same user.
func (s *FinanceService) checkTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	refs := []struct {
		id    *int64
		field string
		get   func(context.Context, int64, int64) error
	}{
		{t.CategoryID, "categoryId", func(ctx context.Context, u, id int64) error { _, err := s.store.GetCategory(ctx, u, id); return err }},
		{t.SubcategoryID, "subcategoryId", func(ctx context.Context, u, id int64) error { _, err := s.store.GetCategory(ctx, u, id); return err }},
		{t.AccountID, "accountId", func(ctx context.Context, u, id int64) error { _, err := s.store.GetAccount(ctx, u, id); return err }},
		{t.ToAccountID, "toAccountId", func(ctx context.Context, u, id int64) error { _, err := s.store.GetAccount(ctx, u, id); return err }},
		{t.CreditCardID, "creditCardId", func(ctx context.Context, u, id int64) error { _, err := s.store.GetCreditCard(ctx, u, id); return err }},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if err := ref.get(ctx, t.UserID, *ref.id); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("%w: %s %d does not exist", core.ErrInvalidArgument, ref.field, *ref.id)
			}
			return err
		}
	}
	return nil
}

func (s *FinanceService) publish(ctx context.Context, action ports.TransactionAction, t core.Transaction) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No publisher configured, skipping ledger event", applog.FieldEntityID, t.ID)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, action, t); err != nil {
		s.events.LogError(ctx, "Failed to publish ledger event", err, applog.ComponentAMQP, applog.OpPublish,
			applog.NewFields().WithEntity("transaction", t.ID).WithUser(t.UserID))
	}
}

func transactionInfo(t core.Transaction) applog.TransactionInfo {
	return applog.TransactionInfo{ID: t.ID, UserID: t.UserID, Type: string(t.Type), AmountCents: t.Amount.Cents}
}

// Budgets

func (s *FinanceService) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

func (s *FinanceService) CreateBudget(ctx context.Context, userID int64, in BudgetInput) (core.Budget, error) {
	b := core.Budget{UserID: userID, Period: core.Monthly, AlertThreshold: 80, IsActive: true}
	in.apply(&b, s.loc)
	if err := s.checkBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	s.changed(userID)
	return created, nil
}

func (s *FinanceService) UpdateBudget(ctx context.Context, userID int64, in UpdateBudgetInput) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx, userID, in.ID)
	if err != nil {
		return core.Budget{}, err
	}
	in.apply(&b, s.loc)
	if err := s.checkBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	updated, err := s.store.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", in.ID, err)
	}
	s.changed(userID)
	return updated, nil
}

func (s *FinanceService) checkBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.CategoryID == nil {
		return nil
	}
	if _, err := s.store.GetCategory(ctx, b.UserID, *b.CategoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: categoryId %d does not exist", core.ErrInvalidArgument, *b.CategoryID)
		}
		return err
	}
	return nil
}

func (s *FinanceService) DeleteBudget(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

// Goals

func (s *FinanceService) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	return s.store.ListGoals(ctx, userID)
}

func (s *FinanceService) CreateGoal(ctx context.Context, userID int64, in GoalInput) (core.Goal, error) {
	g := core.Goal{UserID: userID}
	in.apply(&g, s.loc)
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	created, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.changed(userID)
	return created, nil
}

func (s *FinanceService) UpdateGoal(ctx context.Context, userID int64, in UpdateGoalInput) (core.Goal, error) {
	g, err := s.store.GetGoal(ctx, userID, in.ID)
	if err != nil {
		return core.Goal{}, err
	}
	in.apply(&g, s.loc)
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	updated, err := s.store.UpdateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal %d: %w", in.ID, err)
	}
	s.changed(userID)
	return updated, nil
}

func (s *FinanceService) DeleteGoal(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteGoal(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

// Investments

func (s *FinanceService) ListInvestments(ctx context.Context, userID int64) ([]core.InvestmentPosition, error) {
	return s.store.ListInvestments(ctx, userID)
}

func (s *FinanceService) CreateInvestment(ctx context.Context, userID int64, in InvestmentInput) (core.InvestmentPosition, error) {
	i := core.InvestmentPosition{UserID: userID}
	in.apply(&i, s.loc)
	if in.CurrentAmount == nil {
		i.CurrentAmount = i.InitialAmount
	}
	if err := i.Validate(); err != nil {
		return core.InvestmentPosition{}, err
	}
	created, err := s.store.CreateInvestment(ctx, i)
	if err != nil {
		return core.InvestmentPosition{}, fmt.Errorf("create investment: %w", err)
	}
	s.changed(userID)
	return created, nil
}

func (s *FinanceService) UpdateInvestment(ctx context.Context, userID int64, in UpdateInvestmentInput) (core.InvestmentPosition, error) {
	i, err := s.store.GetInvestment(ctx, userID, in.ID)
	if err != nil {
		return core.InvestmentPosition{}, err
	}
	in.apply(&i, s.loc)
	if err := i.Validate(); err != nil {
		return core.InvestmentPosition{}, err
	}
	updated, err := s.store.UpdateInvestment(ctx, i)
	if err != nil {
		return core.InvestmentPosition{}, fmt.Errorf("update investment %d: %w", in.ID, err)
	}
	s.changed(userID)
	return updated, nil
}

func (s *FinanceService) DeleteInvestment(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteInvestment(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

// Reminders

func (s *FinanceService) ListReminders(ctx context.Context, userID int64) ([]core.Reminder, error) {
	return s.store.ListReminders(ctx, userID)
}

func (s *FinanceService) CreateReminder(ctx context.Context, userID int64, in ReminderInput) (core.Reminder, error) {
	r := core.Reminder{UserID: userID, NotifyBefore: 1}
	in.apply(&r, s.loc)
	if err := r.Validate(); err != nil {
		return core.Reminder{}, err
	}
	created, err := s.store.CreateReminder(ctx, r)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	s.changed(userID)
	return created, nil
}

func (s *FinanceService) UpdateReminder(ctx context.Context, userID int64, in UpdateReminderInput) (core.Reminder, error) {
	r, err := s.store.GetReminder(ctx, userID, in.ID)
	if err != nil {
		return core.Reminder{}, err
	}
	in.apply(&r, s.loc)
	if err := r.Validate(); err != nil {
		return core.Reminder{}, err
	}
	updated, err := s.store.UpdateReminder(ctx, r)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("update reminder %d: %w", in.ID, err)
	}
	s.changed(userID)
	return updated, nil
}

func (s *FinanceService) DeleteReminder(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteReminder(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

// Settings

// GetSettings returns the user's settings, creating the defaults on first
// access.
func (s *FinanceService) GetSettings(ctx context.Context, userID int64) (core.UserSettings, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.UserSettings{}, err
	}
	settings, err = s.store.SaveSettings(ctx, core.DefaultSettings(userID))
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("create default settings: %w", err)
	}
	return settings, nil
}

func (s *FinanceService) UpdateSettings(ctx context.Context, userID int64, in SettingsInput) (core.UserSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return core.UserSettings{}, err
	}
	in.apply(&settings)
	if err := settings.Validate(); err != nil {
		return core.UserSettings{}, err
	}
	return s.store.SaveSettings(ctx, settings)
}

// DeleteUserData removes every row the user owns. Shared default
// categories stay.
func (s *FinanceService) DeleteUserData(ctx context.Context, userID int64) error {
	if err := s.store.DeleteUserData(ctx, userID); err != nil {
		return fmt.Errorf("delete user data: %w", err)
	}
	s.logger.InfoContext(ctx, "Deleted user data", applog.FieldUserID, userID)
	s.changed(userID)
	return nil
}
