// Package memory is an in-process implementation of every store port.
// Data lives only as long as the process; it backs DATA_BACKEND=memory and
// the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"financas/internal/core"
	"financas/internal/ports"
)

var _ ports.Store = (*Store)(nil)

const (
	exportPending = "pending"
	exportDone    = "exported"
	exportError   = "error"
)

type table[T any] struct {
	nextID int64
	rows   map[int64]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T)}
}

func (t *table[T]) insert(set func(*T, int64), v T) T {
	t.nextID++
	set(&v, t.nextID)
	t.rows[t.nextID] = v
	return v
}

func (t *table[T]) owned(id int64, owner func(T) int64, userID int64) (T, bool) {
	v, ok := t.rows[id]
	if !ok || owner(v) != userID {
		var zero T
		return zero, false
	}
	return v, true
}

func (t *table[T]) list(owner func(T) int64, userID int64) []T {
	out := make([]T, 0)
	for _, v := range t.rows {
		if owner(v) == userID {
			out = append(out, v)
		}
	}
	return out
}

func (t *table[T]) deleteOwned(id int64, owner func(T) int64, userID int64) error {
	if _, ok := t.owned(id, owner, userID); !ok {
		return core.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) deleteAll(owner func(T) int64, userID int64) {
	for id, v := range t.rows {
		if owner(v) == userID {
			delete(t.rows, id)
		}
	}
}

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	accounts     *table[core.Account]
	cards        *table[core.CreditCard]
	categories   *table[core.Category]
	transactions *table[core.Transaction]
	budgets      *table[core.Budget]
	goals        *table[core.Goal]
	investments  *table[core.InvestmentPosition]
	reminders    *table[core.Reminder]
	settings     map[int64]core.UserSettings
	exports      map[int64]string
}

// New returns an empty store seeded with the default categories.
func New() *Store {
	s := &Store{
		now:          time.Now,
		accounts:     newTable[core.Account](),
		cards:        newTable[core.CreditCard](),
		categories:   newTable[core.Category](),
		transactions: newTable[core.Transaction](),
		budgets:      newTable[core.Budget](),
		goals:        newTable[core.Goal](),
		investments:  newTable[core.InvestmentPosition](),
		reminders:    newTable[core.Reminder](),
		settings:     make(map[int64]core.UserSettings),
		exports:      make(map[int64]string),
	}
	for _, c := range core.DefaultCategories() {
		c.CreatedAt = s.now()
		s.categories.insert(setCategoryID, c)
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error { return nil }

func accountOwner(a core.Account) int64 { return a.UserID }
func cardOwner(c core.CreditCard) int64 { return c.UserID }
func categoryOwner(c core.Category) int64 { return c.UserID }
func transactionOwner(t core.Transaction) int64 { return t.UserID }
func budgetOwner(b core.Budget) int64 { return b.UserID }
func goalOwner(g core.Goal) int64 { return g.UserID }
func investmentOwner(i core.InvestmentPosition) int64 { return i.UserID }
func reminderOwner(r core.Reminder) int64 { return r.UserID }
func setAccountID(a *core.Account, id int64) { a.ID = id }
func setCardID(c *core.CreditCard, id int64) { c.ID = id }
func setCategoryID(c *core.Category, id int64) { c.ID = id }
func setTransactionID(t *core.Transaction, id int64) { t.ID = id }
func setBudgetID(b *core.Budget, id int64) { b.ID = id }
func setGoalID(g *core.Goal, id int64) { g.ID = id }
func setInvestmentID(i *core.InvestmentPosition, id int64) { i.ID = id }
func setReminderID(r *core.Reminder, id int64) { r.ID = id }

func sortByID[T any](rows []T, id func(T) int64) {
	sort.Slice(rows, func(i, j int) bool { return id(rows[i]) < id(rows[j]) })
}

// Accounts

func (s *Store) ListAccounts(_ context.Context, userID int64) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.accounts.list(accountOwner, userID)
	sortByID(out, func(a core.Account) int64 { return a.ID })
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, userID, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts.owned(id, accountOwner, userID)
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.CreatedAt, a.UpdatedAt = s.now(), s.now()
	return s.accounts.insert(setAccountID, a), nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.accounts.owned(a.ID, accountOwner, a.UserID)
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	a.CreatedAt, a.UpdatedAt = old.CreatedAt, s.now()
	s.accounts.rows[a.ID] = a
	return a, nil
}

func (s *Store) DeleteAccount(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.deleteOwned(id, accountOwner, userID)
}

// Credit cards

func (s *Store) ListCreditCards(_ context.Context, userID int64) ([]core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.cards.list(cardOwner, userID)
	sortByID(out, func(c core.CreditCard) int64 { return c.ID })
	return out, nil
}

func (s *Store) GetCreditCard(_ context.Context, userID, id int64) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards.owned(id, cardOwner, userID)
	if !ok {
		return core.CreditCard{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCreditCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	return s.cards.insert(setCardID, c), nil
}

func (s *Store) UpdateCreditCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.cards.owned(c.ID, cardOwner, c.UserID)
	if !ok {
		return core.CreditCard{}, core.ErrNotFound
	}
	c.CreatedAt, c.UpdatedAt = old.CreatedAt, s.now()
	s.cards.rows[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCreditCard(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards.deleteOwned(id, cardOwner, userID)
}

// Categories

func (s *Store) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0)
	for _, c := range s.categories.rows {
		if c.IsDefault || c.UserID == userID {
			out = append(out, c)
		}
	}
	sortByID(out, func(c core.Category) int64 { return c.ID })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, userID, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories.rows[id]
	if !ok || (!c.IsDefault && c.UserID != userID) {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.CreatedAt = s.now()
	return s.categories.insert(setCategoryID, c), nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.categories.owned(c.ID, categoryOwner, c.UserID)
	if !ok || old.IsDefault {
		return core.Category{}, core.ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	s.categories.rows[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.categories.rows[id]; ok && c.IsDefault {
		return core.ErrNotFound
	}
	return s.categories.deleteOwned(id, categoryOwner, userID)
}

// Transactions

func (s *Store) ListTransactions(_ context.Context, userID int64, f ports.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, t := range s.transactions.rows {
		if t.UserID != userID || !matches(t, f) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(t core.Transaction, f ports.TransactionFilter) bool {
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	return true
}

func (s *Store) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions.owned(id, transactionOwner, userID)
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.CreatedAt, t.UpdatedAt = s.now(), s.now()
	t = s.transactions.insert(setTransactionID, t)
	s.exports[t.ID] = exportPending
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.transactions.owned(t.ID, transactionOwner, t.UserID)
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	t.CreatedAt, t.UpdatedAt = old.CreatedAt, s.now()
	s.transactions.rows[t.ID] = t
	s.exports[t.ID] = exportPending
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transactions.deleteOwned(id, transactionOwner, userID); err != nil {
		return err
	}
	delete(s.exports, id)
	return nil
}

// Budgets

func (s *Store) ListBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.budgets.list(budgetOwner, userID)
	sortByID(out, func(b core.Budget) int64 { return b.ID })
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, userID, id int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets.owned(id, budgetOwner, userID)
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.CreatedAt, b.UpdatedAt = s.now(), s.now()
	return s.budgets.insert(setBudgetID, b), nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.budgets.owned(b.ID, budgetOwner, b.UserID)
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	b.CreatedAt, b.UpdatedAt = old.CreatedAt, s.now()
	s.budgets.rows[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.deleteOwned(id, budgetOwner, userID)
}

// Goals

func (s *Store) ListGoals(_ context.Context, userID int64) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.goals.list(goalOwner, userID)
	sortByID(out, func(g core.Goal) int64 { return g.ID })
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id int64) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals.owned(id, goalOwner, userID)
	if !ok {
		return core.Goal{}, core.ErrNotFound
	}
	return g, nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.CreatedAt, g.UpdatedAt = s.now(), s.now()
	return s.goals.insert(setGoalID, g), nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.goals.owned(g.ID, goalOwner, g.UserID)
	if !ok {
		return core.Goal{}, core.ErrNotFound
	}
	g.CreatedAt, g.UpdatedAt = old.CreatedAt, s.now()
	s.goals.rows[g.ID] = g
	return g, nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals.deleteOwned(id, goalOwner, userID)
}

// Investments

func (s *Store) ListInvestments(_ context.Context, userID int64) ([]core.InvestmentPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.investments.list(investmentOwner, userID)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PurchaseDate.Equal(out[j].PurchaseDate) {
			return out[i].PurchaseDate.After(out[j].PurchaseDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetInvestment(_ context.Context, userID, id int64) (core.InvestmentPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.investments.owned(id, investmentOwner, userID)
	if !ok {
		return core.InvestmentPosition{}, core.ErrNotFound
	}
	return i, nil
}

func (s *Store) CreateInvestment(_ context.Context, i core.InvestmentPosition) (core.InvestmentPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i.CreatedAt, i.UpdatedAt = s.now(), s.now()
	return s.investments.insert(setInvestmentID, i), nil
}

func (s *Store) UpdateInvestment(_ context.Context, i core.InvestmentPosition) (core.InvestmentPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.investments.owned(i.ID, investmentOwner, i.UserID)
	if !ok {
		return core.InvestmentPosition{}, core.ErrNotFound
	}
	i.CreatedAt, i.UpdatedAt = old.CreatedAt, s.now()
	s.investments.rows[i.ID] = i
	return i, nil
}

func (s *Store) DeleteInvestment(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.investments.deleteOwned(id, investmentOwner, userID)
}

// Reminders

func (s *Store) ListReminders(_ context.Context, userID int64) ([]core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.reminders.list(reminderOwner, userID)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetReminder(_ context.Context, userID, id int64) (core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders.owned(id, reminderOwner, userID)
	if !ok {
		return core.Reminder{}, core.ErrNotFound
	}
	return r, nil
}

func (s *Store) CreateReminder(_ context.Context, r core.Reminder) (core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.CreatedAt = s.now()
	return s.reminders.insert(setReminderID, r), nil
}

func (s *Store) UpdateReminder(_ context.Context, r core.Reminder) (core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.reminders.owned(r.ID, reminderOwner, r.UserID)
	if !ok {
		return core.Reminder{}, core.ErrNotFound
	}
	r.CreatedAt = old.CreatedAt
	if !r.DueDate.Equal(old.DueDate) || r.NotifyBefore != old.NotifyBefore {
		r.NotifiedAt = nil
	} else {
		r.NotifiedAt = old.NotifiedAt
	}
	s.reminders.rows[r.ID] = r
	return r, nil
}

func (s *Store) DeleteReminder(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders.deleteOwned(id, reminderOwner, userID)
}

func (s *Store) PendingReminders(_ context.Context, dueBefore time.Time) ([]core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Reminder, 0)
	for _, r := range s.reminders.rows {
		if r.IsCompleted || r.NotifiedAt != nil || r.DueDate.After(dueBefore) {
			continue
		}
		out = append(out, r)
	}
	sortByID(out, func(r core.Reminder) int64 { return r.ID })
	return out, nil
}

func (s *Store) MarkReminderNotified(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders.rows[id]
	if !ok {
		return core.ErrNotFound
	}
	r.NotifiedAt = &at
	s.reminders.rows[id] = r
	return nil
}

// Settings

func (s *Store) GetSettings(_ context.Context, userID int64) (core.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[userID]
	if !ok {
		return core.UserSettings{}, core.ErrNotFound
	}
	return st, nil
}

func (s *Store) SaveSettings(_ context.Context, st core.UserSettings) (core.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.UpdatedAt = s.now()
	s.settings[st.UserID] = st
	return st, nil
}

func (s *Store) DeleteUserData(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.transactions.rows {
		if t.UserID == userID {
			delete(s.exports, id)
		}
	}
	s.transactions.deleteAll(transactionOwner, userID)
	s.accounts.deleteAll(accountOwner, userID)
	s.cards.deleteAll(cardOwner, userID)
	s.budgets.deleteAll(budgetOwner, userID)
	s.goals.deleteAll(goalOwner, userID)
	s.investments.deleteAll(investmentOwner, userID)
	s.reminders.deleteAll(reminderOwner, userID)
	for id, c := range s.categories.rows {
		if !c.IsDefault && c.UserID == userID {
			delete(s.categories.rows, id)
		}
	}
	delete(s.settings, userID)
	return nil
}

// Export queue

func (s *Store) PendingExports(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for id, status := range s.exports {
		if status == exportPending {
			out = append(out, s.transactions.rows[id])
		}
	}
	sortByID(out, func(t core.Transaction) int64 { return t.ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) TransactionByID(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions.rows[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) CategoryName(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories.rows[id]
	if !ok {
		return "", core.ErrNotFound
	}
	return c.Name, nil
}

func (s *Store) MarkExported(_ context.Context, id int64) error {
	return s.setExport(id, exportDone)
}

func (s *Store) MarkExportError(_ context.Context, id int64) error {
	return s.setExport(id, exportError)
}

func (s *Store) setExport(id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exports[id]; !ok {
		return core.ErrNotFound
	}
	s.exports[id] = status
	return nil
}
