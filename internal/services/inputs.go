package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// Amount is a major-unit amount as sent by clients, either a JSON number
// or a decimal string. It converts to cents rounding half away from zero.
type Amount struct {
	core.Money
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		m, err := core.ParseMoney(s)
		if err != nil {
			return err
		}
		a.Money = m
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return core.ErrInvalidAmount
	}
	a.Money = core.MoneyFromDecimal(d)
	return nil
}

// Optional distinguishes an absent field from an explicit null, so an
// update can clear a nullable column.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func applyOptional[T any](dst **T, o Optional[T]) {
	if o.Set {
		*dst = o.Value
	}
}

func applyOptionalDate(dst **time.Time, o Optional[core.Date], loc *time.Location) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	t := o.Value.In(loc)
	*dst = &t
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setAmount(dst *core.Money, v *Amount) {
	if v != nil {
		*dst = v.Money
	}
}

func setDate(dst *time.Time, v *core.Date, loc *time.Location) {
	if v != nil {
		*dst = v.In(loc)
	}
}

// ByID identifies the row a delete targets.
type ByID struct {
	ID int64 `json:"id"`
}

type AccountInput struct {
	Name           *string           `json:"name"`
	Type           *core.AccountType `json:"type"`
	Balance        *Amount           `json:"balance"`
	Currency       *string           `json:"currency"`
	Icon           *string           `json:"icon"`
	Color          *string           `json:"color"`
	IncludeInTotal *bool             `json:"includeInTotal"`
	IsActive       *bool             `json:"isActive"`
}

func (in AccountInput) apply(a *core.Account) {
	set(&a.Name, in.Name)
	set(&a.Type, in.Type)
	setAmount(&a.Balance, in.Balance)
	set(&a.Currency, in.Currency)
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	set(&a.Icon, in.Icon)
	set(&a.Color, in.Color)
	set(&a.IncludeInTotal, in.IncludeInTotal)
	set(&a.IsActive, in.IsActive)
}

type UpdateAccountInput struct {
	ID int64 `json:"id"`
	AccountInput
}

type CreditCardInput struct {
	Name           *string `json:"name"`
	LastFourDigits *string `json:"lastFourDigits"`
	CreditLimit    *Amount `json:"creditLimit"`
	ClosingDay     *int    `json:"closingDay"`
	DueDay         *int    `json:"dueDay"`
	Brand          *string `json:"brand"`
	Icon           *string `json:"icon"`
	Color          *string `json:"color"`
	IsActive       *bool   `json:"isActive"`
}

func (in CreditCardInput) apply(c *core.CreditCard) {
	set(&c.Name, in.Name)
	set(&c.LastFourDigits, in.LastFourDigits)
	setAmount(&c.CreditLimit, in.CreditLimit)
	set(&c.ClosingDay, in.ClosingDay)
	set(&c.DueDay, in.DueDay)
	set(&c.Brand, in.Brand)
	set(&c.Icon, in.Icon)
	set(&c.Color, in.Color)
	set(&c.IsActive, in.IsActive)
}

type UpdateCreditCardInput struct {
	ID int64 `json:"id"`
	CreditCardInput
}

type CategoryInput struct {
	Name  *string               `json:"name"`
	Type  *core.TransactionType `json:"type"`
	Icon  *string               `json:"icon"`
	Color *string               `json:"color"`
}

func (in CategoryInput) apply(c *core.Category) {
	set(&c.Name, in.Name)
	set(&c.Type, in.Type)
	set(&c.Icon, in.Icon)
	set(&c.Color, in.Color)
}

type UpdateCategoryInput struct {
	ID int64 `json:"id"`
	CategoryInput
}

type TransactionInput struct {
	Type              *core.TransactionType `json:"type"`
	Amount            *Amount               `json:"amount"`
	Description       *string               `json:"description"`
	Date              *core.Date            `json:"date"`
	CategoryID        Optional[int64]       `json:"categoryId"`
	SubcategoryID     Optional[int64]       `json:"subcategoryId"`
	AccountID         Optional[int64]       `json:"accountId"`
	CreditCardID      Optional[int64]       `json:"creditCardId"`
	ToAccountID       Optional[int64]       `json:"toAccountId"`
	IsPaid            *bool                 `json:"isPaid"`
	IsRecurring       *bool                 `json:"isRecurring"`
	RecurringType     *core.RecurringType   `json:"recurringType"`
	InstallmentNumber Optional[int]         `json:"installmentNumber"`
	TotalInstallments Optional[int]         `json:"totalInstallments"`
	Notes             *string               `json:"notes"`
}

func (in TransactionInput) apply(t *core.Transaction, loc *time.Location) {
	set(&t.Type, in.Type)
	setAmount(&t.Amount, in.Amount)
	set(&t.Description, in.Description)
	setDate(&t.Date, in.Date, loc)
	applyOptional(&t.CategoryID, in.CategoryID)
	applyOptional(&t.SubcategoryID, in.SubcategoryID)
	applyOptional(&t.AccountID, in.AccountID)
	applyOptional(&t.CreditCardID, in.CreditCardID)
	applyOptional(&t.ToAccountID, in.ToAccountID)
	set(&t.IsPaid, in.IsPaid)
	set(&t.IsRecurring, in.IsRecurring)
	set(&t.RecurringType, in.RecurringType)
	applyOptional(&t.InstallmentNumber, in.InstallmentNumber)
	applyOptional(&t.TotalInstallments, in.TotalInstallments)
	set(&t.Notes, in.Notes)
}

type UpdateTransactionInput struct {
	ID int64 `json:"id"`
	TransactionInput
}

// ListTransactionsInput filters transactions.list. Limit defaults to 100.
type ListTransactionsInput struct {
	StartDate  *core.Date           `json:"startDate"`
	EndDate    *core.Date           `json:"endDate"`
	Type       core.TransactionType `json:"type"`
	CategoryID *int64               `json:"categoryId"`
	Limit      int                  `json:"limit"`
}

type BudgetInput struct {
	Name           *string             `json:"name"`
	Amount         *Amount             `json:"amount"`
	Period         *core.BudgetPeriod  `json:"period"`
	StartDate      Optional[core.Date] `json:"startDate"`
	EndDate        Optional[core.Date] `json:"endDate"`
	CategoryID     Optional[int64]     `json:"categoryId"`
	AlertThreshold *int                `json:"alertThreshold"`
	IsActive       *bool               `json:"isActive"`
}

func (in BudgetInput) apply(b *core.Budget, loc *time.Location) {
	set(&b.Name, in.Name)
	setAmount(&b.Amount, in.Amount)
	set(&b.Period, in.Period)
	applyOptionalDate(&b.StartDate, in.StartDate, loc)
	applyOptionalDate(&b.EndDate, in.EndDate, loc)
	applyOptional(&b.CategoryID, in.CategoryID)
	set(&b.AlertThreshold, in.AlertThreshold)
	set(&b.IsActive, in.IsActive)
}

type UpdateBudgetInput struct {
	ID int64 `json:"id"`
	BudgetInput
}

type GoalInput struct {
	Name          *string             `json:"name"`
	Description   *string             `json:"description"`
	TargetAmount  *Amount             `json:"targetAmount"`
	CurrentAmount *Amount             `json:"currentAmount"`
	Deadline      Optional[core.Date] `json:"deadline"`
	Icon          *string             `json:"icon"`
	Color         *string             `json:"color"`
	IsCompleted   *bool               `json:"isCompleted"`
}

func (in GoalInput) apply(g *core.Goal, loc *time.Location) {
	set(&g.Name, in.Name)
	set(&g.Description, in.Description)
	setAmount(&g.TargetAmount, in.TargetAmount)
	setAmount(&g.CurrentAmount, in.CurrentAmount)
	applyOptionalDate(&g.Deadline, in.Deadline, loc)
	set(&g.Icon, in.Icon)
	set(&g.Color, in.Color)
	set(&g.IsCompleted, in.IsCompleted)
}

type UpdateGoalInput struct {
	ID int64 `json:"id"`
	GoalInput
}

type InvestmentInput struct {
	Name          *string              `json:"name"`
	Type          *core.InvestmentType `json:"type"`
	InitialAmount *Amount              `json:"initialAmount"`
	CurrentAmount *Amount              `json:"currentAmount"`
	PurchaseDate  *core.Date           `json:"purchaseDate"`
	Broker        *string              `json:"broker"`
	Notes         *string              `json:"notes"`
}

func (in InvestmentInput) apply(i *core.InvestmentPosition, loc *time.Location) {
	set(&i.Name, in.Name)
	set(&i.Type, in.Type)
	setAmount(&i.InitialAmount, in.InitialAmount)
	setAmount(&i.CurrentAmount, in.CurrentAmount)
	setDate(&i.PurchaseDate, in.PurchaseDate, loc)
	set(&i.Broker, in.Broker)
	set(&i.Notes, in.Notes)
}

type UpdateInvestmentInput struct {
	ID int64 `json:"id"`
	InvestmentInput
}

type ReminderInput struct {
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	DueDate       *core.Date      `json:"dueDate"`
	TransactionID Optional[int64] `json:"transactionId"`
	IsCompleted   *bool           `json:"isCompleted"`
	NotifyBefore  *int            `json:"notifyBefore"`
}

func (in ReminderInput) apply(r *core.Reminder, loc *time.Location) {
	set(&r.Title, in.Title)
	set(&r.Description, in.Description)
	setDate(&r.DueDate, in.DueDate, loc)
	applyOptional(&r.TransactionID, in.TransactionID)
	set(&r.IsCompleted, in.IsCompleted)
	set(&r.NotifyBefore, in.NotifyBefore)
}

type UpdateReminderInput struct {
	ID int64 `json:"id"`
	ReminderInput
}

type SettingsInput struct {
	Currency           *string     `json:"currency"`
	Theme              *core.Theme `json:"theme"`
	Language           *string     `json:"language"`
	DateFormat         *string     `json:"dateFormat"`
	EmailNotifications *bool       `json:"emailNotifications"`
	PushNotifications  *bool       `json:"pushNotifications"`
	HasCompletedTour   *bool       `json:"hasCompletedTour"`
}

func (in SettingsInput) apply(s *core.UserSettings) {
	set(&s.Currency, in.Currency)
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	set(&s.Theme, in.Theme)
	set(&s.Language, in.Language)
	set(&s.DateFormat, in.DateFormat)
	set(&s.EmailNotifications, in.EmailNotifications)
	set(&s.PushNotifications, in.PushNotifications)
	set(&s.HasCompletedTour, in.HasCompletedTour)
}

// DateRangeInput bounds statistics.expensesByCategory. Both ends are optional.
type DateRangeInput struct {
	StartDate *core.Date `json:"startDate"`
	EndDate   *core.Date `json:"endDate"`
}

// NetWorthInput selects the trailing window of statistics.netWorthEvolution.
type NetWorthInput struct {
	Days *int `json:"days"`
}
