package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Investment AccountType = "investment"
	Cash       AccountType = "cash"
	Digital    AccountType = "digital"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Fixed       RecurringType = "fixed"
	Variable    RecurringType = "variable"
	Installment RecurringType = "installment"
)

const (
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
	Custom  BudgetPeriod = "custom"
)

const (
	Stocks      InvestmentType = "stocks"
	Funds       InvestmentType = "funds"
	FixedIncome InvestmentType = "fixed_income"
	Crypto      InvestmentType = "crypto"
	RealEstate  InvestmentType = "real_estate"
	OtherAsset  InvestmentType = "other"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

type (
	AccountType     string
	TransactionType string
	RecurringType   string
	BudgetPeriod    string
	InvestmentType  string
	Theme           string

	Account struct {
		ID             int64       `json:"id"`
		UserID         int64       `json:"userId"`
		Name           string      `json:"name"`
		Type           AccountType `json:"type"`
		Balance        Money       `json:"balance"`
		Currency       string      `json:"currency"`
		Icon           string      `json:"icon,omitempty"`
		Color          string      `json:"color,omitempty"`
		IncludeInTotal bool        `json:"includeInTotal"`
		IsActive       bool        `json:"isActive"`
		CreatedAt      time.Time   `json:"createdAt"`
		UpdatedAt      time.Time   `json:"updatedAt"`
	}

	CreditCard struct {
		ID             int64     `json:"id"`
		UserID         int64     `json:"userId"`
		Name           string    `json:"name"`
		LastFourDigits string    `json:"lastFourDigits,omitempty"`
		CreditLimit    Money     `json:"creditLimit"`
		ClosingDay     int       `json:"closingDay"`
		DueDay         int       `json:"dueDay"`
		Brand          string    `json:"brand,omitempty"`
		Icon           string    `json:"icon,omitempty"`
		Color          string    `json:"color,omitempty"`
		IsActive       bool      `json:"isActive"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}

	// Category classifies transactions. Default categories belong to no
	// user (UserID 0) and are shared read-only.
	Category struct {
		ID        int64           `json:"id"`
		UserID    int64           `json:"userId"`
		Name      string          `json:"name"`
		Type      TransactionType `json:"type"`
		Icon      string          `json:"icon,omitempty"`
		Color     string          `json:"color,omitempty"`
		IsDefault bool            `json:"isDefault"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	Transaction struct {
		ID                int64           `json:"id"`
		UserID            int64           `json:"userId"`
		Type              TransactionType `json:"type"`
		Amount            Money           `json:"amount"`
		Description       string          `json:"description"`
		Date              time.Time       `json:"date"`
		CategoryID        *int64          `json:"categoryId"`
		SubcategoryID     *int64          `json:"subcategoryId"`
		AccountID         *int64          `json:"accountId"`
		CreditCardID      *int64          `json:"creditCardId"`
		ToAccountID       *int64          `json:"toAccountId"`
		IsPaid            bool            `json:"isPaid"`
		IsRecurring       bool            `json:"isRecurring"`
		RecurringType     RecurringType   `json:"recurringType,omitempty"`
		InstallmentNumber *int            `json:"installmentNumber"`
		TotalInstallments *int            `json:"totalInstallments"`
		Notes             string          `json:"notes,omitempty"`
		CreatedAt         time.Time       `json:"createdAt"`
		UpdatedAt         time.Time       `json:"updatedAt"`
	}

	Budget struct {
		ID             int64        `json:"id"`
		UserID         int64        `json:"userId"`
		Name           string       `json:"name"`
		Amount         Money        `json:"amount"`
		Period         BudgetPeriod `json:"period"`
		StartDate      *time.Time   `json:"startDate"`
		EndDate        *time.Time   `json:"endDate"`
		CategoryID     *int64       `json:"categoryId"`
		AlertThreshold int          `json:"alertThreshold"`
		IsActive       bool         `json:"isActive"`
		CreatedAt      time.Time    `json:"createdAt"`
		UpdatedAt      time.Time    `json:"updatedAt"`
	}

	Goal struct {
		ID            int64      `json:"id"`
		UserID        int64      `json:"userId"`
		Name          string     `json:"name"`
		Description   string     `json:"description,omitempty"`
		TargetAmount  Money      `json:"targetAmount"`
		CurrentAmount Money      `json:"currentAmount"`
		Deadline      *time.Time `json:"deadline"`
		Icon          string     `json:"icon,omitempty"`
		Color         string     `json:"color,omitempty"`
		IsCompleted   bool       `json:"isCompleted"`
		CreatedAt     time.Time  `json:"createdAt"`
		UpdatedAt     time.Time  `json:"updatedAt"`
	}

	InvestmentPosition struct {
		ID            int64          `json:"id"`
		UserID        int64          `json:"userId"`
		Name          string         `json:"name"`
		Type          InvestmentType `json:"type"`
		InitialAmount Money          `json:"initialAmount"`
		CurrentAmount Money          `json:"currentAmount"`
		PurchaseDate  time.Time      `json:"purchaseDate"`
		Broker        string         `json:"broker,omitempty"`
		Notes         string         `json:"notes,omitempty"`
		CreatedAt     time.Time      `json:"createdAt"`
		UpdatedAt     time.Time      `json:"updatedAt"`
	}

	Reminder struct {
		ID            int64      `json:"id"`
		UserID        int64      `json:"userId"`
		Title         string     `json:"title"`
		Description   string     `json:"description,omitempty"`
		DueDate       time.Time  `json:"dueDate"`
		TransactionID *int64     `json:"transactionId"`
		IsCompleted   bool       `json:"isCompleted"`
		NotifyBefore  int        `json:"notifyBefore"`
		NotifiedAt    *time.Time `json:"notifiedAt"`
		CreatedAt     time.Time  `json:"createdAt"`
	}

	UserSettings struct {
		UserID             int64     `json:"userId"`
		Currency           string    `json:"currency"`
		Theme              Theme     `json:"theme"`
		Language           string    `json:"language"`
		DateFormat         string    `json:"dateFormat"`
		EmailNotifications bool      `json:"emailNotifications"`
		PushNotifications  bool      `json:"pushNotifications"`
		HasCompletedTour   bool      `json:"hasCompletedTour"`
		UpdatedAt          time.Time `json:"updatedAt"`
	}
)

var (
	// ErrInvalidArgument is wrapped by every validation failure.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")

	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	ErrEmptyName       = fmt.Errorf("%w: name is required", ErrInvalidArgument)
	ErrInvalidType     = fmt.Errorf("%w: unknown type", ErrInvalidArgument)
	ErrMissingDate     = fmt.Errorf("%w: date is required", ErrInvalidArgument)
	ErrInvalidWindow   = fmt.Errorf("%w: window days must not be negative", ErrInvalidArgument)
	ErrDefaultReadOnly = fmt.Errorf("%w: default categories cannot be modified", ErrInvalidArgument)
)

// DefaultSettings returns the settings a user starts with.
func DefaultSettings(userID int64) UserSettings {
	return UserSettings{
		UserID:             userID,
		Currency:           "BRL",
		Theme:              ThemeLight,
		Language:           "pt-BR",
		DateFormat:         "DD/MM/YYYY",
		EmailNotifications: true,
		PushNotifications:  true,
	}
}

func (t AccountType) IsValid() bool {
	switch t {
	case Checking, Savings, Investment, Cash, Digital:
		return true
	}
	return false
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Delta returns the signed effect of amount on the owner's net worth.
func (t TransactionType) Delta(amount Money) int64 {
	switch t {
	case Income:
		return amount.Cents
	case Expense:
		return -amount.Cents
	default:
		return 0
	}
}

func (t RecurringType) IsValid() bool {
	switch t {
	case Fixed, Variable, Installment:
		return true
	}
	return false
}

func (p BudgetPeriod) IsValid() bool {
	switch p {
	case Monthly, Yearly, Custom:
		return true
	}
	return false
}

func (t InvestmentType) IsValid() bool {
	switch t {
	case Stocks, Funds, FixedIncome, Crypto, RealEstate, OtherAsset:
		return true
	}
	return false
}

func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeAuto:
		return true
	}
	return false
}

// InvestmentTypes lists every investment type in display order.
func InvestmentTypes() []InvestmentType {
	return []InvestmentType{Stocks, Funds, FixedIncome, Crypto, RealEstate, OtherAsset}
}
