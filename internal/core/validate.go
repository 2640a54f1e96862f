package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength        = 255
	maxIconLength        = 50
	maxColorLength       = 7
	maxDescriptionLength = 500

	// MaxNotifyBefore bounds how many days ahead a reminder may fire.
	MaxNotifyBefore = 365
)

var (
	lastFourPattern = regexp.MustCompile(`^[0-9]{4}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func validateName(field, v string) error {
	if strings.TrimSpace(v) == "" {
		if field == "name" {
			return ErrEmptyName
		}
		return invalidf("%s is required", field)
	}
	if utf8.RuneCountInString(v) > maxNameLength {
		return invalidf("%s too long (max %d characters)", field, maxNameLength)
	}
	return nil
}

func validateAppearance(icon, color string) error {
	if utf8.RuneCountInString(icon) > maxIconLength {
		return invalidf("icon too long (max %d characters)", maxIconLength)
	}
	if len(color) > maxColorLength {
		return invalidf("color too long (max %d characters)", maxColorLength)
	}
	return nil
}

func (a Account) Validate() error {
	if err := validateName("name", a.Name); err != nil {
		return err
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("account %w %q", ErrInvalidType, a.Type)
	}
	if !currencyPattern.MatchString(a.Currency) {
		return invalidf("currency must be a 3-letter code, got %q", a.Currency)
	}
	return validateAppearance(a.Icon, a.Color)
}

func (c CreditCard) Validate() error {
	if err := validateName("name", c.Name); err != nil {
		return err
	}
	if c.LastFourDigits != "" && !lastFourPattern.MatchString(c.LastFourDigits) {
		return invalidf("last four digits must be exactly 4 digits")
	}
	if c.CreditLimit.Cents < 0 {
		return invalidf("credit limit cannot be negative")
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return invalidf("closing day %d out of range 1-31", c.ClosingDay)
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return invalidf("due day %d out of range 1-31", c.DueDay)
	}
	if utf8.RuneCountInString(c.Brand) > maxIconLength {
		return invalidf("brand too long (max %d characters)", maxIconLength)
	}
	return validateAppearance(c.Icon, c.Color)
}

func (c Category) Validate() error {
	if err := validateName("name", c.Name); err != nil {
		return err
	}
	if c.Type != Income && c.Type != Expense {
		return fmt.Errorf("category %w %q", ErrInvalidType, c.Type)
	}
	return validateAppearance(c.Icon, c.Color)
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("transaction %w %q", ErrInvalidType, t.Type)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return invalidf("description is required")
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLength {
		return invalidf("description too long (max %d characters)", maxDescriptionLength)
	}
	if t.Type == Transfer {
		if t.ToAccountID == nil {
			return invalidf("transfer requires a destination account")
		}
		if t.AccountID != nil && *t.AccountID == *t.ToAccountID {
			return invalidf("transfer source and destination must differ")
		}
	}
	if t.RecurringType != "" && !t.RecurringType.IsValid() {
		return fmt.Errorf("recurring %w %q", ErrInvalidType, t.RecurringType)
	}
	if t.InstallmentNumber != nil && t.TotalInstallments != nil {
		if *t.InstallmentNumber < 1 || *t.InstallmentNumber > *t.TotalInstallments {
			return invalidf("installment %d out of range 1-%d", *t.InstallmentNumber, *t.TotalInstallments)
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if err := validateName("name", b.Name); err != nil {
		return err
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.Period.IsValid() {
		return fmt.Errorf("budget period %w %q", ErrInvalidType, b.Period)
	}
	if b.Period == Custom && (b.StartDate == nil || b.EndDate == nil) {
		return invalidf("custom budget requires start and end dates")
	}
	if b.StartDate != nil && b.EndDate != nil && b.EndDate.Before(*b.StartDate) {
		return invalidf("end date must not precede start date")
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return invalidf("alert threshold %d out of range 1-100", b.AlertThreshold)
	}
	return nil
}

func (g Goal) Validate() error {
	if err := validateName("name", g.Name); err != nil {
		return err
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return invalidf("current amount cannot be negative")
	}
	return validateAppearance(g.Icon, g.Color)
}

func (i InvestmentPosition) Validate() error {
	if err := validateName("name", i.Name); err != nil {
		return err
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("investment %w %q", ErrInvalidType, i.Type)
	}
	if i.InitialAmount.Cents < 0 || i.CurrentAmount.Cents < 0 {
		return invalidf("investment amounts cannot be negative")
	}
	if i.PurchaseDate.IsZero() {
		return ErrMissingDate
	}
	if utf8.RuneCountInString(i.Broker) > maxNameLength {
		return invalidf("broker too long (max %d characters)", maxNameLength)
	}
	return nil
}

func (r Reminder) Validate() error {
	if err := validateName("title", r.Title); err != nil {
		return err
	}
	if r.DueDate.IsZero() {
		return ErrMissingDate
	}
	if r.NotifyBefore < 0 || r.NotifyBefore > MaxNotifyBefore {
		return invalidf("notify before %d out of range 0-%d", r.NotifyBefore, MaxNotifyBefore)
	}
	return nil
}

func (s UserSettings) Validate() error {
	if !currencyPattern.MatchString(s.Currency) {
		return invalidf("currency must be a 3-letter code, got %q", s.Currency)
	}
	if !s.Theme.IsValid() {
		return fmt.Errorf("theme %w %q", ErrInvalidType, s.Theme)
	}
	if s.Language == "" || len(s.Language) > 5 {
		return invalidf("language must be 1-5 characters")
	}
	if s.DateFormat == "" || len(s.DateFormat) > 20 {
		return invalidf("date format must be 1-20 characters")
	}
	return nil
}
