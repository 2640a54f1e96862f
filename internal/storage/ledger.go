package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"financas/internal/core"
	"financas/internal/ports"
)

// Accounts

const accountColumns = `id, user_id, name, type, balance_cents, currency, icon, color, include_in_total, is_active, created_at, updated_at`

func scanAccount(s scanner) (core.Account, error) {
	var a core.Account
	err := s.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance.Cents, &a.Currency, &a.Icon, &a.Color,
		&a.IncludeInTotal, &a.IsActive, timeCol{&a.CreatedAt}, timeCol{&a.UpdatedAt})
	return a, err
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return collect(rows, scanAccount)
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, userID, id int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	v, err := scanAccount(row)
	return v, notFound(err)
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, type, balance_cents, currency, icon, color, include_in_total, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Type, a.Balance.Cents, a.Currency, a.Icon, a.Color, a.IncludeInTotal, a.IsActive, now, now)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return r.GetAccount(ctx, a.UserID, id)
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, balance_cents = ?, currency = ?, icon = ?, color = ?,
		 include_in_total = ?, is_active = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		a.Name, a.Type, a.Balance.Cents, a.Currency, a.Icon, a.Color, a.IncludeInTotal, a.IsActive, r.stamp(), a.ID, a.UserID)
	if err := affected(res, err); err != nil {
		return core.Account{}, fmt.Errorf("update account %d: %w", a.ID, err)
	}
	return r.GetAccount(ctx, a.UserID, a.ID)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	return nil
}

// Credit cards

const creditCardColumns = `id, user_id, name, last_four_digits, credit_limit_cents, closing_day, due_day, brand, icon, color, is_active, created_at, updated_at`

func scanCreditCard(s scanner) (core.CreditCard, error) {
	var c core.CreditCard
	err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.LastFourDigits, &c.CreditLimit.Cents, &c.ClosingDay, &c.DueDay,
		&c.Brand, &c.Icon, &c.Color, &c.IsActive, timeCol{&c.CreatedAt}, timeCol{&c.UpdatedAt})
	return c, err
}

func (r *SQLiteRepository) ListCreditCards(ctx context.Context, userID int64) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+creditCardColumns+` FROM credit_cards WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	return collect(rows, scanCreditCard)
}

func (r *SQLiteRepository) GetCreditCard(ctx context.Context, userID, id int64) (core.CreditCard, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+creditCardColumns+` FROM credit_cards WHERE id = ? AND user_id = ?`, id, userID)
	v, err := scanCreditCard(row)
	return v, notFound(err)
}

func (r *SQLiteRepository) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO credit_cards (user_id, name, last_four_digits, credit_limit_cents, closing_day, due_day, brand, icon, color, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.LastFourDigits, c.CreditLimit.Cents, c.ClosingDay, c.DueDay, c.Brand, c.Icon, c.Color, c.IsActive, now, now)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("create credit card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("create credit card: %w", err)
	}
	return r.GetCreditCard(ctx, c.UserID, id)
}

func (r *SQLiteRepository) UpdateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE credit_cards SET name = ?, last_four_digits = ?, credit_limit_cents = ?, closing_day = ?, due_day = ?,
		 brand = ?, icon = ?, color = ?, is_active = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.LastFourDigits, c.CreditLimit.Cents, c.ClosingDay, c.DueDay, c.Brand, c.Icon, c.Color, c.IsActive, r.stamp(), c.ID, c.UserID)
	if err := affected(res, err); err != nil {
		return core.CreditCard{}, fmt.Errorf("update credit card %d: %w", c.ID, err)
	}
	return r.GetCreditCard(ctx, c.UserID, c.ID)
}

func (r *SQLiteRepository) DeleteCreditCard(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = ? AND user_id = ?`, id, userID)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("delete credit card %d: %w", id, err)
	}
	return nil
}

// Categories

const categoryColumns = `id, user_id, name, type, icon, color, is_default, created_at`

func scanCategory(s scanner) (core.Category, error) {
	var c core.Category
	err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault, timeCol{&c.CreatedAt})
	return c, err
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE is_default = 1 OR user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return collect(rows, scanCategory)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND (is_default = 1 OR user_id = ?)`, id, userID)
	v, err := scanCategory(row)
	return v, notFound(err)
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type, icon, color, is_default, created_at) VALUES (?, ?, ?, ?, ?, 0, ?)`,
		c.UserID, c.Name, c.Type, c.Icon, c.Color, r.stamp())
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return r.GetCategory(ctx, c.UserID, id)
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, icon = ?, color = ? WHERE id = ? AND user_id = ? AND is_default = 0`,
		c.Name, c.Type, c.Icon, c.Color, c.ID, c.UserID)
	if err := affected(res, err); err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return r.GetCategory(ctx, c.UserID, c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ? AND is_default = 0`, id, userID)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// Transactions

const transactionColumns = `id, user_id, type, amount_cents, description, date, category_id, subcategory_id, account_id,
	credit_card_id, to_account_id, is_paid, is_recurring, recurring_type, installment_number, total_installments,
	notes, created_at, updated_at`

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                                          core.Transaction
		cat, sub, acc, card, to, instNo, instTotal sql.NullInt64
	)
	err := s.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount.Cents, &t.Description, timeCol{&t.Date},
		&cat, &sub, &acc, &card, &to, &t.IsPaid, &t.IsRecurring, &t.RecurringType, &instNo, &instTotal,
		&t.Notes, timeCol{&t.CreatedAt}, timeCol{&t.UpdatedAt})
	if err != nil {
		return t, err
	}
	t.CategoryID, t.SubcategoryID = int64Ptr(cat), int64Ptr(sub)
	t.AccountID, t.CreditCardID, t.ToAccountID = int64Ptr(acc), int64Ptr(card), int64Ptr(to)
	t.InstallmentNumber, t.TotalInstallments = intPtr(instNo), intPtr(instTotal)
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f ports.TransactionFilter) ([]core.Transaction, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.From != nil {
		where = append(where, "date >= ?")
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		where = append(where, "date <= ?")
		args = append(args, formatTime(*f.To))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collect(rows, scanTransaction)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	v, err := scanTransaction(row)
	return v, notFound(err)
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount_cents, description, date, category_id, subcategory_id, account_id,
		 credit_card_id, to_account_id, is_paid, is_recurring, recurring_type, installment_number, total_installments,
		 notes, export_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Type, t.Amount.Cents, t.Description, formatTime(t.Date),
		nullInt64(t.CategoryID), nullInt64(t.SubcategoryID), nullInt64(t.AccountID),
		nullInt64(t.CreditCardID), nullInt64(t.ToAccountID), t.IsPaid, t.IsRecurring, t.RecurringType,
		nullInt(t.InstallmentNumber), nullInt(t.TotalInstallments), t.Notes, exportPending, now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return r.GetTransaction(ctx, t.UserID, id)
}

// UpdateTransaction puts the row back on the export queue.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount_cents = ?, description = ?, date = ?, category_id = ?, subcategory_id = ?,
		 account_id = ?, credit_card_id = ?, to_account_id = ?, is_paid = ?, is_recurring = ?, recurring_type = ?,
		 installment_number = ?, total_installments = ?, notes = ?, export_status = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Type, t.Amount.Cents, t.Description, formatTime(t.Date), nullInt64(t.CategoryID), nullInt64(t.SubcategoryID),
		nullInt64(t.AccountID), nullInt64(t.CreditCardID), nullInt64(t.ToAccountID), t.IsPaid, t.IsRecurring, t.RecurringType,
		nullInt(t.InstallmentNumber), nullInt(t.TotalInstallments), t.Notes, exportPending, r.stamp(), t.ID, t.UserID)
	if err := affected(res, err); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return r.GetTransaction(ctx, t.UserID, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}
