package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"financas/internal/core"
)

// Budgets

const budgetColumns = `id, user_id, name, amount_cents, period, start_date, end_date, category_id, alert_threshold, is_active, created_at, updated_at`

func scanBudget(s scanner) (core.Budget, error) {
	var (
		b   core.Budget
		cat sql.NullInt64
	)
	err := s.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount.Cents, &b.Period, nullTimeCol{&b.StartDate}, nullTimeCol{&b.EndDate},
		&cat, &b.AlertThreshold, &b.IsActive, timeCol{&b.CreatedAt}, timeCol{&b.UpdatedAt})
	b.CategoryID = int64Ptr(cat)
	return b, err
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return collect(rows, scanBudget)
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	v, err := scanBudget(row)
	return v, notFound(err)
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, name, amount_cents, period, start_date, end_date, category_id, alert_threshold, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Amount.Cents, b.Period, nullTime(b.StartDate), nullTime(b.EndDate),
		nullInt64(b.CategoryID), b.AlertThreshold, b.IsActive, now, now)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return r.GetBudget(ctx, b.UserID, id)
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET name = ?, amount_cents = ?, period = ?, start_date = ?, end_date = ?, category_id = ?,
		 alert_threshold = ?, is_active = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		b.Name, b.Amount.Cents, b.Period, nullTime(b.StartDate), nullTime(b.EndDate), nullInt64(b.CategoryID),
		b.AlertThreshold, b.IsActive, r.stamp(), b.ID, b.UserID)
	if err := affected(res, err); err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	return r.GetBudget(ctx, b.UserID, b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	return nil
}

// Goals

const goalColumns = `id, user_id, name, description, target_amount_cents, current_amount_cents, deadline, icon, color, is_completed, created_at, updated_at`

func scanGoal(s scanner) (core.Goal, error) {
	var g core.Goal
	err := s.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		nullTimeCol{&g.Deadline}, &g.Icon, &g.Color, &g.IsCompleted, timeCol{&g.CreatedAt}, timeCol{&g.UpdatedAt})
	return g, err
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return collect(rows, scanGoal)
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	v, err := scanGoal(row)
	return v, notFound(err)
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, name, description, target_amount_cents, current_amount_cents, deadline, icon, color, is_completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents, nullTime(g.Deadline),
		g.Icon, g.Color, g.IsCompleted, now, now)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return r.GetGoal(ctx, g.UserID, id)
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, description = ?, target_amount_cents = ?, current_amount_cents = ?, deadline = ?,
		 icon = ?, color = ?, is_completed = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		g.Name, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents, nullTime(g.Deadline),
		g.Icon, g.Color, g.IsCompleted, r.stamp(), g.ID, g.UserID)
	if err := affected(res, err); err != nil {
		return core.Goal{}, fmt.Errorf("update goal %d: %w", g.ID, err)
	}
	return r.GetGoal(ctx, g.UserID, g.ID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	return nil
}

// Investments

const investmentColumns = `id, user_id, name, type, initial_amount_cents, current_amount_cents, purchase_date, broker, notes, created_at, updated_at`

func scanInvestment(s scanner) (core.InvestmentPosition, error) {
	var i core.InvestmentPosition
	err := s.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.InitialAmount.Cents, &i.CurrentAmount.Cents,
		timeCol{&i.PurchaseDate}, &i.Broker, &i.Notes, timeCol{&i.CreatedAt}, timeCol{&i.UpdatedAt})
	return i, err
}

func (r *SQLiteRepository) ListInvestments(ctx context.Context, userID int64) ([]core.InvestmentPosition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE user_id = ? ORDER BY purchase_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return collect(rows, scanInvestment)
}

func (r *SQLiteRepository) GetInvestment(ctx context.Context, userID, id int64) (core.InvestmentPosition, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = ? AND user_id = ?`, id, userID)
	v, err := scanInvestment(row)
	return v, notFound(err)
}

func (r *SQLiteRepository) CreateInvestment(ctx context.Context, i core.InvestmentPosition) (core.InvestmentPosition, error) {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO investments (user_id, name, type, initial_amount_cents, current_amount_cents, purchase_date, broker, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.UserID, i.Name, i.Type, i.InitialAmount.Cents, i.CurrentAmount.Cents, formatTime(i.PurchaseDate), i.Broker, i.Notes, now, now)
	if err != nil {
		return core.InvestmentPosition{}, fmt.Errorf("create investment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.InvestmentPosition{}, fmt.Errorf("create investment: %w", err)
	}
	return r.GetInvestment(ctx, i.UserID, id)
}

func (r *SQLiteRepository) UpdateInvestment(ctx context.Context, i core.InvestmentPosition) (core.InvestmentPosition, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE investments SET name = ?, type = ?, initial_amount_cents = ?, current_amount_cents = ?, purchase_date = ?,
		 broker = ?, notes = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		i.Name, i.Type, i.InitialAmount.Cents, i.CurrentAmount.Cents, formatTime(i.PurchaseDate), i.Broker, i.Notes,
		r.stamp(), i.ID, i.UserID)
	if err := affected(res, err); err != nil {
		return core.InvestmentPosition{}, fmt.Errorf("update investment %d: %w", i.ID, err)
	}
	return r.GetInvestment(ctx, i.UserID, i.ID)
}

func (r *SQLiteRepository) DeleteInvestment(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM investments WHERE id = ? AND user_id = ?`, id, userID)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("delete investment %d: %w", id, err)
	}
	return nil
}

// Reminders

const reminderColumns = `id, user_id, title, description, due_date, transaction_id, is_completed, notify_before, notified_at, created_at`

func scanReminder(s scanner) (core.Reminder, error) {
	var (
		rm core.Reminder
		tx sql.NullInt64
	)
	err := s.Scan(&rm.ID, &rm.UserID, &rm.Title, &rm.Description, timeCol{&rm.DueDate}, &tx, &rm.IsCompleted,
		&rm.NotifyBefore, nullTimeCol{&rm.NotifiedAt}, timeCol{&rm.CreatedAt})
	rm.TransactionID = int64Ptr(tx)
	return rm, err
}

func (r *SQLiteRepository) ListReminders(ctx context.Context, userID int64) ([]core.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = ? ORDER BY due_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return collect(rows, scanReminder)
}

func (r *SQLiteRepository) GetReminder(ctx context.Context, userID, id int64) (core.Reminder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	v, err := scanReminder(row)
	return v, notFound(err)
}

func (r *SQLiteRepository) CreateReminder(ctx context.Context, rm core.Reminder) (core.Reminder, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (user_id, title, description, due_date, transaction_id, is_completed, notify_before, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rm.UserID, rm.Title, rm.Description, formatTime(rm.DueDate), nullInt64(rm.TransactionID),
		rm.IsCompleted, rm.NotifyBefore, r.stamp())
	if err != nil {
		return core.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	return r.GetReminder(ctx, rm.UserID, id)
}

// UpdateReminder clears notified_at when the due date or lead time moves so
// the reminder is announced again.
func (r *SQLiteRepository) UpdateReminder(ctx context.Context, rm core.Reminder) (core.Reminder, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET
		   notified_at = CASE WHEN due_date <> ? OR notify_before <> ? THEN NULL ELSE notified_at END,
		   title = ?, description = ?, due_date = ?, transaction_id = ?, is_completed = ?, notify_before = ?
		 WHERE id = ? AND user_id = ?`,
		formatTime(rm.DueDate), rm.NotifyBefore,
		rm.Title, rm.Description, formatTime(rm.DueDate), nullInt64(rm.TransactionID), rm.IsCompleted, rm.NotifyBefore,
		rm.ID, rm.UserID)
	if err := affected(res, err); err != nil {
		return core.Reminder{}, fmt.Errorf("update reminder %d: %w", rm.ID, err)
	}
	return r.GetReminder(ctx, rm.UserID, rm.ID)
}

func (r *SQLiteRepository) DeleteReminder(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("delete reminder %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) PendingReminders(ctx context.Context, dueBefore time.Time) ([]core.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE is_completed = 0 AND notified_at IS NULL AND due_date <= ? ORDER BY id`, formatTime(dueBefore))
	if err != nil {
		return nil, fmt.Errorf("get pending reminders: %w", err)
	}
	return collect(rows, scanReminder)
}

func (r *SQLiteRepository) MarkReminderNotified(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reminders SET notified_at = ? WHERE id = ?`, formatTime(at), id)
	if err := affected(res, err); err != nil {
		return fmt.Errorf("mark reminder %d notified: %w", id, err)
	}
	return nil
}

// Settings

func (r *SQLiteRepository) GetSettings(ctx context.Context, userID int64) (core.UserSettings, error) {
	var s core.UserSettings
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, currency, theme, language, date_format, email_notifications, push_notifications, has_completed_tour, updated_at
		 FROM user_settings WHERE user_id = ?`, userID).
		Scan(&s.UserID, &s.Currency, &s.Theme, &s.Language, &s.DateFormat, &s.EmailNotifications,
			&s.PushNotifications, &s.HasCompletedTour, timeCol{&s.UpdatedAt})
	return s, notFound(err)
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.UserSettings) (core.UserSettings, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, currency, theme, language, date_format, email_notifications, push_notifications, has_completed_tour, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   currency = excluded.currency, theme = excluded.theme, language = excluded.language,
		   date_format = excluded.date_format, email_notifications = excluded.email_notifications,
		   push_notifications = excluded.push_notifications, has_completed_tour = excluded.has_completed_tour,
		   updated_at = excluded.updated_at`,
		s.UserID, s.Currency, s.Theme, s.Language, s.DateFormat, s.EmailNotifications, s.PushNotifications,
		s.HasCompletedTour, r.stamp())
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return r.GetSettings(ctx, s.UserID)
}
