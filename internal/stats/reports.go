package stats

import (
	"math"
	"sort"
	"time"

	"financas/internal/core"

	"github.com/shopspring/decimal"
)

func idOrZero(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// percent returns part/whole*100 rounded to two decimals, or 0 when whole is 0.
func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(whole), 2).
		InexactFloat64()
}

// BudgetProgress measures the expenses of one budget period.
// Only expenses dated within [periodStart, periodEnd] count; when the budget
// has a category, only expenses of that category count.
func BudgetProgress(b core.Budget, periodStart, periodEnd core.Date, txs []core.Transaction, loc *time.Location) core.BudgetProgress {
	var spent int64
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if b.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *b.CategoryID) {
			continue
		}
		day := core.DateOf(tx.Date, loc)
		if day.Before(periodStart.Time) || day.After(periodEnd.Time) {
			continue
		}
		spent += tx.Amount.Cents
	}

	// status compares exact cents; pct is rounded for display only
	status := core.BudgetOK
	if limit := b.Amount.Cents; limit > 0 {
		switch {
		case spent >= limit:
			status = core.BudgetExceeded
		case spent*100 >= int64(b.AlertThreshold)*limit:
			status = core.BudgetWarning
		}
	}
	pct := percent(spent, b.Amount.Cents)

	return core.BudgetProgress{
		Budget:      b,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Spent:       core.MajorUnits(spent),
		Remaining:   core.MajorUnits(b.Amount.Cents - spent),
		Percentage:  pct,
		Status:      status,
	}
}

// GoalProgress reports how far a goal is from its target. The percentage
// is capped at 100.
func GoalProgress(g core.Goal, now time.Time) core.GoalProgress {
	p := core.GoalProgress{
		Goal:       g,
		Percentage: math.Min(percent(g.CurrentAmount.Cents, g.TargetAmount.Cents), 100),
		Remaining:  core.MajorUnits(max(g.TargetAmount.Cents-g.CurrentAmount.Cents, 0)),
	}
	if g.Deadline != nil {
		loc := now.Location()
		days := core.DateOf(now, loc).DaysUntil(core.DateOf(*g.Deadline, loc))
		p.DaysLeft = &days
		p.Overdue = days < 0 && !g.IsCompleted
	}
	return p
}

// SummarizeInvestments totals a portfolio and splits it by investment type.
// Allocation percentages are relative to the current total.
func SummarizeInvestments(positions []core.InvestmentPosition) core.InvestmentSummary {
	var invested, current int64
	byType := make(map[core.InvestmentType]int64)
	for _, p := range positions {
		invested += p.InitialAmount.Cents
		current += p.CurrentAmount.Cents
		byType[p.Type] += p.CurrentAmount.Cents
	}

	s := core.InvestmentSummary{
		TotalInvested: core.MajorUnits(invested),
		TotalCurrent:  core.MajorUnits(current),
		TotalReturn:   core.MajorUnits(current - invested),
		ReturnPercent: percent(current-invested, invested),
		Allocation:    []core.AllocationSlice{},
	}
	for _, t := range core.InvestmentTypes() {
		cents, ok := byType[t]
		if !ok {
			continue
		}
		s.Allocation = append(s.Allocation, core.AllocationSlice{
			Type:       t,
			Total:      core.MajorUnits(cents),
			Percentage: percent(cents, current),
		})
	}
	return s
}

// Summarize builds the dashboard overview. recent is expected newest first;
// its income and expense totals are reported alongside the balances.
func Summarize(accounts []core.Account, cards []core.CreditCard, recent []core.Transaction) core.Overview {
	var limit, income, expenses int64
	activeCards := 0
	for _, c := range cards {
		if !c.IsActive {
			continue
		}
		activeCards++
		limit += c.CreditLimit.Cents
	}
	for _, tx := range recent {
		switch tx.Type {
		case core.Income:
			income += tx.Amount.Cents
		case core.Expense:
			expenses += tx.Amount.Cents
		}
	}
	if recent == nil {
		recent = []core.Transaction{}
	}
	return core.Overview{
		TotalBalance:     TotalBalance(accounts).Major(),
		TotalCreditLimit: core.MajorUnits(limit),
		RecentIncome:     core.MajorUnits(income),
		RecentExpenses:   core.MajorUnits(expenses),
		AccountCount:     len(accounts),
		CreditCardCount:  activeCards,
		Recent:           recent,
	}
}

// DueReminders returns the open reminders whose notification window has
// started: dueDate - notifyBefore days is today or earlier. Results are
// ordered by due date.
func DueReminders(reminders []core.Reminder, now time.Time) []core.DueReminder {
	loc := now.Location()
	today := core.DateOf(now, loc)
	out := []core.DueReminder{}
	for _, r := range reminders {
		if r.IsCompleted {
			continue
		}
		until := today.DaysUntil(core.DateOf(r.DueDate, loc))
		if until > r.NotifyBefore {
			continue
		}
		out = append(out, core.DueReminder{Reminder: r, DaysUntil: until})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Reminder.DueDate.Before(out[j].Reminder.DueDate)
	})
	return out
}
