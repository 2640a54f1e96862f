package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/cache"
	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/ports"
	"financas/internal/stats"
)

const overviewRecentLimit = 10

// StatisticsConfig bounds the statistics queries.
type StatisticsConfig struct {
	NetWorthDefaultDays int
	NetWorthMaxDays     int
	Location            *time.Location
}

// StatisticsService fetches what a report needs, concurrently where the
// reads are independent, and hands it to the pure functions in stats.
// Results are cached per user until the next mutation.
type StatisticsService struct {
	store  ports.Store
	cache  cache.Cache[any]
	cfg    StatisticsConfig
	now    func() time.Time
	logger *applog.Logger
}

// NewStatisticsService wires the service. c may be nil to disable caching.
func NewStatisticsService(store ports.Store, c cache.Cache[any], cfg StatisticsConfig, logger *applog.Logger) *StatisticsService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.NetWorthDefaultDays <= 0 {
		cfg.NetWorthDefaultDays = 30
	}
	if cfg.NetWorthMaxDays < cfg.NetWorthDefaultDays {
		cfg.NetWorthMaxDays = cfg.NetWorthDefaultDays
	}
	return &StatisticsService{
		store:  store,
		cache:  c,
		cfg:    cfg,
		now:    time.Now,
		logger: logger.WithComponent(applog.ComponentStats),
	}
}

// InvalidateUser implements Invalidator.
func (s *StatisticsService) InvalidateUser(userID int64) {
	if s.cache == nil {
		return
	}
	if n := cache.InvalidateUser(s.cache, userID); n > 0 {
		s.logger.Debug("Invalidated cached statistics", applog.FieldUserID, userID, applog.FieldCount, n)
	}
}

// cached returns the cached report for key, loading and storing it on a
// miss. Callers always get their own copy from clone; the stored value is
// never handed out.
func cached[T any](s *StatisticsService, key string, clone func(T) T, load func() (T, error)) (T, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if typed, ok := v.(T); ok {
				return clone(typed), nil
			}
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if s.cache != nil {
		s.cache.Set(key, v)
	}
	return clone(v), nil
}

func cloneOverview(o core.Overview) core.Overview {
	o.Recent = slices.Clone(o.Recent)
	return o
}

func cloneInvestmentSummary(sum core.InvestmentSummary) core.InvestmentSummary {
	sum.Allocation = slices.Clone(sum.Allocation)
	return sum
}

func (s *StatisticsService) today() (time.Time, core.Date) {
	now := s.now().In(s.cfg.Location)
	return now, core.DateOf(now, s.cfg.Location)
}

// ExpensesByCategory totals the user's expenses per category, optionally
// bounded by calendar days.
func (s *StatisticsService) ExpensesByCategory(ctx context.Context, userID int64, in DateRangeInput) ([]core.CategoryExpense, error) {
	var r stats.DateRange
	f := ports.TransactionFilter{Type: core.Expense}
	if in.StartDate != nil {
		start := in.StartDate.In(s.cfg.Location)
		r.Start, f.From = &start, &start
	}
	if in.EndDate != nil {
		end := in.EndDate.AddDays(1).In(s.cfg.Location).Add(-time.Nanosecond)
		r.End, f.To = &end, &end
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return nil, fmt.Errorf("%w: end date must not precede start date", core.ErrInvalidArgument)
	}

	key := cache.UserKey(userID, "expensesByCategory", dateKey(in.StartDate), dateKey(in.EndDate))
	return cached(s, key, slices.Clone[[]core.CategoryExpense], func() ([]core.CategoryExpense, error) {
		var (
			categories []core.Category
			txs        []core.Transaction
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			categories, err = s.store.ListCategories(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			txs, err = s.store.ListTransactions(gctx, userID, f)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("load expenses: %w", err)
		}
		return stats.AggregateExpenses(txs, categories, r), nil
	})
}

func dateKey(d *core.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

// NetWorthEvolution reconstructs the daily net worth over the trailing
// window. Days defaults to the configured value and is capped at the
// configured maximum.
func (s *StatisticsService) NetWorthEvolution(ctx context.Context, userID int64, in NetWorthInput) ([]core.NetWorthPoint, error) {
	days := s.cfg.NetWorthDefaultDays
	if in.Days != nil {
		days = *in.Days
	}
	if days < 0 {
		return nil, core.ErrInvalidWindow
	}
	days = min(days, s.cfg.NetWorthMaxDays)

	now, today := s.today()
	key := cache.UserKey(userID, "netWorth", days, today.String())
	return cached(s, key, slices.Clone[[]core.NetWorthPoint], func() ([]core.NetWorthPoint, error) {
		from := today.AddDays(-days).In(s.cfg.Location)

		var (
			accounts []core.Account
			txs      []core.Transaction
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			accounts, err = s.store.ListAccounts(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			txs, err = s.store.ListTransactions(gctx, userID, ports.TransactionFilter{From: &from})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("load net worth inputs: %w", err)
		}

		points, err := stats.ReconstructNetWorth(stats.TotalBalance(accounts), txs, days, now)
		if err != nil {
			return nil, err
		}
		s.logger.DebugContext(ctx, "Reconstructed net worth",
			applog.FieldUserID, userID,
			applog.FieldWindowDays, days,
			applog.FieldCount, len(txs))
		return points, nil
	})
}

// Overview summarizes balances, card limits and the current month's flow.
func (s *StatisticsService) Overview(ctx context.Context, userID int64) (core.Overview, error) {
	_, today := s.today()
	key := cache.UserKey(userID, "overview", today.String())
	return cached(s, key, cloneOverview, func() (core.Overview, error) {
		monthStart := core.NewDate(today.Year(), int(today.Month()), 1).In(s.cfg.Location)

		var (
			accounts []core.Account
			cards    []core.CreditCard
			recent   []core.Transaction
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			accounts, err = s.store.ListAccounts(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			cards, err = s.store.ListCreditCards(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			recent, err = s.store.ListTransactions(gctx, userID, ports.TransactionFilter{From: &monthStart})
			return err
		})
		if err := g.Wait(); err != nil {
			return core.Overview{}, fmt.Errorf("load overview: %w", err)
		}

		o := stats.Summarize(accounts, cards, recent)
		if len(o.Recent) > overviewRecentLimit {
			o.Recent = o.Recent[:overviewRecentLimit]
		}
		return o, nil
	})
}

// BudgetsProgress measures every active budget against its current period.
func (s *StatisticsService) BudgetsProgress(ctx context.Context, userID int64) ([]core.BudgetProgress, error) {
	_, today := s.today()
	key := cache.UserKey(userID, "budgets", today.String())
	return cached(s, key, slices.Clone[[]core.BudgetProgress], func() ([]core.BudgetProgress, error) {
		budgets, err := s.store.ListBudgets(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list budgets: %w", err)
		}

		type period struct{ start, end core.Date }
		periods := make([]period, 0, len(budgets))
		active := make([]core.Budget, 0, len(budgets))
		var from, to core.Date
		for _, b := range budgets {
			if !b.IsActive {
				continue
			}
			resolver, err := GetPeriodResolver(b.Period)
			if err != nil {
				return nil, err
			}
			start, end, err := resolver.Resolve(b, today, s.cfg.Location)
			if err != nil {
				return nil, err
			}
			if len(active) == 0 || start.Before(from.Time) {
				from = start
			}
			if len(active) == 0 || end.After(to.Time) {
				to = end
			}
			active = append(active, b)
			periods = append(periods, period{start, end})
		}

		out := make([]core.BudgetProgress, 0, len(active))
		if len(active) == 0 {
			return out, nil
		}

		fromT := from.In(s.cfg.Location)
		toT := to.AddDays(1).In(s.cfg.Location).Add(-time.Nanosecond)
		expenses, err := s.store.ListTransactions(ctx, userID, ports.TransactionFilter{
			Type: core.Expense,
			From: &fromT,
			To:   &toT,
		})
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}

		for i, b := range active {
			out = append(out, stats.BudgetProgress(b, periods[i].start, periods[i].end, expenses, s.cfg.Location))
		}
		return out, nil
	})
}

func (s *StatisticsService) GoalsProgress(ctx context.Context, userID int64) ([]core.GoalProgress, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	now, _ := s.today()
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, stats.GoalProgress(g, now))
	}
	return out, nil
}

func (s *StatisticsService) InvestmentSummary(ctx context.Context, userID int64) (core.InvestmentSummary, error) {
	key := cache.UserKey(userID, "investments")
	return cached(s, key, cloneInvestmentSummary, func() (core.InvestmentSummary, error) {
		positions, err := s.store.ListInvestments(ctx, userID)
		if err != nil {
			return core.InvestmentSummary{}, fmt.Errorf("list investments: %w", err)
		}
		return stats.SummarizeInvestments(positions), nil
	})
}

// DueReminders lists the user's reminders whose notice window has started.
func (s *StatisticsService) DueReminders(ctx context.Context, userID int64) ([]core.DueReminder, error) {
	reminders, err := s.store.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	now, _ := s.today()
	return stats.DueReminders(reminders, now), nil
}
