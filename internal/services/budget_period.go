// Package services holds the business logic between the RPC layer and the
// stores.
//
// This file resolves which calendar days a budget currently covers. Each
// budget period type has its own resolver, looked up in a registry.
package services

import (
	"fmt"
	"sync"
	"time"

	"financas/internal/core"
)

// PeriodResolver returns the inclusive day range a budget measures on today.
type PeriodResolver interface {
	Resolve(b core.Budget, today core.Date, loc *time.Location) (start, end core.Date, err error)
}

// MonthlyResolver covers the calendar month containing today.
type MonthlyResolver struct{}

func (MonthlyResolver) Resolve(_ core.Budget, today core.Date, _ *time.Location) (core.Date, core.Date, error) {
	start := core.NewDate(today.Year(), int(today.Month()), 1)
	end := core.NewDate(today.Year(), int(today.Month())+1, 0)
	return start, end, nil
}

// YearlyResolver covers the calendar year containing today.
type YearlyResolver struct{}

func (YearlyResolver) Resolve(_ core.Budget, today core.Date, _ *time.Location) (core.Date, core.Date, error) {
	return core.NewDate(today.Year(), 1, 1), core.NewDate(today.Year(), 12, 31), nil
}

// CustomResolver uses the budget's own start and end dates.
type CustomResolver struct{}

func (CustomResolver) Resolve(b core.Budget, _ core.Date, loc *time.Location) (core.Date, core.Date, error) {
	if b.StartDate == nil || b.EndDate == nil {
		return core.Date{}, core.Date{}, fmt.Errorf("%w: custom budget %d has no date range", core.ErrInvalidArgument, b.ID)
	}
	return core.DateOf(*b.StartDate, loc), core.DateOf(*b.EndDate, loc), nil
}

var (
	resolversMu     sync.RWMutex
	periodResolvers = map[core.BudgetPeriod]PeriodResolver{
		core.Monthly: MonthlyResolver{},
		core.Yearly:  YearlyResolver{},
		core.Custom:  CustomResolver{},
	}
)

// GetPeriodResolver returns the resolver for a budget period type.
func GetPeriodResolver(period core.BudgetPeriod) (PeriodResolver, error) {
	resolversMu.RLock()
	r, ok := periodResolvers[period]
	resolversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown budget period: %s", period)
	}
	return r, nil
}

// RegisterPeriodResolver adds or replaces the resolver for a period type.
func RegisterPeriodResolver(period core.BudgetPeriod, r PeriodResolver) {
	resolversMu.Lock()
	defer resolversMu.Unlock()
	periodResolvers[period] = r
}
