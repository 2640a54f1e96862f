// Package stats holds the pure report computations: net worth
// reconstruction, expense aggregation and the derived progress reports.
// Nothing here performs I/O; callers fetch data first and pass it in.
package stats

import (
	"time"

	"financas/internal/core"
)

// ReconstructNetWorth rebuilds the day-by-day net worth of the trailing
// window ending today.
//
// currentBalance is the balance as of now, which already reflects every
// recorded transaction. The balance at the start of the window is obtained
// by reversing every transaction dated on or after the window start; the
// series is then replayed forward one day at a time.
//
// The result has exactly windowDays+1 points in ascending date order.
// Transactions dated before the window start contribute nothing. A
// transaction dated after today is reversed but never replayed, so every
// point excludes it. Transfers move money between the user's own accounts
// and contribute zero.
func ReconstructNetWorth(currentBalance core.Money, txs []core.Transaction, windowDays int, today time.Time) ([]core.NetWorthPoint, error) {
	if windowDays < 0 {
		return nil, core.ErrInvalidWindow
	}

	loc := today.Location()
	end := core.DateOf(today, loc)
	start := end.AddDays(-windowDays)

	// deltas[i] holds the net change recorded on day start+i.
	deltas := make([]int64, windowDays+1)
	var reversed int64
	for _, tx := range txs {
		delta := tx.Type.Delta(tx.Amount)
		if delta == 0 {
			continue
		}
		offset := start.DaysUntil(core.DateOf(tx.Date, loc))
		if offset < 0 {
			continue
		}
		reversed += delta
		if offset <= windowDays {
			deltas[offset] += delta
		}
	}

	running := currentBalance.Cents - reversed
	points := make([]core.NetWorthPoint, windowDays+1)
	for i := range points {
		running += deltas[i]
		points[i] = core.NetWorthPoint{
			Date:     start.AddDays(i),
			NetWorth: core.MajorUnits(running),
		}
	}
	return points, nil
}

// TotalBalance sums the balances of the accounts that count towards net worth.
func TotalBalance(accounts []core.Account) core.Money {
	var total core.Money
	for _, a := range accounts {
		if a.IncludeInTotal {
			total = total.Add(a.Balance)
		}
	}
	return total
}
