package stats

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"financas/internal/core"
)

var today = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func tx(typ core.TransactionType, cents int64, date time.Time) core.Transaction {
	return core.Transaction{Type: typ, Amount: core.Cents(cents), Date: date, Description: "t"}
}

func values(points []core.NetWorthPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.NetWorth
	}
	return out
}

func TestReconstructNetWorth_LengthAndOrdering(t *testing.T) {
	for _, days := range []int{0, 1, 7, 30, 365} {
		points, err := ReconstructNetWorth(core.Cents(1000), nil, days, today)
		if err != nil {
			t.Fatalf("days=%d: %v", days, err)
		}
		if len(points) != days+1 {
			t.Fatalf("days=%d: got %d points", days, len(points))
		}
		if got := points[len(points)-1].Date.String(); got != "2024-06-15" {
			t.Fatalf("days=%d: last point %s, want today", days, got)
		}
		for i := 1; i < len(points); i++ {
			if points[i-1].Date.DaysUntil(points[i].Date) != 1 {
				t.Fatalf("days=%d: gap between %s and %s", days, points[i-1].Date, points[i].Date)
			}
		}
	}
}

func TestReconstructNetWorth_NegativeWindow(t *testing.T) {
	_, err := ReconstructNetWorth(core.Cents(1000), nil, -1, today)
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestReconstructNetWorth_FlatLine(t *testing.T) {
	points, err := ReconstructNetWorth(core.Cents(500000), nil, 7, today)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 8 {
		t.Fatalf("got %d points", len(points))
	}
	for _, p := range points {
		if p.NetWorth != 5000.00 {
			t.Fatalf("%s: got %v, want 5000.00", p.Date, p.NetWorth)
		}
	}
}

func TestReconstructNetWorth_ZeroWindow(t *testing.T) {
	txs := []core.Transaction{tx(core.Income, 9999, today), tx(core.Expense, 1, daysAgo(2))}
	points, err := ReconstructNetWorth(core.Cents(123456), txs, 0, today)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 || points[0].NetWorth != 1234.56 {
		t.Fatalf("got %+v", points)
	}
}

func TestReconstructNetWorth_SingleExpense(t *testing.T) {
	txs := []core.Transaction{tx(core.Expense, 20000, daysAgo(3))}
	points, err := ReconstructNetWorth(core.Cents(100000), txs, 7, today)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1200, 1200, 1200, 1200, 1000, 1000, 1000, 1000}
	if got := values(points); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReconstructNetWorth_SameDayAccumulates(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, 5000, daysAgo(1).Add(-2*time.Hour)),
		tx(core.Expense, 2000, daysAgo(1)),
		tx(core.Expense, 1000, daysAgo(1).Add(3*time.Hour)),
	}
	points, err := ReconstructNetWorth(core.Cents(10000), txs, 2, today)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{80, 100, 100}
	if got := values(points); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReconstructNetWorth_TransferNeutral(t *testing.T) {
	base := []core.Transaction{tx(core.Income, 30000, daysAgo(5)), tx(core.Expense, 4500, daysAgo(2))}
	withTransfers := append([]core.Transaction{
		tx(core.Transfer, 99999, daysAgo(4)),
		tx(core.Transfer, 1, today),
	}, base...)

	a, _ := ReconstructNetWorth(core.Cents(200000), base, 10, today)
	b, _ := ReconstructNetWorth(core.Cents(200000), withTransfers, 10, today)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("transfers changed the series:\n%v\n%v", values(a), values(b))
	}
}

func TestReconstructNetWorth_WindowStartDayIsInWindow(t *testing.T) {
	// Dated exactly on the first day of a 7-day window.
	txs := []core.Transaction{tx(core.Income, 10000, daysAgo(7))}
	points, err := ReconstructNetWorth(core.Cents(50000), txs, 7, today)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range points {
		if p.NetWorth != 500 {
			t.Fatalf("%s: got %v, want 500 on every day", p.Date, p.NetWorth)
		}
	}

	// One day earlier it is already part of the starting balance.
	txs = []core.Transaction{tx(core.Income, 10000, daysAgo(8))}
	points, _ = ReconstructNetWorth(core.Cents(50000), txs, 7, today)
	for _, p := range points {
		if p.NetWorth != 500 {
			t.Fatalf("pre-window transaction leaked into %s: %v", p.Date, p.NetWorth)
		}
	}
}

func TestReconstructNetWorth_StartBalanceReversesWindow(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, 10000, daysAgo(7)),
		tx(core.Expense, 2500, daysAgo(3)),
	}
	points, _ := ReconstructNetWorth(core.Cents(50000), txs, 7, today)
	// Start balance 500 - 100 + 25 = 425; the income lands on day one.
	want := []float64{525, 525, 525, 525, 500, 500, 500, 500}
	if got := values(points); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReconstructNetWorth_FutureTransactionExcluded(t *testing.T) {
	txs := []core.Transaction{tx(core.Expense, 3000, today.AddDate(0, 0, 2))}
	points, _ := ReconstructNetWorth(core.Cents(10000), txs, 3, today)
	for _, p := range points {
		if p.NetWorth != 130 {
			t.Fatalf("%s: got %v, want 130", p.Date, p.NetWorth)
		}
	}
}

func TestReconstructNetWorth_Idempotent(t *testing.T) {
	txs := randomTransactions(rand.New(rand.NewSource(1)), 200, 40)
	a, _ := ReconstructNetWorth(core.Cents(777777), txs, 30, today)
	b, _ := ReconstructNetWorth(core.Cents(777777), txs, 30, today)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same input produced different output")
	}
}

func TestReconstructNetWorth_OrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	txs := randomTransactions(r, 100, 20)
	shuffled := append([]core.Transaction(nil), txs...)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	a, _ := ReconstructNetWorth(core.Cents(5000), txs, 20, today)
	b, _ := ReconstructNetWorth(core.Cents(5000), shuffled, 20, today)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("input order changed the output")
	}
}

func TestReconstructNetWorth_Additive(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	const days = 15
	t1 := randomTransactions(r, 30, days)
	t2 := randomTransactions(r, 30, days)
	b1, b2 := int64(120000), int64(-4500)

	s1, _ := ReconstructNetWorth(core.Cents(b1), t1, days, today)
	s2, _ := ReconstructNetWorth(core.Cents(b2), t2, days, today)
	sum, _ := ReconstructNetWorth(core.Cents(b1+b2), append(append([]core.Transaction{}, t1...), t2...), days, today)

	for i := range sum {
		if cents(sum[i].NetWorth) != cents(s1[i].NetWorth)+cents(s2[i].NetWorth) {
			t.Fatalf("day %d: %v != %v + %v", i, sum[i].NetWorth, s1[i].NetWorth, s2[i].NetWorth)
		}
	}
}

func TestReconstructNetWorth_LocalCalendarDays(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, loc)
	// 23:30 local on the 13th is already the 14th in UTC.
	late := time.Date(2024, 6, 13, 23, 30, 0, 0, loc)
	points, _ := ReconstructNetWorth(core.Cents(10000), []core.Transaction{tx(core.Expense, 1000, late)}, 3, now)
	want := []float64{110, 100, 100, 100}
	if got := values(points); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func cents(v float64) int64 {
	if v < 0 {
		return int64(v*100 - 0.5)
	}
	return int64(v*100 + 0.5)
}

func randomTransactions(r *rand.Rand, n, days int) []core.Transaction {
	types := []core.TransactionType{core.Income, core.Expense, core.Transfer}
	out := make([]core.Transaction, n)
	for i := range out {
		out[i] = tx(types[r.Intn(len(types))], int64(1+r.Intn(100000)), daysAgo(r.Intn(days+1)).Add(time.Duration(r.Intn(3600))*time.Second))
	}
	return out
}
