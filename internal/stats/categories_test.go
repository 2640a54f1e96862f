package stats

import (
	"testing"
	"time"

	"financas/internal/core"
)

func withCategory(t core.Transaction, id int64) core.Transaction {
	t.CategoryID = &id
	return t
}

func TestAggregateExpenses(t *testing.T) {
	cats := []core.Category{
		{ID: 1, Name: "Alimentação", Icon: "🍔", Color: "#ef4444"},
		{ID: 2, Name: "Transporte", Icon: "🚗", Color: "#f97316"},
	}
	txs := []core.Transaction{
		withCategory(tx(core.Expense, 3000, daysAgo(1)), 1),
		withCategory(tx(core.Expense, 7000, daysAgo(2)), 1),
		withCategory(tx(core.Expense, 5000, daysAgo(3)), 2),
		withCategory(tx(core.Income, 90000, daysAgo(1)), 1),
		tx(core.Transfer, 1234, daysAgo(1)),
	}

	got := AggregateExpenses(txs, cats, DateRange{})
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %+v", got)
	}
	if got[0].CategoryName != "Alimentação" || got[0].Total != 100.00 || got[0].CategoryIcon != "🍔" {
		t.Fatalf("unexpected first row %+v", got[0])
	}
	if got[1].CategoryName != "Transporte" || got[1].Total != 50.00 || *got[1].CategoryID != 2 {
		t.Fatalf("unexpected second row %+v", got[1])
	}
}

func TestAggregateExpenses_Placeholders(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, 1500, daysAgo(1)),
		tx(core.Expense, 500, daysAgo(1)),
		withCategory(tx(core.Expense, 100, daysAgo(1)), 42),
	}
	got := AggregateExpenses(txs, []core.Category{{ID: 42, Name: "Lazer"}}, DateRange{})
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %+v", got)
	}

	none := got[0]
	if none.CategoryID != nil || none.Total != 20 {
		t.Fatalf("uncategorized bucket wrong: %+v", none)
	}
	if none.CategoryName != UncategorizedName || none.CategoryIcon != UncategorizedIcon || none.CategoryColor != UncategorizedColor {
		t.Fatalf("placeholders missing: %+v", none)
	}

	lazer := got[1]
	if lazer.CategoryName != "Lazer" || lazer.CategoryIcon != UncategorizedIcon || lazer.CategoryColor != UncategorizedColor {
		t.Fatalf("missing metadata should fall back per field: %+v", lazer)
	}
}

func TestAggregateExpenses_DateRange(t *testing.T) {
	start := daysAgo(5)
	end := daysAgo(2)
	txs := []core.Transaction{
		withCategory(tx(core.Expense, 100, start), 1),
		withCategory(tx(core.Expense, 200, end), 1),
		withCategory(tx(core.Expense, 400, start.Add(-time.Second)), 1),
		withCategory(tx(core.Expense, 800, end.Add(time.Second)), 1),
	}

	cases := []struct {
		name string
		r    DateRange
		want float64
	}{
		{"unbounded", DateRange{}, 15},
		{"inclusive bounds", DateRange{Start: &start, End: &end}, 3},
		{"start only", DateRange{Start: &start}, 11},
		{"end only", DateRange{End: &end}, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AggregateExpenses(txs, nil, tc.r)
			if len(got) != 1 || got[0].Total != tc.want {
				t.Fatalf("got %+v, want total %v", got, tc.want)
			}
		})
	}
}

func TestAggregateExpenses_Empty(t *testing.T) {
	got := AggregateExpenses(nil, nil, DateRange{})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
