package stats

import (
	"sort"
	"time"

	"financas/internal/core"
)

// Placeholders used when an expense has no category or its category is gone.
const (
	UncategorizedName  = "Sem categoria"
	UncategorizedIcon  = "📦"
	UncategorizedColor = "#888888"
)

// DateRange is an inclusive time range; a nil bound is unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t lies within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// AggregateExpenses totals expense transactions per category within r.
// Income and transfers are ignored. Expenses without a category share one
// bucket with a nil CategoryID. Results are ordered by total descending,
// then by name.
func AggregateExpenses(txs []core.Transaction, categories []core.Category, r DateRange) []core.CategoryExpense {
	byID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	type bucket struct {
		id    *int64
		cents int64
	}
	var none bucket
	buckets := make(map[int64]*bucket)
	for _, tx := range txs {
		if tx.Type != core.Expense || !r.Contains(tx.Date) {
			continue
		}
		if tx.CategoryID == nil {
			none.cents += tx.Amount.Cents
			continue
		}
		b, ok := buckets[*tx.CategoryID]
		if !ok {
			id := *tx.CategoryID
			b = &bucket{id: &id}
			buckets[id] = b
		}
		b.cents += tx.Amount.Cents
	}

	out := make([]core.CategoryExpense, 0, len(buckets)+1)
	for id, b := range buckets {
		row := core.CategoryExpense{
			CategoryID:    b.id,
			CategoryName:  UncategorizedName,
			CategoryIcon:  UncategorizedIcon,
			CategoryColor: UncategorizedColor,
			Total:         core.MajorUnits(b.cents),
		}
		if c, ok := byID[id]; ok {
			if c.Name != "" {
				row.CategoryName = c.Name
			}
			if c.Icon != "" {
				row.CategoryIcon = c.Icon
			}
			if c.Color != "" {
				row.CategoryColor = c.Color
			}
		}
		out = append(out, row)
	}
	if none.cents != 0 {
		out = append(out, core.CategoryExpense{
			CategoryName:  UncategorizedName,
			CategoryIcon:  UncategorizedIcon,
			CategoryColor: UncategorizedColor,
			Total:         core.MajorUnits(none.cents),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		if out[i].CategoryName != out[j].CategoryName {
			return out[i].CategoryName < out[j].CategoryName
		}
		return idOrZero(out[i].CategoryID) < idOrZero(out[j].CategoryID)
	})
	return out
}
