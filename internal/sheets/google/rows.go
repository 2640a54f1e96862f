package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

// lastColumn is the column of the final header cell.
const lastColumn = "G"

func header() []any {
	return []any{"ID", "Data", "Tipo", "Descrição", "Categoria", "Valor", "Pago"}
}

var typeLabels = map[core.TransactionType]string{
	core.Income:   "Receita",
	core.Expense:  "Despesa",
	core.Transfer: "Transferência",
}

func transactionRow(t core.Transaction, category string, loc *time.Location) []any {
	label, ok := typeLabels[t.Type]
	if !ok {
		label = string(t.Type)
	}
	paid := "Não"
	if t.IsPaid {
		paid = "Sim"
	}
	return []any{
		t.ID,
		t.Date.In(loc).Format("2006-01-02"),
		label,
		t.Description,
		category,
		t.Amount.Major(),
		paid,
	}
}

// findRow returns the 1-based sheet row holding id in column A, or 0.
func findRow(values [][]any, id int64) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(fmt.Sprint(row[0]))
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			// header or free text
			continue
		}
		if v == id {
			return i + 1
		}
	}
	return 0
}
