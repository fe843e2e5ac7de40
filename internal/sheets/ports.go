// Package sheets defines the ports for the spreadsheet export. The google
// subpackage implements them over the Sheets API; the memory subpackage is
// the in-process fake used by tests.
package sheets

import (
	"context"

	"babysteps/internal/core"
)

// Ports for outbound export adapters.
type (
	// ExpenseWriter appends expense rows to an export destination and
	// returns a reference to the written range.
	ExpenseWriter interface {
		Append(ctx context.Context, expenses []core.Expense) (rowRef string, err error)
	}

	// SummaryWriter records a month's spending-vs-budget totals.
	SummaryWriter interface {
		WriteSummary(ctx context.Context, year int, month int, summary core.MonthlySummary) error
	}
)

// Row converts one expense to the export column layout:
// date, category, amount in dollars, username.
func Row(e core.Expense) []any {
	return []any{
		e.ExpenseDate.String(),
		e.CategoryName,
		e.Amount.Dollars(),
		e.UserUsername,
	}
}

// Rows converts a batch of expenses, skipping rows with no valid amount.
func Rows(expenses []core.Expense) [][]any {
	out := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		if !e.Amount.Valid {
			continue
		}
		out = append(out, Row(e))
	}
	return out
}
