// Package memory is the in-process fake of the sheets ports.
package memory

import (
	"context"
	"fmt"
	"sync"

	"babysteps/internal/core"
	"babysteps/internal/sheets"
)

type Writer struct {
	mu        sync.Mutex
	rows      [][]any
	summaries map[string]core.MonthlySummary
}

var (
	_ sheets.ExpenseWriter = (*Writer)(nil)
	_ sheets.SummaryWriter = (*Writer)(nil)
)

func New() *Writer {
	return &Writer{summaries: make(map[string]core.MonthlySummary)}
}

func (w *Writer) Append(_ context.Context, expenses []core.Expense) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows := sheets.Rows(expenses)
	if len(rows) == 0 {
		return "", nil
	}
	start := len(w.rows) + 1
	w.rows = append(w.rows, rows...)
	return fmt.Sprintf("Expenses!A%d:D%d", start, len(w.rows)), nil
}

func (w *Writer) WriteSummary(_ context.Context, year int, month int, summary core.MonthlySummary) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month: %d", month)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.summaries[fmt.Sprintf("%04d-%02d", year, month)] = summary
	return nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() [][]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]any, len(w.rows))
	copy(out, w.rows)
	return out
}

// Summary returns the recorded summary for a month, if any.
func (w *Writer) Summary(year int, month int) (core.MonthlySummary, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.summaries[fmt.Sprintf("%04d-%02d", year, month)]
	return s, ok
}
