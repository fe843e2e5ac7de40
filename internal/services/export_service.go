package services

import (
	"context"
	"fmt"
	"time"

	"babysteps/internal/api"
	"babysteps/internal/backend"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/sheets"
)

// ExportService copies a month of expenses into the configured spreadsheet.
// The summary write is best-effort: a missing or failing summary never
// blocks the row export.
type ExportService struct {
	backend   backend.Backend
	writer    sheets.ExpenseWriter
	summaries sheets.SummaryWriter
	logger    *log.Logger
}

// NewExportService wires the export. summaries may be nil when the
// destination has no summary area.
func NewExportService(b backend.Backend, writer sheets.ExpenseWriter, summaries sheets.SummaryWriter, logger *log.Logger) *ExportService {
	return &ExportService{
		backend:   b,
		writer:    writer,
		summaries: summaries,
		logger:    logger.WithComponent(log.ComponentSheets),
	}
}

// ExportMonth appends the user's expenses for a calendar month and returns
// the exported count with the written range reference.
func (s *ExportService) ExportMonth(ctx context.Context, userID int64, year int, month int) (int, string, error) {
	if month < 1 || month > 12 {
		return 0, "", fmt.Errorf("invalid month: %d", month)
	}

	first := core.NewDate(year, month, 1)
	last := core.Date{Time: first.AddDate(0, 1, -1)}

	expenses, err := s.backend.ListExpenses(ctx, api.ExpenseFilter{
		UserID:   userID,
		DateFrom: first,
		DateTo:   last,
	})
	if err != nil {
		return 0, "", fmt.Errorf("list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return 0, "", nil
	}

	ref, err := s.writer.Append(ctx, expenses)
	if err != nil {
		return 0, "", fmt.Errorf("append rows: %w", err)
	}

	s.logger.InfoContext(ctx, "Expenses exported",
		log.FieldUserID, userID,
		log.FieldOperation, log.OpExport,
		log.FieldSheetsRef, ref,
		"count", len(expenses))

	s.writeSummary(ctx, year, month)
	return len(expenses), ref, nil
}

// writeSummary records the month totals next to the rows when the current
// month is being exported; past months have no live summary endpoint.
func (s *ExportService) writeSummary(ctx context.Context, year int, month int) {
	if s.summaries == nil {
		return
	}
	now := time.Now()
	if year != now.Year() || month != int(now.Month()) {
		return
	}

	summary, err := s.backend.MonthlySummary(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Summary fetch failed, rows exported without totals",
			log.FieldError, err.Error())
		return
	}
	if err := s.summaries.WriteSummary(ctx, year, month, summary); err != nil {
		s.logger.WarnContext(ctx, "Summary write failed",
			log.FieldError, err.Error())
	}
}
