package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"babysteps/internal/api"
	"babysteps/internal/cache"
	"babysteps/internal/core"
	"babysteps/internal/services"
)

var (
	flagExpYear     int
	flagExpMonth    int
	flagExpCategory int64

	flagAddDate     string
	flagAddCategory string
	flagAddAmount   string
)

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "List and record expenses",
}

var expensesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a month's expenses",
	RunE:  runExpensesList,
}

var expensesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	RunE:  runExpensesAdd,
}

func init() {
	now := time.Now()
	expensesListCmd.Flags().IntVar(&flagExpYear, "year", now.Year(), "Year to list")
	expensesListCmd.Flags().IntVar(&flagExpMonth, "month", int(now.Month()), "Month to list (1-12)")
	expensesListCmd.Flags().Int64Var(&flagExpCategory, "category", 0, "Filter by category id")

	expensesAddCmd.Flags().StringVar(&flagAddDate, "date", now.Format("2006-01-02"), "Expense date (YYYY-MM-DD)")
	expensesAddCmd.Flags().StringVar(&flagAddCategory, "category", "", "Category name or id")
	expensesAddCmd.Flags().StringVar(&flagAddAmount, "amount", "", "Amount, e.g. 12.34")
	_ = expensesAddCmd.MarkFlagRequired("category")
	_ = expensesAddCmd.MarkFlagRequired("amount")

	expensesCmd.AddCommand(expensesListCmd, expensesAddCmd)
	rootCmd.AddCommand(expensesCmd)
}

func newExpenseService(s *session) *services.ExpenseService {
	categories := cache.NewLRUCache[[]core.Category](8, time.Minute)
	return services.NewExpenseService(s.backend, categories, logger())
}

func runExpensesList(_ *cobra.Command, _ []string) error {
	s, err := connect()
	if err != nil {
		return err
	}
	if flagExpMonth < 1 || flagExpMonth > 12 {
		return fmt.Errorf("invalid month: %d", flagExpMonth)
	}
	svc := newExpenseService(s)
	ctx := s.ctx()

	first := core.NewDate(flagExpYear, flagExpMonth, 1)
	last := core.Date{Time: first.AddDate(0, 1, -1)}

	expenses, err := svc.List(ctx, api.ExpenseFilter{
		UserID:     s.user.UserID,
		DateFrom:   first,
		DateTo:     last,
		CategoryID: flagExpCategory,
	})
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	if len(expenses) == 0 {
		fmt.Println(mutedStyle.Render("No expenses for this period."))
		return nil
	}

	var total int64
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []string{
			e.ExpenseDate.String(),
			e.CategoryName,
			core.FormatDollars(e.Amount.Cents),
		})
		total += e.Amount.Cents
	}
	fmt.Print(renderTable([]string{"Date", "Category", "Amount"}, rows))
	fmt.Printf("\nTotal: %s across %d expenses\n", core.FormatDollars(total), len(expenses))

	if summary, err := svc.MonthlySummary(ctx); err == nil && summary.Budget.Valid {
		fmt.Printf("Budget: %s spent of %s (%.0f%%)\n",
			core.FormatDollars(summary.TotalSpent.Cents),
			core.FormatDollars(summary.Budget.Cents),
			summary.Percentage)
	}
	return nil
}

func runExpensesAdd(_ *cobra.Command, _ []string) error {
	s, err := connect()
	if err != nil {
		return err
	}
	svc := newExpenseService(s)
	ctx := s.ctx()

	date, err := core.ParseDate(flagAddDate)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", flagAddDate)
	}
	amount, err := core.ParseDecimal(flagAddAmount)
	if err != nil || amount.Cents <= 0 {
		return fmt.Errorf("invalid amount %q", flagAddAmount)
	}
	categoryID, err := resolveCategory(s, svc, flagAddCategory)
	if err != nil {
		return err
	}

	created, err := svc.Create(ctx, core.Expense{
		ExpenseDate: date,
		UserID:      s.user.UserID,
		CategoryID:  categoryID,
		Amount:      amount,
	})
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	fmt.Printf("Recorded %s on %s (%s)\n",
		core.FormatDollars(created.Amount.Cents), created.ExpenseDate, created.CategoryName)
	return nil
}

// resolveCategory accepts a category id or a case-insensitive name.
func resolveCategory(s *session, svc *services.ExpenseService, raw string) (int64, error) {
	categories, err := svc.Categories(s.ctx())
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, raw) || strconv.FormatInt(c.CategoryID, 10) == raw {
			return c.CategoryID, nil
		}
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return 0, fmt.Errorf("unknown category %q, available: %v", raw, names)
}
