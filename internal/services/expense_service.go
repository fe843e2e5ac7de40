package services

import (
	"context"
	"fmt"
	"strconv"

	"babysteps/internal/api"
	"babysteps/internal/backend"
	"babysteps/internal/cache"
	"babysteps/internal/core"
	"babysteps/internal/log"
)

// ExpenseService fronts the expense and category endpoints. The category
// catalog is near-static, so it goes through the shared LRU cache.
type ExpenseService struct {
	backend    backend.Backend
	categories *cache.LRUCache[[]core.Category]
	logger     *log.Logger
}

func NewExpenseService(b backend.Backend, categories *cache.LRUCache[[]core.Category], logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		backend:    b,
		categories: categories,
		logger:     logger.WithComponent(log.ComponentExpense),
	}
}

// List returns the user's expenses, optionally narrowed by date range and
// category.
func (s *ExpenseService) List(ctx context.Context, filter api.ExpenseFilter) ([]core.Expense, error) {
	expenses, err := s.backend.ListExpenses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Create validates and saves a new expense. The backend enforces the
// one-per-(user, date, category) constraint; its message is surfaced
// verbatim on conflict.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.backend.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		log.FieldUserID, created.UserID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldCategory, created.CategoryName)
	return created, nil
}

// Categories returns the category catalog, served from cache when warm.
func (s *ExpenseService) Categories(ctx context.Context) ([]core.Category, error) {
	const key = "categories"
	if cached, ok := s.categories.Get(key); ok {
		return cached, nil
	}

	categories, err := s.backend.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	s.categories.Set(key, categories)
	return categories, nil
}

// CategoryName resolves a category id against the cached catalog.
func (s *ExpenseService) CategoryName(ctx context.Context, categoryID int64) (string, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		if c.CategoryID == categoryID {
			return c.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", core.ErrInvalidCategory, strconv.FormatInt(categoryID, 10))
}

// MonthlySummary returns month-to-date spending against the user's budget.
func (s *ExpenseService) MonthlySummary(ctx context.Context) (core.MonthlySummary, error) {
	summary, err := s.backend.MonthlySummary(ctx)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("monthly summary: %w", err)
	}
	return summary, nil
}
