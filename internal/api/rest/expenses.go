package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"babysteps/internal/api"
	"babysteps/internal/core"
)

func (c *Client) ListExpenses(ctx context.Context, filter api.ExpenseFilter) ([]core.Expense, error) {
	query := url.Values{}
	if filter.UserID > 0 {
		query.Set("user_id", strconv.FormatInt(filter.UserID, 10))
	}
	if !filter.DateFrom.IsZero() {
		query.Set("date_from", filter.DateFrom.String())
	}
	if !filter.DateTo.IsZero() {
		query.Set("date_to", filter.DateTo.String())
	}
	if filter.CategoryID > 0 {
		query.Set("category_id", strconv.FormatInt(filter.CategoryID, 10))
	}

	var expenses []core.Expense
	if err := c.do(ctx, http.MethodGet, "/api/expenses/", query, nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (c *Client) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var created core.Expense
	if err := c.do(ctx, http.MethodPost, "/api/expenses/", nil, e, &created); err != nil {
		return core.Expense{}, err
	}
	return created, nil
}

// MonthlySummary returns month-to-date spending against the budget for the
// token's user.
func (c *Client) MonthlySummary(ctx context.Context) (core.MonthlySummary, error) {
	var summary core.MonthlySummary
	if err := c.do(ctx, http.MethodGet, "/api/expenses/monthly-summary/", nil, nil, &summary); err != nil {
		return core.MonthlySummary{}, err
	}
	return summary, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var categories []core.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories/", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
