package http

import (
	"net/http"
	"strconv"

	"babysteps/internal/api"
	"babysteps/internal/core"
	"babysteps/internal/log"
)

type expensesPage struct {
	basePage
	Expenses   []core.Expense
	Categories []core.Category
	Monthly    core.MonthlySummary

	Filter struct {
		DateFrom   string
		DateTo     string
		CategoryID int64
	}

	FormError string
	LoadError string
}

// handleExpenses lists expenses (GET, with optional filters) and records a
// new one (POST). Creation errors, including the backend's duplicate
// constraint, render inline above the form.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	switch r.Method {
	case http.MethodGet:
		s.renderExpenses(w, r, pc, "")
	case http.MethodPost:
		s.createExpense(w, r, pc)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderExpenses(w http.ResponseWriter, r *http.Request, pc *pageContext, formError string) {
	user, _ := pc.User()
	ctx := authedCtx(r, pc)

	page := expensesPage{
		basePage:  s.base("Expenses", pc),
		FormError: formError,
	}

	filter := api.ExpenseFilter{UserID: user.UserID}
	q := r.URL.Query()
	if raw := q.Get("date_from"); raw != "" {
		if d, err := core.ParseDate(raw); err == nil {
			filter.DateFrom = d
			page.Filter.DateFrom = d.String()
		}
	}
	if raw := q.Get("date_to"); raw != "" {
		if d, err := core.ParseDate(raw); err == nil {
			filter.DateTo = d
			page.Filter.DateTo = d.String()
		}
	}
	if raw := q.Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.CategoryID = id
			page.Filter.CategoryID = id
		}
	}

	expenses, err := s.services.Expense.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Expense list failed",
			log.FieldUserID, user.UserID, log.FieldError, err.Error())
		page.LoadError = "Could not load expenses"
		s.render(w, r, "expenses.html", page)
		return
	}
	page.Expenses = expenses

	if categories, err := s.services.Expense.Categories(ctx); err == nil {
		page.Categories = categories
	} else {
		s.logger.WarnContext(r.Context(), "Category list failed", log.FieldError, err.Error())
	}

	if monthly, err := s.services.Expense.MonthlySummary(ctx); err == nil {
		page.Monthly = monthly
	} else {
		s.logger.WarnContext(r.Context(), "Monthly summary failed", log.FieldError, err.Error())
	}

	s.render(w, r, "expenses.html", page)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if err := r.ParseForm(); err != nil {
		s.renderExpenses(w, r, pc, "Invalid form submission")
		return
	}

	user, _ := pc.User()

	date, err := core.ParseDate(formValue(r, "expense_date"))
	if err != nil {
		s.renderExpenses(w, r, pc, "Enter a valid date")
		return
	}
	categoryID, err := strconv.ParseInt(formValue(r, "category_id"), 10, 64)
	if err != nil || categoryID <= 0 {
		s.renderExpenses(w, r, pc, "Choose a category")
		return
	}
	amount, err := core.ParseDecimal(formValue(r, "amount"))
	if err != nil || amount.Cents <= 0 {
		s.renderExpenses(w, r, pc, "Enter a valid amount")
		return
	}

	expense := core.Expense{
		ExpenseDate: date,
		UserID:      user.UserID,
		CategoryID:  categoryID,
		Amount:      amount,
	}

	if _, err := s.services.Expense.Create(authedCtx(r, pc), expense); err != nil {
		s.logger.WarnContext(r.Context(), "Expense create failed",
			log.FieldUserID, user.UserID, log.FieldError, err.Error())
		s.renderExpenses(w, r, pc, backendMessage(err, "Could not save the expense"))
		return
	}

	http.Redirect(w, r, "/expenses", http.StatusSeeOther)
}
