// Package memory is an in-process implementation of the api ports. It backs
// tests and the memory data backend used for local development without a
// running finance backend.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"babysteps/internal/api"
	"babysteps/internal/core"
)

type Store struct {
	mu sync.Mutex

	nextID     int64
	users      map[int64]core.Profile
	passwords  map[string]string // email -> password
	emails     map[string]int64  // email -> user id
	expenses   []core.Expense
	categories []core.Category
	responses  map[int64]core.FinanceResponse // response id -> record
	children   map[int64]core.ChildContribution
	milestones []core.Milestone
	userMs     map[int64]core.UserMilestone
}

// Ensure interface conformance.
var (
	_ api.AuthGateway      = (*Store)(nil)
	_ api.UserGateway      = (*Store)(nil)
	_ api.ExpenseGateway   = (*Store)(nil)
	_ api.CategoryGateway  = (*Store)(nil)
	_ api.ResponseGateway  = (*Store)(nil)
	_ api.ChildrenGateway  = (*Store)(nil)
	_ api.MilestoneGateway = (*Store)(nil)
)

func New() *Store {
	s := &Store{
		nextID:    1,
		users:     map[int64]core.Profile{},
		passwords: map[string]string{},
		emails:    map[string]int64{},
		responses: map[int64]core.FinanceResponse{},
		children:  map[int64]core.ChildContribution{},
		userMs:    map[int64]core.UserMilestone{},
	}
	for i, name := range []string{
		"Emergency Savings", "Full Emergency Savings", "Retirement Investing",
		"Children Contribution", "Home Mortgage", "Groceries", "Transport",
	} {
		s.categories = append(s.categories, core.Category{CategoryID: int64(i + 1), Name: name})
	}
	for i, title := range []string{
		"Starter Emergency Fund", "Debt Snowball", "Full Emergency Fund",
		"Retirement Investing", "College Fund", "Pay Off Home",
		"Build Wealth and Give",
	} {
		s.milestones = append(s.milestones, core.Milestone{MilestoneID: int64(i + 1), Title: title})
	}
	return s
}

func (s *Store) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// Seed registers a user directly, for tests and the dev backend.
func (s *Store) Seed(reg core.Registration) core.Profile {
	profile, err := s.Register(context.Background(), reg)
	if err != nil {
		panic(fmt.Sprintf("seed user: %v", err))
	}
	return profile
}

func (s *Store) Login(_ context.Context, email, password string) (api.LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	userID, ok := s.emails[email]
	if !ok || s.passwords[email] != password {
		return api.LoginResult{}, &api.Error{StatusCode: 401, Message: "No active account found with the given credentials"}
	}
	user := s.users[userID]
	return api.LoginResult{
		Access:  fmt.Sprintf("mem-access-%d", userID),
		Refresh: fmt.Sprintf("mem-refresh-%d", userID),
		User:    user,
	}, nil
}

func (s *Store) Register(_ context.Context, reg core.Registration) (core.Profile, error) {
	if err := reg.Validate(); err != nil {
		return core.Profile{}, &api.Error{StatusCode: 400, Message: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if _, exists := s.emails[email]; exists {
		return core.Profile{}, &api.Error{StatusCode: 400, Message: "user with this email already exists"}
	}

	profile := core.Profile{
		UserID:            s.allocID(),
		Username:          reg.Username,
		Email:             email,
		FirstName:         reg.FirstName,
		LastName:          reg.LastName,
		City:              reg.City,
		ProvinceState:     reg.ProvinceState,
		Country:           reg.Country,
		PostalCode:        reg.PostalCode,
		PhoneNumber:       reg.PhoneNumber,
		Salary:            reg.Salary,
		TotalBalance:      reg.TotalBalance,
		BudgetPreference:  reg.BudgetPreference,
		EmailNotification: reg.EmailNotification,
		CreatedAt:         time.Now().UTC(),
	}
	s.users[profile.UserID] = profile
	s.emails[email] = profile.UserID
	s.passwords[email] = reg.Password
	return profile, nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.users[userID]
	if !ok {
		return core.Profile{}, api.ErrNotFound
	}
	return profile, nil
}

func (s *Store) PatchUser(_ context.Context, userID int64, patch api.UserPatch) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.users[userID]
	if !ok {
		return core.Profile{}, api.ErrNotFound
	}
	if patch.Username != nil {
		profile.Username = *patch.Username
	}
	if patch.FirstName != nil {
		profile.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		profile.LastName = *patch.LastName
	}
	if patch.City != nil {
		profile.City = *patch.City
	}
	if patch.ProvinceState != nil {
		profile.ProvinceState = *patch.ProvinceState
	}
	if patch.Country != nil {
		profile.Country = *patch.Country
	}
	if patch.PostalCode != nil {
		profile.PostalCode = *patch.PostalCode
	}
	if patch.PhoneNumber != nil {
		profile.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Salary != nil {
		profile.Salary = *patch.Salary
	}
	if patch.TotalBalance != nil {
		profile.TotalBalance = *patch.TotalBalance
	}
	if patch.BudgetPreference != nil {
		profile.BudgetPreference = *patch.BudgetPreference
	}
	if patch.EmailNotification != nil {
		profile.EmailNotification = *patch.EmailNotification
	}
	profile.UpdatedAt = time.Now().UTC()
	s.users[userID] = profile
	return profile, nil
}

// Dashboard recomputes a small summary from the stored data. The token is
// ignored; the memory backend serves a single local user in practice.
func (s *Store) Dashboard(_ context.Context) (core.DashboardSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summary core.DashboardSummary
	var monthTotal int64
	now := time.Now().UTC()
	for _, e := range s.expenses {
		if e.ExpenseDate.Year() == now.Year() && e.ExpenseDate.Month() == now.Month() {
			monthTotal += e.Amount.Cents
		}
	}

	for _, u := range s.users {
		summary.TotalBalance = u.TotalBalance
		summary.MonthlyIncome = u.Salary
		break
	}
	summary.MonthlyExpenses = core.NewDecimal(monthTotal)
	if summary.MonthlyIncome.Valid && summary.MonthlyIncome.Cents > 0 {
		income := summary.MonthlyIncome.Dollars()
		summary.SavingsRate = (income - float64(monthTotal)/100) / income * 100
	}

	n := len(s.expenses)
	for i := n - 1; i >= 0 && n-i <= 5; i-- {
		summary.RecentExpenses = append(summary.RecentExpenses, s.expenses[i])
	}
	return summary, nil
}

func (s *Store) ListExpenses(_ context.Context, filter api.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if filter.UserID > 0 && e.UserID != filter.UserID {
			continue
		}
		if filter.CategoryID > 0 && e.CategoryID != filter.CategoryID {
			continue
		}
		if !filter.DateFrom.IsZero() && e.ExpenseDate.Before(filter.DateFrom.Time) {
			continue
		}
		if !filter.DateTo.IsZero() && e.ExpenseDate.After(filter.DateTo.Time) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, &api.Error{StatusCode: 400, Message: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.expenses {
		if existing.UserID == e.UserID && existing.CategoryID == e.CategoryID &&
			existing.ExpenseDate.String() == e.ExpenseDate.String() {
			return core.Expense{}, &api.Error{StatusCode: 400, Message: "expense for this date and category already exists"}
		}
	}

	e.CreatedAt = time.Now().UTC()
	for _, cat := range s.categories {
		if cat.CategoryID == e.CategoryID {
			e.CategoryName = cat.Name
		}
	}
	if u, ok := s.users[e.UserID]; ok {
		e.UserUsername = u.Username
	}
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) MonthlySummary(_ context.Context) (core.MonthlySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	now := time.Now().UTC()
	for _, e := range s.expenses {
		if e.ExpenseDate.Year() == now.Year() && e.ExpenseDate.Month() == now.Month() {
			total += e.Amount.Cents
		}
	}

	var budget core.Decimal
	for _, u := range s.users {
		budget = u.Salary
		break
	}

	summary := core.MonthlySummary{
		TotalSpent: core.NewDecimal(total),
		Budget:     budget,
	}
	if budget.Valid && budget.Cents > 0 {
		summary.Percentage = float64(total) / float64(budget.Cents) * 100
		switch {
		case summary.Percentage >= 100:
			summary.AlertLevel = 100
		case summary.Percentage >= 90:
			summary.AlertLevel = 90
		case summary.Percentage >= 75:
			summary.AlertLevel = 75
		}
	}
	return summary, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *Store) ListResponses(_ context.Context) ([]core.FinanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.FinanceResponse, 0, len(s.responses))
	for _, r := range s.responses {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) CreateResponse(_ context.Context, resp core.FinanceResponse) (core.FinanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp.ResponseID = s.allocID()
	resp.SubmittedAt = time.Now().UTC()
	s.responses[resp.ResponseID] = resp
	return resp, nil
}

func (s *Store) UpdateResponse(_ context.Context, responseID int64, resp core.FinanceResponse) (core.FinanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.responses[responseID]
	if !ok {
		return core.FinanceResponse{}, api.ErrNotFound
	}
	resp.ResponseID = responseID
	resp.SubmittedAt = existing.SubmittedAt
	s.responses[responseID] = resp
	return resp, nil
}

func (s *Store) ListChildren(_ context.Context, userID int64) ([]core.ChildContribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.ChildContribution
	for _, c := range s.children {
		if userID > 0 && c.UserID != userID {
			continue
		}
		out = append(out, c)
	}
	// Stable order: oldest child id first, matching the backend's listing.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ChildID < out[j-1].ChildID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (s *Store) CreateChild(_ context.Context, c core.ChildContribution) (core.ChildContribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ChildID = s.allocID()
	c.CreatedAt = time.Now().UTC()
	s.children[c.ChildID] = c
	return c, nil
}

func (s *Store) PatchChild(_ context.Context, childID int64, patch api.ChildPatch) (core.ChildContribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.children[childID]
	if !ok {
		return core.ChildContribution{}, api.ErrNotFound
	}
	if patch.ChildName != nil {
		c.ChildName = *patch.ChildName
	}
	if patch.ParentName != nil {
		c.ParentName = *patch.ParentName
	}
	if patch.TotalContributionPlanned != nil {
		c.TotalContributionPlanned = *patch.TotalContributionPlanned
	}
	if patch.MonthlyContribution != nil {
		c.MonthlyContribution = *patch.MonthlyContribution
	}
	if patch.ContributedAsPlanned != nil {
		c.ContributedAsPlanned = *patch.ContributedAsPlanned
	}
	s.children[childID] = c
	return c, nil
}

func (s *Store) ListMilestones(_ context.Context) ([]core.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Milestone(nil), s.milestones...), nil
}

func (s *Store) ListUserMilestones(_ context.Context, userID int64) ([]core.UserMilestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.UserMilestone
	for _, um := range s.userMs {
		if userID > 0 && um.UserID != userID {
			continue
		}
		out = append(out, um)
	}
	return out, nil
}

func (s *Store) CreateUserMilestone(_ context.Context, um core.UserMilestone) (core.UserMilestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	um.UMID = s.allocID()
	s.userMs[um.UMID] = um
	return um, nil
}

func (s *Store) UpdateUserMilestone(_ context.Context, umid int64, um core.UserMilestone) (core.UserMilestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userMs[umid]; !ok {
		return core.UserMilestone{}, api.ErrNotFound
	}
	um.UMID = umid
	s.userMs[umid] = um
	return um, nil
}
