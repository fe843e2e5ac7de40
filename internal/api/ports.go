// Package api defines the ports to the finance backend. The rest
// subpackage implements them over HTTPS; the memory subpackage is the
// in-process fake used by tests and the memory data backend.
package api

import (
	"context"

	"babysteps/internal/core"
)

type tokenKey struct{}

// WithToken returns a context carrying the bearer token for outgoing
// backend calls. The session owns the token; the gateway only transports it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext extracts the bearer token, or "" for anonymous calls.
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// LoginResult is the payload of a successful authentication.
type LoginResult struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    core.Profile `json:"user"`
}

// ExpenseFilter narrows an expense listing. Zero values mean "no filter".
type ExpenseFilter struct {
	UserID     int64
	DateFrom   core.Date
	DateTo     core.Date
	CategoryID int64
}

// UserPatch is a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Username          *string                `json:"username,omitempty"`
	FirstName         *string                `json:"first_name,omitempty"`
	LastName          *string                `json:"last_name,omitempty"`
	City              *string                `json:"city,omitempty"`
	ProvinceState     *string                `json:"province_state,omitempty"`
	Country           *core.Country          `json:"country,omitempty"`
	PostalCode        *string                `json:"postal_code,omitempty"`
	PhoneNumber       *string                `json:"phone_number,omitempty"`
	Salary            *core.Decimal          `json:"salary,omitempty"`
	TotalBalance      *core.Decimal          `json:"total_balance,omitempty"`
	BudgetPreference  *core.BudgetPreference `json:"budget_preference,omitempty"`
	EmailNotification *bool                  `json:"email_notification,omitempty"`
}

// ChildPatch is a partial child contribution update.
type ChildPatch struct {
	ChildName                *string       `json:"child_name,omitempty"`
	ParentName               *string       `json:"parent_name,omitempty"`
	TotalContributionPlanned *core.Decimal `json:"total_contribution_planned,omitempty"`
	MonthlyContribution      *core.Decimal `json:"monthly_contribution,omitempty"`
	ContributedAsPlanned     *bool         `json:"contributed_as_planned,omitempty"`
}

// Ports to the backend, split by resource.
type (
	AuthGateway interface {
		Login(ctx context.Context, email, password string) (LoginResult, error)
		Register(ctx context.Context, reg core.Registration) (core.Profile, error)
	}

	UserGateway interface {
		GetUser(ctx context.Context, userID int64) (core.Profile, error)
		PatchUser(ctx context.Context, userID int64, patch UserPatch) (core.Profile, error)
		Dashboard(ctx context.Context) (core.DashboardSummary, error)
	}

	ExpenseGateway interface {
		ListExpenses(ctx context.Context, filter ExpenseFilter) ([]core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		MonthlySummary(ctx context.Context) (core.MonthlySummary, error)
	}

	CategoryGateway interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	// ResponseGateway exposes the raw finance-response collection. The
	// find-then-branch upsert lives in the service layer, not here.
	ResponseGateway interface {
		ListResponses(ctx context.Context) ([]core.FinanceResponse, error)
		CreateResponse(ctx context.Context, resp core.FinanceResponse) (core.FinanceResponse, error)
		UpdateResponse(ctx context.Context, responseID int64, resp core.FinanceResponse) (core.FinanceResponse, error)
	}

	ChildrenGateway interface {
		ListChildren(ctx context.Context, userID int64) ([]core.ChildContribution, error)
		CreateChild(ctx context.Context, c core.ChildContribution) (core.ChildContribution, error)
		PatchChild(ctx context.Context, childID int64, patch ChildPatch) (core.ChildContribution, error)
	}

	MilestoneGateway interface {
		ListMilestones(ctx context.Context) ([]core.Milestone, error)
		ListUserMilestones(ctx context.Context, userID int64) ([]core.UserMilestone, error)
		CreateUserMilestone(ctx context.Context, um core.UserMilestone) (core.UserMilestone, error)
		UpdateUserMilestone(ctx context.Context, umid int64, um core.UserMilestone) (core.UserMilestone, error)
	}
)
