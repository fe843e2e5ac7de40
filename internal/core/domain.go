package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	Daily   BudgetPreference = "daily"
	Weekly  BudgetPreference = "weekly"
	Monthly BudgetPreference = "monthly"
	Yearly  BudgetPreference = "yearly"
)

const (
	Canada Country = "Canada"
	US     Country = "US"
)

type (
	// BudgetPreference is the cadence a user budgets against.
	BudgetPreference string

	// Country limits the address form to the two markets the backend knows.
	Country string

	// Date is a calendar day without a time component. It marshals as
	// YYYY-MM-DD, the backend's date format.
	Date struct {
		time.Time
	}

	// Profile is the backend-owned user record. The client holds a cached
	// copy per session; salary feeds the milestone targets.
	Profile struct {
		UserID            int64            `json:"user_id"`
		Username          string           `json:"username"`
		Email             string           `json:"email"`
		FirstName         string           `json:"first_name,omitempty"`
		LastName          string           `json:"last_name,omitempty"`
		City              string           `json:"city,omitempty"`
		ProvinceState     string           `json:"province_state,omitempty"`
		Country           Country          `json:"country,omitempty"`
		PostalCode        string           `json:"postal_code,omitempty"`
		PhoneNumber       string           `json:"phone_number,omitempty"`
		Salary            Decimal          `json:"salary"`
		TotalBalance      Decimal          `json:"total_balance"`
		BudgetPreference  BudgetPreference `json:"budget_preference,omitempty"`
		EmailNotification bool             `json:"email_notification"`
		CreatedAt         time.Time        `json:"created_at,omitempty"`
		UpdatedAt         time.Time        `json:"updated_at,omitempty"`
	}

	// Registration is the payload for POST /api/users/register/.
	Registration struct {
		Username          string           `json:"username"`
		Email             string           `json:"email"`
		Password          string           `json:"password"`
		FirstName         string           `json:"first_name,omitempty"`
		LastName          string           `json:"last_name,omitempty"`
		City              string           `json:"city,omitempty"`
		ProvinceState     string           `json:"province_state,omitempty"`
		Country           Country          `json:"country,omitempty"`
		PostalCode        string           `json:"postal_code,omitempty"`
		PhoneNumber       string           `json:"phone_number,omitempty"`
		Salary            Decimal          `json:"salary"`
		TotalBalance      Decimal          `json:"total_balance"`
		BudgetPreference  BudgetPreference `json:"budget_preference"`
		EmailNotification bool             `json:"email_notification"`
	}

	// FinanceResponse is the one-per-user questionnaire answer record
	// ("user response" in the API). At most one exists per user id; the
	// client resolves create-vs-update before every save.
	FinanceResponse struct {
		ResponseID              int64     `json:"response_id"`
		UserID                  int64     `json:"user_id"`
		SalaryConfirmed         bool      `json:"salary_confirmed"`
		EmergencySavings        bool      `json:"emergency_savings"`
		EmergencySavingsAmount  Decimal   `json:"emergency_savings_amount"`
		HasDebt                 bool      `json:"has_debt"`
		DebtAmount              Decimal   `json:"debt_amount"`
		FullEmergencyFund       bool      `json:"full_emergency_fund"`
		FullEmergencyFundAmount Decimal   `json:"full_emergency_fund_amount"`
		RetirementInvesting     bool      `json:"retirement_investing"`
		RetirementSavingsAmount Decimal   `json:"retirement_savings_amount"`
		HasChildren             bool      `json:"has_children"`
		ChildrenCount           *int      `json:"children_count"`
		BoughtHome              bool      `json:"bought_home"`
		PayOffHome              bool      `json:"pay_off_home"`
		MortgageRemaining       Decimal   `json:"mortgage_remaining"`
		SubmittedAt             time.Time `json:"submitted_at,omitempty"`
	}

	// ChildContribution is one college-funding row per dependent. ChildID
	// is zero until the backend assigns one on create.
	ChildContribution struct {
		ChildID                  int64     `json:"child_id,omitempty"`
		UserID                   int64     `json:"user_id"`
		ChildName                string    `json:"child_name"`
		ParentName               string    `json:"parent_name"`
		TotalContributionPlanned Decimal   `json:"total_contribution_planned"`
		MonthlyContribution      Decimal   `json:"monthly_contribution"`
		ContributedAsPlanned     bool      `json:"contributed_as_planned"`
		CreatedAt                time.Time `json:"created_at,omitempty"`
	}

	// Expense is a (date, user, category) keyed record. Immutable once
	// created through this client.
	Expense struct {
		ExpenseDate  Date      `json:"expense_date"`
		UserID       int64     `json:"user_id"`
		CategoryID   int64     `json:"category_id"`
		Amount       Decimal   `json:"amount"`
		CreatedAt    time.Time `json:"created_at,omitempty"`
		UserUsername string    `json:"user_username,omitempty"`
		CategoryName string    `json:"category_name,omitempty"`
	}

	Category struct {
		CategoryID int64  `json:"category_id"`
		Name       string `json:"name"`
	}

	// Milestone is one entry of the backend's Baby Steps catalog.
	Milestone struct {
		MilestoneID int64  `json:"milestone_id"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	}

	// UserMilestone is the per-user completion record. The Milestones view
	// does not trust IsCompleted; completion is recomputed locally.
	UserMilestone struct {
		UMID        int64      `json:"umid,omitempty"`
		UserID      int64      `json:"user_id"`
		MilestoneID int64      `json:"milestone_id"`
		IsCompleted bool       `json:"is_completed"`
		CompletedAt *time.Time `json:"completed_at"`
	}

	// MonthlySummary is the backend's month-to-date spending vs budget.
	MonthlySummary struct {
		TotalSpent Decimal `json:"total_spent"`
		Budget     Decimal `json:"budget"`
		Percentage float64 `json:"percentage"`
		AlertLevel int     `json:"alert_level"`
	}

	// DashboardSummary is the server-computed aggregation for the
	// dashboard page. The backend also ships a milestone_status blob; it is
	// dropped on decode because the client recomputes completion itself.
	DashboardSummary struct {
		TotalBalance    Decimal   `json:"total_balance"`
		MonthlyIncome   Decimal   `json:"monthly_income"`
		MonthlyExpenses Decimal   `json:"monthly_expenses"`
		SavingsRate     float64   `json:"savings_rate"`
		RecentExpenses  []Expense `json:"recent_expenses"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyUsername     = errors.New("empty username")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidPostalCode = errors.New("invalid postal code")
	ErrInvalidCountry    = errors.New("invalid country")
	ErrInvalidCategory   = errors.New("invalid category")
)

func (bp BudgetPreference) Valid() bool {
	switch bp {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (c Country) Valid() bool {
	return c == Canada || c == US
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

var (
	// A1A 1A1, space or dash optional. D, F, I, O, Q, U never start a
	// Canadian postal code.
	caPostalRe = regexp.MustCompile(`^[ABCEGHJ-NPRSTVXY]\d[ABCEGHJ-NPRSTV-Z][ -]?\d[ABCEGHJ-NPRSTV-Z]\d$`)
	// 5-digit ZIP with optional +4.
	usPostalRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidatePostalCode checks a postal code against the selected country's
// format. Canadian codes are matched case-insensitively.
func ValidatePostalCode(country Country, code string) error {
	code = strings.TrimSpace(code)
	switch country {
	case Canada:
		if !caPostalRe.MatchString(strings.ToUpper(code)) {
			return ErrInvalidPostalCode
		}
	case US:
		if !usPostalRe.MatchString(code) {
			return ErrInvalidPostalCode
		}
	default:
		return ErrInvalidCountry
	}
	return nil
}

// Validate checks a registration payload before it is sent to the backend.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrEmptyUsername
	}
	if !emailRe.MatchString(strings.TrimSpace(r.Email)) {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !r.BudgetPreference.Valid() {
		return errors.New("invalid budget preference")
	}
	if r.Salary.Valid && r.Salary.Cents < 0 {
		return ErrInvalidAmount
	}
	if r.TotalBalance.Valid && r.TotalBalance.Cents < 0 {
		return ErrInvalidAmount
	}
	if r.PostalCode != "" || r.Country != "" {
		if err := ValidatePostalCode(r.Country, r.PostalCode); err != nil {
			return err
		}
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.ExpenseDate.Validate(); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if !e.Amount.Valid || e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Considered returns the child rows the milestone engine actually looks at:
// the first children_count rows. Extra rows are ignored, never deleted.
func (fr FinanceResponse) Considered(children []ChildContribution) []ChildContribution {
	if fr.ChildrenCount == nil || *fr.ChildrenCount <= 0 {
		return nil
	}
	n := *fr.ChildrenCount
	if n > len(children) {
		n = len(children)
	}
	return children[:n]
}
