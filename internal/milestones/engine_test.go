package milestones

import (
	"testing"

	"babysteps/internal/core"
)

func intPtr(n int) *int { return &n }

func amount(cents int64) core.Decimal { return core.NewDecimal(cents) }

func TestStarterFund(t *testing.T) {
	tests := []struct {
		name string
		resp core.FinanceResponse
		want bool
	}{
		{
			name: "exactly 1000 - complete",
			resp: core.FinanceResponse{EmergencySavings: true, EmergencySavingsAmount: amount(100000)},
			want: true,
		},
		{
			name: "1200 saved - still incomplete, target is exact",
			resp: core.FinanceResponse{EmergencySavings: true, EmergencySavingsAmount: amount(120000)},
			want: false,
		},
		{
			name: "999.99 - incomplete",
			resp: core.FinanceResponse{EmergencySavings: true, EmergencySavingsAmount: amount(99999)},
			want: false,
		},
		{
			name: "flag false - incomplete regardless of amount",
			resp: core.FinanceResponse{EmergencySavings: false, EmergencySavingsAmount: amount(100000)},
			want: false,
		},
		{
			name: "null amount - incomplete",
			resp: core.FinanceResponse{EmergencySavings: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.resp, nil, amount(400000)).Steps[0]
			if got != tt.want {
				t.Errorf("starterFund = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDebtFree(t *testing.T) {
	tests := []struct {
		name string
		resp core.FinanceResponse
		want bool
	}{
		{
			name: "no debt - complete regardless of amount",
			resp: core.FinanceResponse{HasDebt: false, DebtAmount: amount(500000)},
			want: true,
		},
		{
			name: "debt with zero balance - complete",
			resp: core.FinanceResponse{HasDebt: true, DebtAmount: amount(0)},
			want: true,
		},
		{
			name: "debt outstanding - incomplete",
			resp: core.FinanceResponse{HasDebt: true, DebtAmount: amount(1)},
			want: false,
		},
		{
			name: "debt with null amount - incomplete",
			resp: core.FinanceResponse{HasDebt: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.resp, nil, amount(400000)).Steps[1]
			if got != tt.want {
				t.Errorf("debtFree = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFullEmergencyFund(t *testing.T) {
	salary := amount(400000) // $4,000 -> target $2,000

	tests := []struct {
		name   string
		resp   core.FinanceResponse
		salary core.Decimal
		want   bool
	}{
		{
			name:   "exactly half salary - complete",
			resp:   core.FinanceResponse{FullEmergencyFund: true, FullEmergencyFundAmount: amount(200000)},
			salary: salary,
			want:   true,
		},
		{
			name:   "1999 - incomplete",
			resp:   core.FinanceResponse{FullEmergencyFund: true, FullEmergencyFundAmount: amount(199900)},
			salary: salary,
			want:   false,
		},
		{
			name:   "2001 - incomplete",
			resp:   core.FinanceResponse{FullEmergencyFund: true, FullEmergencyFundAmount: amount(200100)},
			salary: salary,
			want:   false,
		},
		{
			name:   "flag false - incomplete",
			resp:   core.FinanceResponse{FullEmergencyFund: false, FullEmergencyFundAmount: amount(200000)},
			salary: salary,
			want:   false,
		},
		{
			name:   "null salary - incomplete",
			resp:   core.FinanceResponse{FullEmergencyFund: true, FullEmergencyFundAmount: amount(200000)},
			salary: core.Decimal{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.resp, nil, tt.salary).Steps[2]
			if got != tt.want {
				t.Errorf("fullEmergencyFund = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetirementInvesting(t *testing.T) {
	salary := amount(400000) // $4,000 -> monthly target $50

	tests := []struct {
		name string
		resp core.FinanceResponse
		want bool
	}{
		{
			name: "exactly 50 monthly - complete",
			resp: core.FinanceResponse{RetirementInvesting: true, RetirementSavingsAmount: amount(5000)},
			want: true,
		},
		{
			name: "49.99 - incomplete",
			resp: core.FinanceResponse{RetirementInvesting: true, RetirementSavingsAmount: amount(4999)},
			want: false,
		},
		{
			name: "not investing - incomplete",
			resp: core.FinanceResponse{RetirementInvesting: false, RetirementSavingsAmount: amount(5000)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.resp, nil, salary).Steps[3]
			if got != tt.want {
				t.Errorf("retirementInvesting = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollegeFunding(t *testing.T) {
	funded := core.ChildContribution{TotalContributionPlanned: amount(150000)}
	unfunded := core.ChildContribution{TotalContributionPlanned: amount(0)}
	empty := core.ChildContribution{}

	tests := []struct {
		name     string
		resp     core.FinanceResponse
		children []core.ChildContribution
		want     bool
	}{
		{
			name: "no children - complete",
			resp: core.FinanceResponse{HasChildren: false},
			want: true,
		},
		{
			name:     "two children both funded - complete",
			resp:     core.FinanceResponse{HasChildren: true, ChildrenCount: intPtr(2)},
			children: []core.ChildContribution{funded, funded},
			want:     true,
		},
		{
			name:     "second child zero planned - incomplete",
			resp:     core.FinanceResponse{HasChildren: true, ChildrenCount: intPtr(2)},
			children: []core.ChildContribution{funded, unfunded},
			want:     false,
		},
		{
			name:     "second child empty planned - incomplete",
			resp:     core.FinanceResponse{HasChildren: true, ChildrenCount: intPtr(2)},
			children: []core.ChildContribution{funded, empty},
			want:     false,
		},
		{
			name:     "extra unfunded row beyond count is ignored",
			resp:     core.FinanceResponse{HasChildren: true, ChildrenCount: intPtr(2)},
			children: []core.ChildContribution{funded, funded, unfunded},
			want:     true,
		},
		{
			name:     "fewer rows than count - incomplete",
			resp:     core.FinanceResponse{HasChildren: true, ChildrenCount: intPtr(3)},
			children: []core.ChildContribution{funded, funded},
			want:     false,
		},
		{
			name: "has children with zero count - incomplete",
			resp: core.FinanceResponse{HasChildren: true, ChildrenCount: intPtr(0)},
			want: false,
		},
		{
			name: "has children with nil count - incomplete",
			resp: core.FinanceResponse{HasChildren: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.resp, tt.children, amount(400000)).Steps[4]
			if got != tt.want {
				t.Errorf("collegeFunding = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHomePaidOff(t *testing.T) {
	tests := []struct {
		name string
		resp core.FinanceResponse
		want bool
	}{
		{
			name: "owned, paying, zero remaining - complete",
			resp: core.FinanceResponse{BoughtHome: true, PayOffHome: true, MortgageRemaining: amount(0)},
			want: true,
		},
		{
			name: "owned, paying, balance remains - incomplete",
			resp: core.FinanceResponse{BoughtHome: true, PayOffHome: true, MortgageRemaining: amount(10000000)},
			want: false,
		},
		{
			name: "owned but not paying off - incomplete",
			resp: core.FinanceResponse{BoughtHome: true, PayOffHome: false, MortgageRemaining: amount(0)},
			want: false,
		},
		{
			name: "no home - incomplete",
			resp: core.FinanceResponse{BoughtHome: false},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.resp, nil, amount(400000)).Steps[5]
			if got != tt.want {
				t.Errorf("homePaidOff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name      string
		completed [StepCount]bool
		wantPct   int
	}{
		{"none", [StepCount]bool{}, 0},
		{"three of six rounds to 50", [StepCount]bool{true, true, true}, 50},
		{"one of six rounds to 17", [StepCount]bool{true}, 17},
		{"all six", [StepCount]bool{true, true, true, true, true, true}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Build a response that completes exactly the requested steps.
			resp := core.FinanceResponse{}
			var children []core.ChildContribution
			salary := amount(400000)
			if tt.completed[0] {
				resp.EmergencySavings = true
				resp.EmergencySavingsAmount = amount(100000)
			}
			if !tt.completed[1] {
				resp.HasDebt = true
				resp.DebtAmount = amount(50000)
			}
			if tt.completed[2] {
				resp.FullEmergencyFund = true
				resp.FullEmergencyFundAmount = amount(200000)
			}
			if tt.completed[3] {
				resp.RetirementInvesting = true
				resp.RetirementSavingsAmount = amount(5000)
			}
			if !tt.completed[4] {
				resp.HasChildren = true
			}
			if tt.completed[5] {
				resp.BoughtHome = true
				resp.PayOffHome = true
				resp.MortgageRemaining = amount(0)
			}

			ev := Evaluate(resp, children, salary)
			if ev.Steps != tt.completed {
				t.Fatalf("Steps = %v, want %v", ev.Steps, tt.completed)
			}
			if ev.Percentage != tt.wantPct {
				t.Errorf("Percentage = %d, want %d", ev.Percentage, tt.wantPct)
			}
		})
	}
}

func TestTargets(t *testing.T) {
	salary := amount(400000)
	if got := FullEmergencyTarget(salary); got != 200000 {
		t.Errorf("FullEmergencyTarget = %d, want 200000", got)
	}
	if got := RetirementTarget(salary); got != 5000 {
		t.Errorf("RetirementTarget = %d, want 5000", got)
	}
	if got := FullEmergencyTarget(core.Decimal{}); got != 0 {
		t.Errorf("FullEmergencyTarget(null) = %d, want 0", got)
	}
}
