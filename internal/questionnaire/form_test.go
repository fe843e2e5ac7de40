package questionnaire

import (
	"net/url"
	"testing"

	"babysteps/internal/core"
)

func baseValues() url.Values {
	return url.Values{
		"salary_confirmed":           {"on"},
		"emergency_savings":          {"on"},
		"emergency_savings_amount":   {"1000"},
		"has_debt":                   {"on"},
		"debt_amount":                {"250.50"},
		"full_emergency_fund":        {"on"},
		"full_emergency_fund_amount": {"2000"},
		"retirement_investing":       {"on"},
		"retirement_savings_amount":  {"50"},
		"bought_home":                {"on"},
		"pay_off_home":               {"on"},
		"mortgage_remaining":         {"0"},
	}
}

func TestValidateCompleteForm(t *testing.T) {
	f := FromValues(baseValues())

	result, errs := f.Validate(7, core.NewDecimal(400000))
	if len(errs) != 0 {
		t.Fatalf("Validate() errors = %v, want none", errs)
	}

	resp := result.Response
	if resp.UserID != 7 {
		t.Errorf("UserID = %d, want 7", resp.UserID)
	}
	if resp.EmergencySavingsAmount.Cents != 100000 {
		t.Errorf("EmergencySavingsAmount = %d, want 100000", resp.EmergencySavingsAmount.Cents)
	}
	if resp.DebtAmount.Cents != 25050 {
		t.Errorf("DebtAmount = %d, want 25050", resp.DebtAmount.Cents)
	}
	if !resp.MortgageRemaining.Valid || resp.MortgageRemaining.Cents != 0 {
		t.Errorf("MortgageRemaining = %+v, want valid zero", resp.MortgageRemaining)
	}
}

func TestValidateSkipsAmountsWhenAnswerIsNo(t *testing.T) {
	values := baseValues()
	values.Del("emergency_savings")
	values.Del("emergency_savings_amount")
	values.Del("has_debt")
	values.Del("debt_amount")

	f := FromValues(values)
	result, errs := f.Validate(7, core.NewDecimal(400000))
	if len(errs) != 0 {
		t.Fatalf("Validate() errors = %v, want none", errs)
	}
	if result.Response.EmergencySavingsAmount.Valid {
		t.Error("EmergencySavingsAmount parsed despite answer no")
	}
	if result.Response.HasDebt {
		t.Error("HasDebt = true, want false")
	}
}

func TestValidateRequiresGovernedAmounts(t *testing.T) {
	values := baseValues()
	values.Set("emergency_savings_amount", "")

	f := FromValues(values)
	_, errs := f.Validate(7, core.NewDecimal(400000))
	if errs["emergency_savings_amount"] == "" {
		t.Errorf("Validate() errors = %v, want emergency_savings_amount required", errs)
	}
}

func TestValidateRejectsMalformedAmount(t *testing.T) {
	values := baseValues()
	values.Set("debt_amount", "lots")

	f := FromValues(values)
	_, errs := f.Validate(7, core.NewDecimal(400000))
	if errs["debt_amount"] == "" {
		t.Errorf("Validate() errors = %v, want debt_amount invalid", errs)
	}
}

func TestValidateSalaryRelativeBounds(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		value     string
		wantError bool
	}{
		{"full fund at salary", "full_emergency_fund_amount", "4000", false},
		{"full fund above salary", "full_emergency_fund_amount", "4000.01", true},
		{"retirement at monthly salary", "retirement_savings_amount", "333.33", false},
		{"retirement above monthly salary", "retirement_savings_amount", "334", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := baseValues()
			values.Set(tt.field, tt.value)

			f := FromValues(values)
			_, errs := f.Validate(7, core.NewDecimal(400000))
			gotError := errs[tt.field] != ""
			if gotError != tt.wantError {
				t.Errorf("Validate() error for %s=%s: %v, wantError %v", tt.field, tt.value, errs[tt.field], tt.wantError)
			}
		})
	}
}

func TestValidateChildrenRows(t *testing.T) {
	values := baseValues()
	values.Set("has_children", "on")
	values.Set("children_count", "2")
	values.Set("children.0.child_name", "Ada")
	values.Set("children.0.total_contribution_planned", "500")
	values.Set("children.0.monthly_contribution", "20")
	values.Set("children.1.child_name", "Ben")
	values.Set("children.1.total_contribution_planned", "600")
	values.Set("children.1.monthly_contribution", "25")

	f := FromValues(values)
	result, errs := f.Validate(7, core.NewDecimal(400000))
	if len(errs) != 0 {
		t.Fatalf("Validate() errors = %v, want none", errs)
	}
	if len(result.Children) != 2 {
		t.Fatalf("Children = %d rows, want 2", len(result.Children))
	}
	if result.Response.ChildrenCount == nil || *result.Response.ChildrenCount != 2 {
		t.Errorf("ChildrenCount = %v, want 2", result.Response.ChildrenCount)
	}
	if result.Children[0].TotalContributionPlanned.Cents != 50000 {
		t.Errorf("child contribution = %d, want 50000", result.Children[0].TotalContributionPlanned.Cents)
	}
}

func TestValidateChildrenMissingRow(t *testing.T) {
	values := baseValues()
	values.Set("has_children", "on")
	values.Set("children_count", "2")
	values.Set("children.0.child_name", "Ada")
	values.Set("children.0.total_contribution_planned", "500")
	values.Set("children.0.monthly_contribution", "20")

	f := FromValues(values)
	_, errs := f.Validate(7, core.NewDecimal(400000))
	if errs["children_count"] == "" {
		t.Errorf("Validate() errors = %v, want children_count row shortfall", errs)
	}
}

func TestValidateExtraChildRowsNotValidated(t *testing.T) {
	values := baseValues()
	values.Set("has_children", "on")
	values.Set("children_count", "1")
	values.Set("children.0.child_name", "Ada")
	values.Set("children.0.total_contribution_planned", "500")
	values.Set("children.0.monthly_contribution", "20")
	// Row beyond the count with a missing amount: carried, not validated.
	values.Set("children.1.child_name", "Ben")
	values.Set("children.1.total_contribution_planned", "600")

	f := FromValues(values)
	result, errs := f.Validate(7, core.NewDecimal(400000))
	if len(errs) != 0 {
		t.Fatalf("Validate() errors = %v, want none", errs)
	}
	if len(result.Children) != 2 {
		t.Errorf("Children = %d rows, want both carried", len(result.Children))
	}
}

func TestValidateMortgageRequiredWhenHomeBought(t *testing.T) {
	values := baseValues()
	values.Set("mortgage_remaining", "")

	f := FromValues(values)
	_, errs := f.Validate(7, core.NewDecimal(400000))
	if errs["mortgage_remaining"] == "" {
		t.Errorf("Validate() errors = %v, want mortgage_remaining required", errs)
	}
}

func TestFromValuesParsesExistingChildIDs(t *testing.T) {
	values := baseValues()
	values.Set("has_children", "on")
	values.Set("children_count", "1")
	values.Set("children.0.child_id", "42")
	values.Set("children.0.child_name", "Ada")
	values.Set("children.0.total_contribution_planned", "500")
	values.Set("children.0.monthly_contribution", "20")

	f := FromValues(values)
	result, errs := f.Validate(7, core.NewDecimal(400000))
	if len(errs) != 0 {
		t.Fatalf("Validate() errors = %v, want none", errs)
	}
	if result.Children[0].ChildID != 42 {
		t.Errorf("ChildID = %d, want 42", result.Children[0].ChildID)
	}
}
