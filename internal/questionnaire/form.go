// Package questionnaire models the multi-step Baby Steps form: raw string
// inputs in, field errors or a validated finance response out. Amount
// fields are only required, parsed and range-checked when their governing
// yes/no answer is yes; a single field error blocks the whole submission.
package questionnaire

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"babysteps/internal/core"
)

const maxChildren = 10

// ChildForm is one college-funding row as posted.
type ChildForm struct {
	ChildID                  string
	ChildName                string
	ParentName               string
	TotalContributionPlanned string
	MonthlyContribution      string
	ContributedAsPlanned     bool
}

// Form holds the raw posted answers. Bools come from checkboxes, amounts
// arrive as free text and are parsed during validation.
type Form struct {
	SalaryConfirmed         bool
	EmergencySavings        bool
	EmergencySavingsAmount  string
	HasDebt                 bool
	DebtAmount              string
	FullEmergencyFund       bool
	FullEmergencyFundAmount string
	RetirementInvesting     bool
	RetirementSavingsAmount string
	HasChildren             bool
	ChildrenCount           string
	Children                []ChildForm
	BoughtHome              bool
	PayOffHome              bool
	MortgageRemaining       string
}

// Errors maps field name to message. Child row fields are keyed
// "children.N.field" with N starting at zero.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, dup := e[field]; !dup {
		e[field] = msg
	}
}

// Result is the validated outcome ready for the save path.
type Result struct {
	Response core.FinanceResponse
	Children []core.ChildContribution
}

// FromValues builds a Form from posted values. Checkbox fields read "on"
// or "true" as yes.
func FromValues(values url.Values) Form {
	f := Form{
		SalaryConfirmed:         boolValue(values, "salary_confirmed"),
		EmergencySavings:        boolValue(values, "emergency_savings"),
		EmergencySavingsAmount:  values.Get("emergency_savings_amount"),
		HasDebt:                 boolValue(values, "has_debt"),
		DebtAmount:              values.Get("debt_amount"),
		FullEmergencyFund:       boolValue(values, "full_emergency_fund"),
		FullEmergencyFundAmount: values.Get("full_emergency_fund_amount"),
		RetirementInvesting:     boolValue(values, "retirement_investing"),
		RetirementSavingsAmount: values.Get("retirement_savings_amount"),
		HasChildren:             boolValue(values, "has_children"),
		ChildrenCount:           values.Get("children_count"),
		BoughtHome:              boolValue(values, "bought_home"),
		PayOffHome:              boolValue(values, "pay_off_home"),
		MortgageRemaining:       values.Get("mortgage_remaining"),
	}

	for i := 0; i < maxChildren; i++ {
		prefix := fmt.Sprintf("children.%d.", i)
		if values.Get(prefix+"child_name") == "" && values.Get(prefix+"total_contribution_planned") == "" {
			continue
		}
		f.Children = append(f.Children, ChildForm{
			ChildID:                  values.Get(prefix + "child_id"),
			ChildName:                values.Get(prefix + "child_name"),
			ParentName:               values.Get(prefix + "parent_name"),
			TotalContributionPlanned: values.Get(prefix + "total_contribution_planned"),
			MonthlyContribution:      values.Get(prefix + "monthly_contribution"),
			ContributedAsPlanned:     boolValue(values, prefix+"contributed_as_planned"),
		})
	}

	return f
}

func boolValue(values url.Values, key string) bool {
	v := strings.ToLower(values.Get(key))
	return v == "on" || v == "true" || v == "1" || v == "yes"
}

// Validate checks the form against the user's salary and returns the
// validated result. The result is only meaningful when the error map is
// empty.
func (f Form) Validate(userID int64, salary core.Decimal) (Result, Errors) {
	errs := make(Errors)

	resp := core.FinanceResponse{
		UserID:              userID,
		SalaryConfirmed:     f.SalaryConfirmed,
		EmergencySavings:    f.EmergencySavings,
		HasDebt:             f.HasDebt,
		FullEmergencyFund:   f.FullEmergencyFund,
		RetirementInvesting: f.RetirementInvesting,
		HasChildren:         f.HasChildren,
		BoughtHome:          f.BoughtHome,
		PayOffHome:          f.PayOffHome,
	}

	// Step 1: starter emergency fund.
	if f.EmergencySavings {
		resp.EmergencySavingsAmount = requireAmount(errs, "emergency_savings_amount", f.EmergencySavingsAmount, 0, 0)
	}

	// Step 2: debt.
	if f.HasDebt {
		resp.DebtAmount = requireAmount(errs, "debt_amount", f.DebtAmount, 0, 0)
	}

	// Step 3: full emergency fund, bounded by the annual salary.
	if f.FullEmergencyFund {
		max := int64(0)
		if salary.Valid {
			max = salary.Cents
		}
		resp.FullEmergencyFundAmount = requireAmount(errs, "full_emergency_fund_amount", f.FullEmergencyFundAmount, 0, max)
	}

	// Step 4: monthly retirement contribution, bounded by a month's salary.
	if f.RetirementInvesting {
		max := int64(0)
		if salary.Valid {
			max = salary.Cents / 12
		}
		resp.RetirementSavingsAmount = requireAmount(errs, "retirement_savings_amount", f.RetirementSavingsAmount, 0, max)
	}

	// Step 5: children.
	var children []core.ChildContribution
	if f.HasChildren {
		count := f.validateChildren(errs, userID, &children)
		resp.ChildrenCount = &count
	}

	// Step 6: home.
	if f.BoughtHome {
		// Zero is meaningful here: a paid-off mortgage.
		amount, err := parseAmount(f.MortgageRemaining)
		switch {
		case strings.TrimSpace(f.MortgageRemaining) == "":
			errs.Add("mortgage_remaining", "This field is required")
		case err != nil:
			errs.Add("mortgage_remaining", "Enter a valid amount")
		case amount.Cents < 0:
			errs.Add("mortgage_remaining", "Amount cannot be negative")
		default:
			resp.MortgageRemaining = amount
		}
	}

	if len(errs) > 0 {
		return Result{}, errs
	}
	return Result{Response: resp, Children: children}, nil
}

// validateChildren checks the declared count and the first count rows.
// Rows beyond the count are carried along untouched but not validated.
func (f Form) validateChildren(errs Errors, userID int64, out *[]core.ChildContribution) int {
	count, err := strconv.Atoi(strings.TrimSpace(f.ChildrenCount))
	if err != nil || count < 1 {
		errs.Add("children_count", "Enter how many children you have")
		return 0
	}
	if count > maxChildren {
		errs.Add("children_count", fmt.Sprintf("At most %d children are supported", maxChildren))
		return 0
	}
	if len(f.Children) < count {
		errs.Add("children_count", "Fill in a row for each child")
		return count
	}

	for i, row := range f.Children {
		child := core.ChildContribution{
			UserID:               userID,
			ChildName:            strings.TrimSpace(row.ChildName),
			ParentName:           strings.TrimSpace(row.ParentName),
			ContributedAsPlanned: row.ContributedAsPlanned,
		}
		if row.ChildID != "" {
			if id, err := strconv.ParseInt(row.ChildID, 10, 64); err == nil {
				child.ChildID = id
			}
		}

		if i < count {
			prefix := fmt.Sprintf("children.%d.", i)
			if child.ChildName == "" {
				errs.Add(prefix+"child_name", "This field is required")
			}
			child.TotalContributionPlanned = requireAmount(errs, prefix+"total_contribution_planned", row.TotalContributionPlanned, 0, 0)
			child.MonthlyContribution = requireAmount(errs, prefix+"monthly_contribution", row.MonthlyContribution, 0, 0)
		} else {
			child.TotalContributionPlanned, _ = parseAmount(row.TotalContributionPlanned)
			child.MonthlyContribution, _ = parseAmount(row.MonthlyContribution)
		}

		*out = append(*out, child)
	}

	return count
}

// requireAmount parses a required amount field. min and max are inclusive
// cent bounds; max of zero means unbounded.
func requireAmount(errs Errors, field, raw string, min, max int64) core.Decimal {
	if strings.TrimSpace(raw) == "" {
		errs.Add(field, "This field is required")
		return core.Decimal{}
	}
	amount, err := parseAmount(raw)
	if err != nil {
		errs.Add(field, "Enter a valid amount")
		return core.Decimal{}
	}
	if amount.Cents < min {
		errs.Add(field, "Amount cannot be negative")
		return core.Decimal{}
	}
	if max > 0 && amount.Cents > max {
		errs.Add(field, fmt.Sprintf("Amount cannot exceed %s", core.FormatDollars(max)))
		return core.Decimal{}
	}
	return amount
}

func parseAmount(raw string) (core.Decimal, error) {
	return core.ParseDecimal(strings.TrimSpace(raw))
}
