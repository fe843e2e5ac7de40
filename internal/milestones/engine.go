// Package milestones evaluates a user's progress through the Seven Baby
// Steps. Evaluation is a pure function of the questionnaire answers, the
// child contribution rows, and the profile salary; it holds no state and is
// safe to recompute on every page render.
package milestones

import (
	"math"

	"babysteps/internal/core"
)

// StepCount is the number of steps the tracker evaluates.
const StepCount = 6

// Titles for the six steps, in evaluation order.
var Titles = [StepCount]string{
	"Step 1 - Starter Emergency Fund: Save $1,000",
	"Step 2 - Debt Snowball: Pay off all non-mortgage debt",
	"Step 3 - Full Emergency Fund: Save 3-6 months of expenses",
	"Step 4 - Invest for Retirement: Invest 15% of your income",
	"Step 5 - College Fund: Save for your children's education",
	"Step 6 - Pay Off Home: Eliminate your mortgage early",
}

// starterFundCents is the exact step-1 target. Completion requires the
// saved amount to equal this value, not exceed it; a user who saved $1,200
// reads as incomplete. Carried over from the shipped behavior, flagged as a
// likely product defect in DESIGN.md.
const starterFundCents = 1000 * 100

// Evaluation is the computed progress vector plus its aggregates.
type Evaluation struct {
	Steps      [StepCount]bool
	Completed  int
	Percentage int
}

// AllComplete reports whether every step evaluated true.
func (e Evaluation) AllComplete() bool {
	return e.Completed == StepCount
}

// Evaluate computes the six step predicates. Each predicate is independent;
// salary comes from the profile and feeds the step 3 and 4 targets.
func Evaluate(resp core.FinanceResponse, children []core.ChildContribution, salary core.Decimal) Evaluation {
	var ev Evaluation
	ev.Steps[0] = starterFund(resp)
	ev.Steps[1] = debtFree(resp)
	ev.Steps[2] = fullEmergencyFund(resp, salary)
	ev.Steps[3] = retirementInvesting(resp, salary)
	ev.Steps[4] = collegeFunding(resp, children)
	ev.Steps[5] = homePaidOff(resp)

	for _, done := range ev.Steps {
		if done {
			ev.Completed++
		}
	}
	ev.Percentage = int(math.Round(float64(ev.Completed) / StepCount * 100))
	return ev
}

// starterFund: emergency savings reported and the amount is exactly $1,000.
func starterFund(resp core.FinanceResponse) bool {
	if !resp.EmergencySavings {
		return false
	}
	return resp.EmergencySavingsAmount.Valid && resp.EmergencySavingsAmount.Cents == starterFundCents
}

// debtFree: no debt reported, or a reported zero balance.
func debtFree(resp core.FinanceResponse) bool {
	if !resp.HasDebt {
		return true
	}
	return resp.DebtAmount.IsZero()
}

// fullEmergencyFund: fund reported and the amount equals exactly half the
// salary. Compared as amount*2 == salary in cents, so an odd-cent salary has
// no reachable target, same as the source's float comparison.
func fullEmergencyFund(resp core.FinanceResponse, salary core.Decimal) bool {
	if !resp.FullEmergencyFund {
		return false
	}
	if !resp.FullEmergencyFundAmount.Valid || !salary.Valid {
		return false
	}
	return resp.FullEmergencyFundAmount.Cents*2 == salary.Cents
}

// retirementInvesting: investing reported and the monthly amount equals
// exactly salary*0.15/12, i.e. amount*80 == salary in cents.
func retirementInvesting(resp core.FinanceResponse, salary core.Decimal) bool {
	if !resp.RetirementInvesting {
		return false
	}
	if !resp.RetirementSavingsAmount.Valid || !salary.Valid {
		return false
	}
	return resp.RetirementSavingsAmount.Cents*80 == salary.Cents
}

// collegeFunding: no children, or a positive children_count where every
// considered row has a positive planned total. Rows past children_count are
// ignored.
func collegeFunding(resp core.FinanceResponse, children []core.ChildContribution) bool {
	if !resp.HasChildren {
		return true
	}
	if resp.ChildrenCount == nil || *resp.ChildrenCount <= 0 {
		return false
	}
	considered := resp.Considered(children)
	if len(considered) < *resp.ChildrenCount {
		return false
	}
	for _, c := range considered {
		if !c.TotalContributionPlanned.Valid || c.TotalContributionPlanned.Cents <= 0 {
			return false
		}
	}
	return true
}

// homePaidOff: owns a home, is paying it off, and nothing remains on the
// mortgage. This is the canonical rule; two incompatible historical variants
// exist and are deliberately not merged (see DESIGN.md).
func homePaidOff(resp core.FinanceResponse) bool {
	if !resp.BoughtHome || !resp.PayOffHome {
		return false
	}
	return resp.MortgageRemaining.IsZero()
}

// FullEmergencyTarget returns the step-3 target in cents for a salary, for
// display next to the questionnaire. Zero when salary is unknown.
func FullEmergencyTarget(salary core.Decimal) int64 {
	if !salary.Valid {
		return 0
	}
	return salary.Cents / 2
}

// RetirementTarget returns the step-4 monthly target in cents for a salary.
func RetirementTarget(salary core.Decimal) int64 {
	if !salary.Valid {
		return 0
	}
	return int64(math.Round(float64(salary.Cents) * 0.15 / 12))
}
