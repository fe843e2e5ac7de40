package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"babysteps/internal/core"
	"babysteps/internal/milestones"
	"babysteps/internal/questionnaire"
	"babysteps/internal/services"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Fill in or update the Baby Steps questionnaire",
	RunE:  runSteps,
}

func init() {
	rootCmd.AddCommand(stepsCmd)
}

func runSteps(_ *cobra.Command, _ []string) error {
	s, err := connect()
	if err != nil {
		return err
	}
	finance := services.NewFinanceService(s.backend, logger())
	ctx := s.ctx()

	form := questionnaire.Form{}
	if existing, found, err := finance.Load(ctx, s.user.UserID); err == nil && found {
		form = prefill(existing)
		// Carry existing child ids so the save updates rows instead of
		// duplicating them.
		if form.HasChildren {
			if rows, err := finance.LoadChildren(ctx, s.user.UserID); err == nil {
				for _, c := range rows {
					form.Children = append(form.Children, questionnaire.ChildForm{
						ChildID:                  strconv.FormatInt(c.ChildID, 10),
						ChildName:                c.ChildName,
						ParentName:               c.ParentName,
						TotalContributionPlanned: c.TotalContributionPlanned.String(),
						MonthlyContribution:      c.MonthlyContribution.String(),
						ContributedAsPlanned:     c.ContributedAsPlanned,
					})
				}
			}
		}
	}

	if err := askSteps(&form); err != nil {
		return err
	}
	if form.HasChildren {
		if err := askChildren(&form); err != nil {
			return err
		}
	}

	result, errs := form.Validate(s.user.UserID, s.user.Salary)
	if len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for field := range errs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Println(errStyle.Render(fmt.Sprintf("%s: %s", field, errs[field])))
		}
		return fmt.Errorf("%d field(s) need fixing", len(errs))
	}

	if _, err := finance.Save(ctx, s.user.UserID, result.Response, result.Children); err != nil {
		return fmt.Errorf("save answers: %w", err)
	}

	eval := milestones.Evaluate(result.Response, result.Children, s.user.Salary)
	fmt.Println()
	fmt.Println(titleStyle.Render("Answers saved."))
	fmt.Println(progressBar(eval.Percentage, 30))
	if eval.AllComplete() {
		fmt.Println(doneStyle.Render("All six Baby Steps complete. Congratulations!"))
	}
	return nil
}

// askSteps walks the six steps as one multi-group form. Amount groups hide
// themselves while their governing answer is no.
func askSteps(f *questionnaire.Form) error {
	amountNote := "Amounts accept dollars and cents, e.g. 1234.56"

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Is your salary on file correct?").
				Value(&f.SalaryConfirmed),
			huh.NewConfirm().
				Title("Do you have emergency savings?").
				Value(&f.EmergencySavings),
			huh.NewConfirm().
				Title("Do you currently have non-mortgage debt?").
				Value(&f.HasDebt),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Emergency savings amount").
				Description(amountNote).
				Value(&f.EmergencySavingsAmount),
		).WithHideFunc(func() bool { return !f.EmergencySavings }),
		huh.NewGroup(
			huh.NewInput().
				Title("Remaining debt amount").
				Value(&f.DebtAmount),
		).WithHideFunc(func() bool { return !f.HasDebt }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Have you built a full emergency fund?").
				Value(&f.FullEmergencyFund),
			huh.NewConfirm().
				Title("Are you investing for retirement?").
				Value(&f.RetirementInvesting),
			huh.NewConfirm().
				Title("Do you have children?").
				Value(&f.HasChildren),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Full emergency fund amount").
				Value(&f.FullEmergencyFundAmount),
		).WithHideFunc(func() bool { return !f.FullEmergencyFund }),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly retirement contribution").
				Value(&f.RetirementSavingsAmount),
		).WithHideFunc(func() bool { return !f.RetirementInvesting }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Have you bought a home?").
				Value(&f.BoughtHome),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Are you paying off the mortgage?").
				Value(&f.PayOffHome),
			huh.NewInput().
				Title("Remaining mortgage balance").
				Description("Enter 0 for a paid-off home").
				Value(&f.MortgageRemaining),
		).WithHideFunc(func() bool { return !f.BoughtHome }),
	)
	return form.Run()
}

// askChildren collects the college-funding rows, one short form per child.
func askChildren(f *questionnaire.Form) error {
	count := len(f.Children)
	if count == 0 {
		count = 1
	}
	countStr := strconv.Itoa(count)

	countForm := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("How many children?").
			Value(&countStr).
			Validate(func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < 1 || n > 10 {
					return fmt.Errorf("enter a number between 1 and 10")
				}
				return nil
			}),
	))
	if err := countForm.Run(); err != nil {
		return err
	}
	count, _ = strconv.Atoi(countStr)
	f.ChildrenCount = countStr

	for len(f.Children) < count {
		f.Children = append(f.Children, questionnaire.ChildForm{})
	}

	for i := 0; i < count; i++ {
		child := &f.Children[i]
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Child %d name", i+1)).
				Value(&child.ChildName),
			huh.NewInput().
				Title("Contributing parent").
				Value(&child.ParentName),
			huh.NewInput().
				Title("Total contribution planned").
				Value(&child.TotalContributionPlanned),
			huh.NewInput().
				Title("Monthly contribution").
				Value(&child.MonthlyContribution),
			huh.NewConfirm().
				Title("Contributing as planned?").
				Value(&child.ContributedAsPlanned),
		))
		if err := form.Run(); err != nil {
			return err
		}
	}
	return nil
}

// prefill converts a stored response back to editable form values.
func prefill(resp core.FinanceResponse) questionnaire.Form {
	f := questionnaire.Form{
		SalaryConfirmed:         resp.SalaryConfirmed,
		EmergencySavings:        resp.EmergencySavings,
		EmergencySavingsAmount:  resp.EmergencySavingsAmount.String(),
		HasDebt:                 resp.HasDebt,
		DebtAmount:              resp.DebtAmount.String(),
		FullEmergencyFund:       resp.FullEmergencyFund,
		FullEmergencyFundAmount: resp.FullEmergencyFundAmount.String(),
		RetirementInvesting:     resp.RetirementInvesting,
		RetirementSavingsAmount: resp.RetirementSavingsAmount.String(),
		HasChildren:             resp.HasChildren,
		BoughtHome:              resp.BoughtHome,
		PayOffHome:              resp.PayOffHome,
		MortgageRemaining:       resp.MortgageRemaining.String(),
	}
	if resp.ChildrenCount != nil {
		f.ChildrenCount = strconv.Itoa(*resp.ChildrenCount)
	}
	return f
}
