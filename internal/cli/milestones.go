package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"babysteps/internal/milestones"
	"babysteps/internal/services"
)

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "Show Baby Steps progress",
	RunE:  runMilestones,
}

func init() {
	rootCmd.AddCommand(milestonesCmd)
}

func runMilestones(_ *cobra.Command, _ []string) error {
	s, err := connect()
	if err != nil {
		return err
	}
	finance := services.NewFinanceService(s.backend, logger())
	milestone := services.NewMilestoneService(s.backend, finance, logger())

	overview, err := milestone.View(s.ctx(), s.user.UserID, s.user.Salary, false)
	if err != nil {
		return fmt.Errorf("load milestones: %w", err)
	}

	fmt.Println(titleStyle.Render("Baby Steps"))
	fmt.Println(progressBar(overview.Evaluation.Percentage, 30))
	fmt.Println()

	for i := 0; i < milestones.StepCount; i++ {
		title := milestones.Titles[i]
		if i < len(overview.Catalog) && overview.Catalog[i].Title != "" {
			title = overview.Catalog[i].Title
		}
		if overview.Evaluation.Steps[i] {
			fmt.Printf("%s %s\n", doneStyle.Render("[x]"), title)
		} else {
			fmt.Printf("%s %s\n", todoStyle.Render("[ ]"), mutedStyle.Render(title))
		}
	}

	fmt.Println()
	fmt.Printf("%d of %d steps complete\n", overview.Evaluation.Completed, milestones.StepCount)
	return nil
}
