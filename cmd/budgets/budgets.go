// Package budgets contains the budget-listing subcommand.
package budgets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doctor-kat/ynab-assist/cmd/root"
	"github.com/doctor-kat/ynab-assist/internal/format"
)

// Cmd lists the budgets available to the configured API token. Useful as
// a connectivity check without an AI key.
var Cmd = &cobra.Command{
	Use:   "budgets",
	Short: "List the budgets available to the configured API token.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		c, err := root.Build()
		if err != nil {
			root.Exit(err)
		}

		c.Budgets().Initialize(ctx)
		budgets := c.Budgets().Budgets()
		if len(budgets) == 0 {
			root.Exit(fmt.Errorf("no budgets found; check YNAB_API_TOKEN"))
		}
		activeID, _ := c.Budgets().ActiveBudgetID()
		fmt.Print(format.Budgets(budgets, activeID))
	},
}
