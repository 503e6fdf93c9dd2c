// Package export contains the CSV export subcommand.
package export

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doctor-kat/ynab-assist/cmd/root"
	"github.com/doctor-kat/ynab-assist/internal/format"
	"github.com/doctor-kat/ynab-assist/internal/ynab"
)

var (
	budgetID  string
	sinceDate string
	output    string
)

// Cmd dumps transactions of a budget as CSV.
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the active budget's transactions to CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		c, err := root.Build()
		if err != nil {
			root.Exit(err)
		}

		id := budgetID
		if id == "" {
			c.Budgets().Initialize(ctx)
			id, err = c.Budgets().ActiveBudgetIDOrError()
			if err != nil {
				root.Exit(err)
			}
		}

		transactions, err := c.Client().Transactions(ctx, id, ynab.TransactionsQuery{SinceDate: sinceDate})
		if err != nil {
			root.Exit(err)
		}

		csv, err := format.TransactionsCSV(transactions)
		if err != nil {
			root.Exit(err)
		}

		if output == "" {
			fmt.Print(csv)
			return
		}
		if err := os.WriteFile(output, []byte(csv), 0600); err != nil {
			root.Exit(err)
		}
		fmt.Printf("wrote %d transactions to %s\n", len(transactions), output)
	},
}

func init() {
	Cmd.Flags().StringVarP(&budgetID, "budget", "b", "", "budget id (defaults to the active budget)")
	Cmd.Flags().StringVarP(&sinceDate, "since", "s", "", "earliest date to include (ISO format)")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to stdout)")
}
