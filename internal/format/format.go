// Package format renders API records and staged-change reviews as text
// for tool results and CLI output.
package format

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/doctor-kat/ynab-assist/internal/models"
	"github.com/doctor-kat/ynab-assist/internal/staging"
)

// Amount renders milliunits in the budget's currency. A nil or unknown
// currency format falls back to a plain decimal with the currency code.
func Amount(milliunits int64, cf *models.CurrencyFormat) string {
	code := "USD"
	if cf != nil && cf.ISOCode != "" {
		code = cf.ISOCode
	}
	currency := money.GetCurrency(code)
	if currency == nil {
		units := decimal.NewFromInt(milliunits).DivRound(decimal.NewFromInt(1000), 2)
		return fmt.Sprintf("%s %s", units.StringFixed(2), code)
	}
	minor := decimal.NewFromInt(milliunits).
		Mul(decimal.New(1, int32(currency.Fraction))).
		DivRound(decimal.NewFromInt(1000), 0).
		IntPart()
	return money.New(minor, code).Display()
}

// Units converts milliunits to a decimal amount in whole currency units.
func Units(milliunits int64) decimal.Decimal {
	return decimal.NewFromInt(milliunits).DivRound(decimal.NewFromInt(1000), 3)
}

// Budgets renders the budget list with an active marker.
func Budgets(budgets []models.BudgetSummary, activeID string) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLAST MODIFIED")
	for _, budget := range budgets {
		marker := ""
		if budget.ID == activeID {
			marker = " (active)"
		}
		fmt.Fprintf(w, "%s\t%s%s\t%s\n", budget.ID, budget.Name, marker, budget.LastModifiedOn)
	}
	_ = w.Flush()
	return b.String()
}

// Accounts renders open accounts first, sorted output from the store.
func Accounts(accounts []models.Account, cf *models.CurrencyFormat) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tBALANCE\tSTATUS")
	for _, a := range accounts {
		status := "open"
		if a.Closed {
			status = "closed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Name, a.Type, Amount(a.Balance, cf), status)
	}
	_ = w.Flush()
	return b.String()
}

// Payees renders the payee list.
func Payees(payees []models.Payee) string {
	var b strings.Builder
	for _, p := range payees {
		b.WriteString(p.Name)
		b.WriteByte('\n')
	}
	return b.String()
}

// Categories renders groups with their categories indented.
func Categories(groups []models.CategoryGroup, cf *models.CurrencyFormat) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		if g.Hidden {
			continue
		}
		fmt.Fprintf(w, "%s\t\t\n", g.Name)
		for _, c := range g.Categories {
			if c.Hidden {
				continue
			}
			fmt.Fprintf(w, "  %s\tbudgeted %s\tbalance %s\n",
				c.Name, Amount(c.Budgeted, cf), Amount(c.Balance, cf))
		}
	}
	_ = w.Flush()
	return b.String()
}

// Transactions renders a transaction listing.
func Transactions(transactions []models.TransactionDetail, cf *models.CurrencyFormat) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tPAYEE\tCATEGORY\tAMOUNT\tID")
	for _, t := range transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.Date, deref(t.PayeeName), deref(t.CategoryName), Amount(t.Amount, cf), t.ID)
	}
	_ = w.Flush()
	return b.String()
}

// StagedChanges renders the review listing of pending changes.
func StagedChanges(changes []staging.StagedChange) string {
	if len(changes) == 0 {
		return "no staged changes\n"
	}
	var b strings.Builder
	for _, c := range changes {
		fmt.Fprintf(&b, "[%s] %s %s\n", c.ID, c.Type, c.Description)
		fmt.Fprintf(&b, "  transaction %s, staged %s\n",
			c.TransactionID, c.Timestamp.Format(time.RFC3339))
	}
	return b.String()
}

// ApplySummary renders the outcome of an apply run.
func ApplySummary(summary staging.ApplySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "applied %d, failed %d\n", summary.Applied, summary.Failed)
	for _, r := range summary.Results {
		if r.Status == staging.StatusApplied {
			fmt.Fprintf(&b, "  ok   %s %s\n", r.Change.Type, r.Change.Description)
			continue
		}
		fmt.Fprintf(&b, "  fail %s %s: %s\n", r.Change.Type, r.Change.Description, r.Error)
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
