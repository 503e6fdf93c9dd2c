package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctor-kat/ynab-assist/internal/models"
)

func TestAmountWithCurrencyFormat(t *testing.T) {
	cf := &models.CurrencyFormat{ISOCode: "USD"}
	assert.Equal(t, "-$12.34", Amount(-12340, cf))
	assert.Equal(t, "$0.00", Amount(0, cf))
}

func TestAmountZeroFractionCurrency(t *testing.T) {
	cf := &models.CurrencyFormat{ISOCode: "JPY"}
	// Yen has no minor unit; milliunits round to whole yen.
	assert.Equal(t, "¥1,235", Amount(1234600, cf))
}

func TestAmountNilFormatFallsBackToUSD(t *testing.T) {
	assert.Equal(t, "$5.00", Amount(5000, nil))
}

func TestAmountUnknownCurrencyCode(t *testing.T) {
	cf := &models.CurrencyFormat{ISOCode: "ZZZ"}
	assert.Equal(t, "-12.34 ZZZ", Amount(-12340, cf))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, "-12.34", Units(-12340).String())
	assert.Equal(t, "0.005", Units(5).String())
}

func TestBudgetsMarksActive(t *testing.T) {
	out := Budgets([]models.BudgetSummary{
		{ID: "b1", Name: "Household"},
		{ID: "b2", Name: "Side Project"},
	}, "b2")

	assert.Contains(t, out, "Side Project (active)")
	assert.NotContains(t, out, "Household (active)")
}

func TestCategoriesSkipsHidden(t *testing.T) {
	cf := &models.CurrencyFormat{ISOCode: "USD"}
	out := Categories([]models.CategoryGroup{
		{ID: "g1", Name: "Everyday", Categories: []models.Category{
			{ID: "c1", Name: "Groceries", Budgeted: 500000, Balance: 123450},
			{ID: "c2", Name: "Old Habit", Hidden: true},
		}},
		{ID: "g2", Name: "Hidden Group", Hidden: true},
	}, cf)

	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "$123.45")
	assert.NotContains(t, out, "Old Habit")
	assert.NotContains(t, out, "Hidden Group")
}

func TestTransactionsHandlesNilNames(t *testing.T) {
	payee := "Grocery Store"
	out := Transactions([]models.TransactionDetail{
		{ID: "t1", Date: "2026-08-01", Amount: -10000, PayeeName: &payee},
		{ID: "t2", Date: "2026-08-02", Amount: 2500},
	}, nil)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Grocery Store")
	assert.Contains(t, lines[2], "$2.50")
}

func TestTransactionsCSV(t *testing.T) {
	payee := "Grocery Store"
	memo := "weekly run"
	out, err := TransactionsCSV([]models.TransactionDetail{
		{
			ID:          "t1",
			Date:        "2026-08-01",
			Amount:      -10500,
			AccountName: "Checking",
			PayeeName:   &payee,
			Memo:        &memo,
			Cleared:     "cleared",
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Account,Payee,Category,Memo,Amount,Cleared,Id", lines[0])
	assert.Equal(t, "2026-08-01,Checking,Grocery Store,,weekly run,-10.50,cleared,t1", lines[1])
}

func TestStagedChangesEmpty(t *testing.T) {
	assert.Equal(t, "no staged changes\n", StagedChanges(nil))
}
