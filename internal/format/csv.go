package format

import (
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/doctor-kat/ynab-assist/internal/models"
)

// csvTransaction is the flattened CSV row for one transaction.
type csvTransaction struct {
	Date     string `csv:"Date"`
	Account  string `csv:"Account"`
	Payee    string `csv:"Payee"`
	Category string `csv:"Category"`
	Memo     string `csv:"Memo"`
	Amount   string `csv:"Amount"`
	Cleared  string `csv:"Cleared"`
	ID       string `csv:"Id"`
}

// TransactionsCSV renders transactions as CSV with amounts in whole
// currency units.
func TransactionsCSV(transactions []models.TransactionDetail) (string, error) {
	rows := make([]csvTransaction, 0, len(transactions))
	for _, t := range transactions {
		amount := decimal.NewFromInt(t.Amount).DivRound(decimal.NewFromInt(1000), 2)
		rows = append(rows, csvTransaction{
			Date:     t.Date,
			Account:  t.AccountName,
			Payee:    deref(t.PayeeName),
			Category: deref(t.CategoryName),
			Memo:     deref(t.Memo),
			Amount:   amount.StringFixed(2),
			Cleared:  t.Cleared,
			ID:       t.ID,
		})
	}
	return gocsv.MarshalString(&rows)
}
