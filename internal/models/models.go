// Package models defines the YNAB v1 wire types shared across the
// application. Monetary amounts are milliunits: 1000 equals one unit of
// the budget's currency.
package models

// Entity is implemented by every reference-data record the delta caches
// manage. Deletion is a tombstone on the wire; the caches remove
// tombstoned records from their local maps.
type Entity interface {
	EntityID() string
	IsDeleted() bool
}

// Account is a budget account.
type Account struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	OnBudget         bool   `json:"on_budget"`
	Closed           bool   `json:"closed"`
	Balance          int64  `json:"balance"`
	ClearedBalance   int64  `json:"cleared_balance"`
	UnclearedBalance int64  `json:"uncleared_balance"`
	Deleted          bool   `json:"deleted"`
}

func (a Account) EntityID() string { return a.ID }
func (a Account) IsDeleted() bool  { return a.Deleted }

// Payee is a transaction counterparty.
type Payee struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	TransferAccountID *string `json:"transfer_account_id"`
	Deleted           bool    `json:"deleted"`
}

func (p Payee) EntityID() string { return p.ID }
func (p Payee) IsDeleted() bool  { return p.Deleted }

// Category is a budget category, always nested under a group on the wire.
type Category struct {
	ID              string  `json:"id"`
	CategoryGroupID string  `json:"category_group_id"`
	Name            string  `json:"name"`
	Hidden          bool    `json:"hidden"`
	Note            *string `json:"note"`
	Budgeted        int64   `json:"budgeted"`
	Activity        int64   `json:"activity"`
	Balance         int64   `json:"balance"`
	Deleted         bool    `json:"deleted"`
}

func (c Category) EntityID() string { return c.ID }
func (c Category) IsDeleted() bool  { return c.Deleted }

// CategoryGroup carries its categories nested, which is how the delta
// endpoint delivers them.
type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Hidden     bool       `json:"hidden"`
	Deleted    bool       `json:"deleted"`
	Categories []Category `json:"categories"`
}

func (g CategoryGroup) EntityID() string { return g.ID }
func (g CategoryGroup) IsDeleted() bool  { return g.Deleted }

// BudgetSummary describes one budget in the authenticated user's list.
type BudgetSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	LastModifiedOn string          `json:"last_modified_on"`
	FirstMonth     string          `json:"first_month"`
	LastMonth      string          `json:"last_month"`
	CurrencyFormat *CurrencyFormat `json:"currency_format"`
}

// CurrencyFormat describes how the budget renders amounts.
type CurrencyFormat struct {
	ISOCode          string `json:"iso_code"`
	ExampleFormat    string `json:"example_format"`
	DecimalDigits    int    `json:"decimal_digits"`
	DecimalSeparator string `json:"decimal_separator"`
	SymbolFirst      bool   `json:"symbol_first"`
	GroupSeparator   string `json:"group_separator"`
	CurrencySymbol   string `json:"currency_symbol"`
	DisplaySymbol    bool   `json:"display_symbol"`
}

// BudgetSettings is the settings payload for one budget.
type BudgetSettings struct {
	DateFormat struct {
		Format string `json:"format"`
	} `json:"date_format"`
	CurrencyFormat CurrencyFormat `json:"currency_format"`
}
