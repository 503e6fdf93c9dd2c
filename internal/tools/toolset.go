package tools

import (
	"context"
	"fmt"

	"github.com/doctor-kat/ynab-assist/internal/budget"
	"github.com/doctor-kat/ynab-assist/internal/cache"
	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/models"
	"github.com/doctor-kat/ynab-assist/internal/resolve"
	"github.com/doctor-kat/ynab-assist/internal/staging"
	"github.com/doctor-kat/ynab-assist/internal/ynab"
)

// TransactionClient is the slice of the YNAB client the tools use
// directly, narrowed so tests can stub it.
type TransactionClient interface {
	Transactions(ctx context.Context, budgetID string, q ynab.TransactionsQuery) ([]models.TransactionDetail, error)
	Transaction(ctx context.Context, budgetID, transactionID string) (models.TransactionDetail, error)
	UpdateTransaction(ctx context.Context, budgetID, transactionID string, req models.SaveSingle) (models.TransactionDetail, error)
}

// Toolset owns the wiring between the tool registry and the
// data-consistency core.
type Toolset struct {
	log        logging.Logger
	readOnly   bool
	client     TransactionClient
	budgets    *budget.Context
	accounts   *cache.Store[models.Account]
	payees     *cache.Store[models.Payee]
	categories *cache.Store[models.CategoryGroup]
	settings   *cache.TTLStore[models.BudgetSettings]
	resolver   *resolve.Resolver
	staged     *staging.Store
}

// NewToolset wires the tool layer over the core stores.
func NewToolset(
	log logging.Logger,
	readOnly bool,
	client TransactionClient,
	budgets *budget.Context,
	accounts *cache.Store[models.Account],
	payees *cache.Store[models.Payee],
	categories *cache.Store[models.CategoryGroup],
	settings *cache.TTLStore[models.BudgetSettings],
	resolver *resolve.Resolver,
	staged *staging.Store,
) *Toolset {
	return &Toolset{
		log:        log,
		readOnly:   readOnly,
		client:     client,
		budgets:    budgets,
		accounts:   accounts,
		payees:     payees,
		categories: categories,
		settings:   settings,
		resolver:   resolver,
		staged:     staged,
	}
}

// Registry assembles every tool into a dispatchable registry.
func (t *Toolset) Registry() *Registry {
	return NewRegistry(t.log,
		t.listBudgets(),
		t.setActiveBudget(),
		t.listAccounts(),
		t.listPayees(),
		t.listCategories(),
		t.getBudgetSettings(),
		t.listTransactions(),
		t.getTransaction(),
		t.refreshCache(),
		t.updateTransaction(),
		t.categorizeTransaction(),
		t.splitTransaction(),
		t.stageTransactionUpdate(),
		t.reviewStagedChanges(),
		t.applyStagedChanges(),
		t.discardStagedChanges(),
	)
}

func (t *Toolset) isReadOnly() bool { return t.readOnly }

// budgetID picks the explicit budget_id argument or falls back to the
// active budget.
func (t *Toolset) budgetID(args map[string]any) (string, error) {
	if id, ok := strArg(args, "budget_id"); ok {
		return id, nil
	}
	return t.budgets.ActiveBudgetIDOrError()
}

// currencyFormat returns the budget's currency format, nil when
// settings are unavailable; formatting degrades, lookups do not fail.
func (t *Toolset) currencyFormat(ctx context.Context, budgetID string) *models.CurrencyFormat {
	settings, err := t.settings.Get(ctx, budgetID)
	if err != nil {
		t.log.WithError(err).Debug("settings unavailable for formatting",
			logging.F("budget_id", budgetID))
		return nil
	}
	return &settings.CurrencyFormat
}

func strArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func requireStrArg(args map[string]any, key string) (string, error) {
	s, ok := strArg(args, key)
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return s, nil
}

func boolArg(args map[string]any, key string) (bool, bool) {
	v, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func numArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
