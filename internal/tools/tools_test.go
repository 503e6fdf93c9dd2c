package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/doctor-kat/ynab-assist/internal/budget"
	"github.com/doctor-kat/ynab-assist/internal/cache"
	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/models"
	"github.com/doctor-kat/ynab-assist/internal/resolve"
	"github.com/doctor-kat/ynab-assist/internal/staging"
	"github.com/doctor-kat/ynab-assist/internal/ynab"
)

// fakeClient stubs the client surface the tools touch directly.
type fakeClient struct {
	transaction models.TransactionDetail
	updated     int
	batches     int
}

func (f *fakeClient) Transactions(context.Context, string, ynab.TransactionsQuery) ([]models.TransactionDetail, error) {
	return []models.TransactionDetail{f.transaction}, nil
}

func (f *fakeClient) Transaction(context.Context, string, string) (models.TransactionDetail, error) {
	return f.transaction, nil
}

func (f *fakeClient) UpdateTransaction(context.Context, string, string, models.SaveSingle) (models.TransactionDetail, error) {
	f.updated++
	return f.transaction, nil
}

func (f *fakeClient) UpdateTransactions(context.Context, string, models.SaveMany) (ynab.BatchUpdateResult, error) {
	f.batches++
	return ynab.BatchUpdateResult{}, nil
}

type fakeLister struct {
	budgets []models.BudgetSummary
}

func (f *fakeLister) Budgets(context.Context) ([]models.BudgetSummary, error) {
	return f.budgets, nil
}

type fixture struct {
	toolset *Toolset
	client  *fakeClient
	staged  *staging.Store
	budgets *budget.Context
}

func newFixture(t *testing.T, readOnly bool) *fixture {
	t.Helper()
	log := &logging.MockLogger{}

	client := &fakeClient{transaction: models.TransactionDetail{
		ID:        "t1",
		Date:      "2026-08-01",
		Amount:    -10000,
		AccountID: "a1",
		Cleared:   "uncleared",
	}}

	accounts := cache.NewStore("accounts",
		func(context.Context, string, *int64) ([]models.Account, int64, error) {
			return []models.Account{{ID: "a1", Name: "Checking"}}, 1, nil
		}, log)
	payees := cache.NewStore("payees",
		func(context.Context, string, *int64) ([]models.Payee, int64, error) {
			return []models.Payee{{ID: "p1", Name: "Grocery Store"}}, 1, nil
		}, log)
	categories := cache.NewStoreWithMerge("categories",
		func(context.Context, string, *int64) ([]models.CategoryGroup, int64, error) {
			return []models.CategoryGroup{{ID: "g1", Name: "Everyday", Categories: []models.Category{
				{ID: "c1", CategoryGroupID: "g1", Name: "Groceries"},
				{ID: "c2", CategoryGroupID: "g1", Name: "Dining Out"},
			}}}, 1, nil
		}, cache.MergeCategoryGroups, log)
	settings := cache.NewTTLStore("settings", 24*time.Hour,
		func(context.Context, string) (models.BudgetSettings, error) {
			var s models.BudgetSettings
			s.CurrencyFormat.ISOCode = "USD"
			return s, nil
		}, log)

	budgets := budget.NewContext(&fakeLister{budgets: []models.BudgetSummary{{ID: "b1", Name: "Household"}}}, log)
	budgets.Initialize(context.Background())

	staged := staging.NewStore(client, log)
	resolver := resolve.New(accounts, payees, categories)

	toolset := NewToolset(log, readOnly, client, budgets, accounts, payees, categories, settings, resolver, staged)
	return &fixture{toolset: toolset, client: client, staged: staged, budgets: budgets}
}

func call(t *testing.T, registry *Registry, name string, args map[string]any) map[string]any {
	t.Helper()
	resp := registry.Dispatch(context.Background(), &genai.FunctionCall{ID: "call-1", Name: name, Args: args})
	require.NotNil(t, resp)
	return resp.Response
}

func TestDispatchUnknownFunction(t *testing.T) {
	f := newFixture(t, false)
	resp := call(t, f.toolset.Registry(), "no_such_tool", nil)
	assert.Contains(t, resp["error"], "unknown function")
}

func TestReadOnlyGatesMutatingTools(t *testing.T) {
	f := newFixture(t, true)
	registry := f.toolset.Registry()

	for _, name := range []string{
		"update_transaction",
		"categorize_transaction",
		"split_transaction",
		"stage_transaction_update",
		"apply_staged_changes",
		"discard_staged_changes",
	} {
		resp := call(t, registry, name, map[string]any{"transaction_id": "t1", "category_name": "Groceries"})
		assert.Contains(t, resp["error"], "read-only", "tool %s must refuse in read-only mode", name)
	}

	assert.Zero(t, f.client.updated, "the client never saw a write")
	assert.Zero(t, f.client.batches)
	assert.Empty(t, f.staged.Changes(), "nothing was staged")
}

func TestReadOnlyStillAllowsReads(t *testing.T) {
	f := newFixture(t, true)
	resp := call(t, f.toolset.Registry(), "list_accounts", nil)
	require.NotContains(t, resp, "error")
	assert.Contains(t, resp["output"], "Checking")
}

func TestCategorizeTransactionStages(t *testing.T) {
	f := newFixture(t, false)
	resp := call(t, f.toolset.Registry(), "categorize_transaction", map[string]any{
		"transaction_id": "t1",
		"category_name":  "groceries",
	})
	require.NotContains(t, resp, "error")

	changes := f.staged.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, staging.TypeCategorization, changes[0].Type)
	assert.Equal(t, "t1", changes[0].TransactionID)
	require.NotNil(t, changes[0].ProposedChanges.CategoryID)
	assert.Equal(t, "c1", *changes[0].ProposedChanges.CategoryID)
	assert.Zero(t, f.client.batches, "staging sends nothing to the server")
}

func TestSplitTransactionValidatesSumBeforeStaging(t *testing.T) {
	f := newFixture(t, false)
	registry := f.toolset.Registry()

	// Transaction amount is -10.00; these legs sum to -11.00.
	resp := call(t, registry, "split_transaction", map[string]any{
		"transaction_id": "t1",
		"splits": []any{
			map[string]any{"amount": -6.0, "category_name": "Groceries"},
			map[string]any{"amount": -5.0, "category_name": "Dining Out"},
		},
	})
	assert.Contains(t, resp["error"], "sum")
	assert.Empty(t, f.staged.Changes(), "a failed validation stages nothing")

	resp = call(t, registry, "split_transaction", map[string]any{
		"transaction_id": "t1",
		"splits": []any{
			map[string]any{"amount": -6.0, "category_name": "Groceries"},
			map[string]any{"amount": -4.0, "category_name": "Dining Out"},
		},
	})
	require.NotContains(t, resp, "error")

	changes := f.staged.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, staging.TypeSplit, changes[0].Type)
	require.Len(t, changes[0].ProposedChanges.Subtransactions, 2)
	assert.Equal(t, int64(-6000), changes[0].ProposedChanges.Subtransactions[0].Amount)
	assert.Equal(t, int64(-4000), changes[0].ProposedChanges.Subtransactions[1].Amount)
}

func TestSplitTransactionRejectsSingleLeg(t *testing.T) {
	f := newFixture(t, false)
	resp := call(t, f.toolset.Registry(), "split_transaction", map[string]any{
		"transaction_id": "t1",
		"splits": []any{
			map[string]any{"amount": -10.0, "category_name": "Groceries"},
		},
	})
	assert.Contains(t, resp["error"], "at least two legs")
}

func TestSetActiveBudgetUnknownID(t *testing.T) {
	f := newFixture(t, false)
	resp := call(t, f.toolset.Registry(), "set_active_budget", map[string]any{"budget_id": "nope"})
	assert.Contains(t, resp["error"], "not found")
	assert.Contains(t, resp["error"], "b1")
}

func TestBudgetIDFallsBackToActive(t *testing.T) {
	f := newFixture(t, false)
	// The single budget auto-activated, so no budget_id argument is needed.
	resp := call(t, f.toolset.Registry(), "list_categories", nil)
	require.NotContains(t, resp, "error")
	assert.Contains(t, resp["output"], "Groceries")
}

func TestUpdateTransactionRequiresAField(t *testing.T) {
	f := newFixture(t, false)
	resp := call(t, f.toolset.Registry(), "update_transaction", map[string]any{"transaction_id": "t1"})
	assert.Contains(t, resp["error"], "no fields to change")
	assert.Zero(t, f.client.updated)
}

func TestUpdateTransactionDirect(t *testing.T) {
	f := newFixture(t, false)
	resp := call(t, f.toolset.Registry(), "update_transaction", map[string]any{
		"transaction_id": "t1",
		"category_name":  "Dining Out",
	})
	require.NotContains(t, resp, "error")
	assert.Equal(t, 1, f.client.updated)
	assert.Empty(t, f.staged.Changes(), "direct updates bypass staging")
}

func TestReviewApplyDiscardRoundTrip(t *testing.T) {
	f := newFixture(t, false)
	registry := f.toolset.Registry()

	call(t, registry, "categorize_transaction", map[string]any{
		"transaction_id": "t1", "category_name": "Groceries",
	})

	review := call(t, registry, "review_staged_changes", nil)
	assert.Contains(t, review["output"], "category → Groceries")

	discard := call(t, registry, "discard_staged_changes", nil)
	assert.Contains(t, discard["output"], "discarded 1")
	assert.Empty(t, f.staged.Changes())
}
