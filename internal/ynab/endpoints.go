package ynab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/doctor-kat/ynab-assist/internal/models"
)

// deltaQuery builds the query string for a delta fetch. A nil knowledge
// requests a full fetch.
func deltaQuery(lastKnowledge *int64) string {
	if lastKnowledge == nil {
		return ""
	}
	return fmt.Sprintf("?last_knowledge_of_server=%d", *lastKnowledge)
}

// Budgets returns the authenticated user's budget list.
func (c *Client) Budgets(ctx context.Context) ([]models.BudgetSummary, error) {
	data, err := c.Request(ctx, http.MethodGet, "/budgets", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Budgets []models.BudgetSummary `json:"budgets"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding budgets: %w", err)
	}
	return out.Budgets, nil
}

// BudgetSettings returns the settings for one budget.
func (c *Client) BudgetSettings(ctx context.Context, budgetID string) (models.BudgetSettings, error) {
	data, err := c.Request(ctx, http.MethodGet, "/budgets/"+budgetID+"/settings", nil)
	if err != nil {
		return models.BudgetSettings{}, err
	}
	var out struct {
		Settings models.BudgetSettings `json:"settings"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return models.BudgetSettings{}, fmt.Errorf("decoding budget settings: %w", err)
	}
	return out.Settings, nil
}

// Accounts fetches the accounts of a budget. With a non-nil lastKnowledge
// only records changed since that server knowledge are returned, deletions
// as tombstones.
func (c *Client) Accounts(ctx context.Context, budgetID string, lastKnowledge *int64) ([]models.Account, int64, error) {
	path := "/budgets/" + budgetID + "/accounts" + deltaQuery(lastKnowledge)
	data, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, err
	}
	var out struct {
		Accounts        []models.Account `json:"accounts"`
		ServerKnowledge int64            `json:"server_knowledge"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, 0, fmt.Errorf("decoding accounts: %w", err)
	}
	return out.Accounts, out.ServerKnowledge, nil
}

// Payees fetches the payees of a budget, with the same delta semantics as
// Accounts.
func (c *Client) Payees(ctx context.Context, budgetID string, lastKnowledge *int64) ([]models.Payee, int64, error) {
	path := "/budgets/" + budgetID + "/payees" + deltaQuery(lastKnowledge)
	data, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, err
	}
	var out struct {
		Payees          []models.Payee `json:"payees"`
		ServerKnowledge int64          `json:"server_knowledge"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, 0, fmt.Errorf("decoding payees: %w", err)
	}
	return out.Payees, out.ServerKnowledge, nil
}

// CategoryGroups fetches the category groups of a budget with categories
// nested, with the same delta semantics as Accounts.
func (c *Client) CategoryGroups(ctx context.Context, budgetID string, lastKnowledge *int64) ([]models.CategoryGroup, int64, error) {
	path := "/budgets/" + budgetID + "/categories" + deltaQuery(lastKnowledge)
	data, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, err
	}
	var out struct {
		CategoryGroups  []models.CategoryGroup `json:"category_groups"`
		ServerKnowledge int64                  `json:"server_knowledge"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, 0, fmt.Errorf("decoding category groups: %w", err)
	}
	return out.CategoryGroups, out.ServerKnowledge, nil
}

// TransactionsQuery narrows a transaction listing.
type TransactionsQuery struct {
	SinceDate string // inclusive, ISO date
	Type      string // "uncategorized" or "unapproved"
	AccountID string // restrict to one account
}

// Transactions lists transactions for a budget, optionally narrowed by
// account, date or type.
func (c *Client) Transactions(ctx context.Context, budgetID string, q TransactionsQuery) ([]models.TransactionDetail, error) {
	path := "/budgets/" + budgetID + "/transactions"
	if q.AccountID != "" {
		path = "/budgets/" + budgetID + "/accounts/" + q.AccountID + "/transactions"
	}
	params := url.Values{}
	if q.SinceDate != "" {
		params.Set("since_date", q.SinceDate)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	data, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Transactions []models.TransactionDetail `json:"transactions"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}
	return out.Transactions, nil
}

// Transaction fetches a single transaction by id.
func (c *Client) Transaction(ctx context.Context, budgetID, transactionID string) (models.TransactionDetail, error) {
	path := "/budgets/" + budgetID + "/transactions/" + transactionID
	data, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return models.TransactionDetail{}, err
	}
	var out struct {
		Transaction models.TransactionDetail `json:"transaction"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return models.TransactionDetail{}, fmt.Errorf("decoding transaction: %w", err)
	}
	return out.Transaction, nil
}

// UpdateTransaction updates one transaction in place.
func (c *Client) UpdateTransaction(ctx context.Context, budgetID, transactionID string, req models.SaveSingle) (models.TransactionDetail, error) {
	path := "/budgets/" + budgetID + "/transactions/" + transactionID
	data, err := c.Request(ctx, http.MethodPut, path, req)
	if err != nil {
		return models.TransactionDetail{}, err
	}
	var out struct {
		Transaction models.TransactionDetail `json:"transaction"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return models.TransactionDetail{}, fmt.Errorf("decoding updated transaction: %w", err)
	}
	return out.Transaction, nil
}

// BatchUpdateResult reports which transactions a batch update actually
// touched.
type BatchUpdateResult struct {
	TransactionIDs     []string `json:"transaction_ids"`
	DuplicateImportIDs []string `json:"duplicate_import_ids"`
}

// UpdateTransactions updates a batch of transactions in one call and
// returns the ids the server reports as updated. The server offers no
// multi-entity transaction; a partial result is possible and the caller
// must reconcile against TransactionIDs.
func (c *Client) UpdateTransactions(ctx context.Context, budgetID string, req models.SaveMany) (BatchUpdateResult, error) {
	path := "/budgets/" + budgetID + "/transactions"
	data, err := c.Request(ctx, http.MethodPatch, path, req)
	if err != nil {
		return BatchUpdateResult{}, err
	}
	var out BatchUpdateResult
	if err := json.Unmarshal(data, &out); err != nil {
		return BatchUpdateResult{}, fmt.Errorf("decoding batch update result: %w", err)
	}
	return out, nil
}
