package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/doctor-kat/ynab-assist/internal/format"
	"github.com/doctor-kat/ynab-assist/internal/models"
	"github.com/doctor-kat/ynab-assist/internal/ynab"
)

func budgetIDParam() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeString,
		Description: "Budget id. Omit to use the active budget.",
	}
}

func (t *Toolset) listBudgets() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "list_budgets",
			Description: "List the budgets available to the authenticated user. The active budget is marked.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			budgets := t.budgets.Budgets()
			if len(budgets) == 0 {
				t.budgets.Initialize(ctx)
				budgets = t.budgets.Budgets()
			}
			if len(budgets) == 0 {
				return "", fmt.Errorf("no budgets available; check the API token")
			}
			activeID, _ := t.budgets.ActiveBudgetID()
			return format.Budgets(budgets, activeID), nil
		},
	}
}

func (t *Toolset) setActiveBudget() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "set_active_budget",
			Description: "Set the budget that later operations address implicitly.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"budget_id": {Type: genai.TypeString, Description: "Id of the budget to activate."},
				},
				Required: []string{"budget_id"},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			id, err := requireStrArg(args, "budget_id")
			if err != nil {
				return "", err
			}
			if err := t.budgets.SetActive(id); err != nil {
				return "", err
			}
			return fmt.Sprintf("active budget set to %s", id), nil
		},
	}
}

func (t *Toolset) listAccounts() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "list_accounts",
			Description: "List the accounts of a budget with balances.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"budget_id": budgetIDParam()},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			budgetID, err := t.budgetID(args)
			if err != nil {
				return "", err
			}
			accounts, err := t.accounts.Get(ctx, budgetID)
			if err != nil {
				return "", err
			}
			return format.Accounts(accounts, t.currencyFormat(ctx, budgetID)), nil
		},
	}
}

func (t *Toolset) listPayees() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "list_payees",
			Description: "List the payees of a budget.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"budget_id": budgetIDParam()},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			budgetID, err := t.budgetID(args)
			if err != nil {
				return "", err
			}
			payees, err := t.payees.Get(ctx, budgetID)
			if err != nil {
				return "", err
			}
			return format.Payees(payees), nil
		},
	}
}

func (t *Toolset) listCategories() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "list_categories",
			Description: "List the category groups and categories of a budget with budgeted amounts and balances.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"budget_id": budgetIDParam()},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			budgetID, err := t.budgetID(args)
			if err != nil {
				return "", err
			}
			groups, err := t.categories.Get(ctx, budgetID)
			if err != nil {
				return "", err
			}
			return format.Categories(groups, t.currencyFormat(ctx, budgetID)), nil
		},
	}
}

func (t *Toolset) getBudgetSettings() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "get_budget_settings",
			Description: "Get a budget's date and currency settings.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"budget_id": budgetIDParam()},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			budgetID, err := t.budgetID(args)
			if err != nil {
				return "", err
			}
			settings, err := t.settings.Get(ctx, budgetID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("date format: %s\ncurrency: %s (%s)\n",
				settings.DateFormat.Format,
				settings.CurrencyFormat.ISOCode,
				settings.CurrencyFormat.CurrencySymbol), nil
		},
	}
}

func (t *Toolset) listTransactions() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "list_transactions",
			Description: "List transactions of a budget, optionally narrowed by account name, start date, or type.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"budget_id":    budgetIDParam(),
					"account_name": {Type: genai.TypeString, Description: "Restrict to one account, matched by name."},
					"since_date":   {Type: genai.TypeString, Description: "Earliest date to include, ISO format (2024-01-31)."},
					"type":         {Type: genai.TypeString, Description: "Either \"uncategorized\" or \"unapproved\"."},
				},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			budgetID, err := t.budgetID(args)
			if err != nil {
				return "", err
			}
			q := ynab.TransactionsQuery{}
			if name, ok := strArg(args, "account_name"); ok {
				accountID, err := t.resolver.AccountID(ctx, budgetID, name)
				if err != nil {
					return "", err
				}
				q.AccountID = accountID
			}
			q.SinceDate, _ = strArg(args, "since_date")
			q.Type, _ = strArg(args, "type")

			transactions, err := t.client.Transactions(ctx, budgetID, q)
			if err != nil {
				return "", err
			}
			return format.Transactions(transactions, t.currencyFormat(ctx, budgetID)), nil
		},
	}
}

func (t *Toolset) getTransaction() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "get_transaction",
			Description: "Get a single transaction by id, including split subtransactions.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"budget_id":      budgetIDParam(),
					"transaction_id": {Type: genai.TypeString, Description: "Transaction id."},
				},
				Required: []string{"transaction_id"},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			budgetID, err := t.budgetID(args)
			if err != nil {
				return "", err
			}
			transactionID, err := requireStrArg(args, "transaction_id")
			if err != nil {
				return "", err
			}
			tx, err := t.client.Transaction(ctx, budgetID, transactionID)
			if err != nil {
				return "", err
			}
			cf := t.currencyFormat(ctx, budgetID)
			out := format.Transactions([]models.TransactionDetail{tx}, cf)
			for _, sub := range tx.Subtransactions {
				out += fmt.Sprintf("  split: %s %s\n", format.Amount(sub.Amount, cf), derefOr(sub.CategoryName, "uncategorized"))
			}
			return out, nil
		},
	}
}

func (t *Toolset) refreshCache() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "refresh_cache",
			Description: "Force a full refresh of the cached reference data (accounts, payees, categories, settings) for a budget.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"budget_id": budgetIDParam()},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			budgetID, err := t.budgetID(args)
			if err != nil {
				return "", err
			}
			t.budgets.Refresh(ctx)
			if _, err := t.accounts.Refresh(ctx, budgetID); err != nil {
				return "", err
			}
			if _, err := t.payees.Refresh(ctx, budgetID); err != nil {
				return "", err
			}
			if _, err := t.categories.Refresh(ctx, budgetID); err != nil {
				return "", err
			}
			if _, err := t.settings.Refresh(ctx, budgetID); err != nil {
				return "", err
			}
			return fmt.Sprintf("caches refreshed for budget %s", budgetID), nil
		},
	}
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
