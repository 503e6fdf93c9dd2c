package tools

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/doctor-kat/ynab-assist/internal/apperr"
	"github.com/doctor-kat/ynab-assist/internal/format"
	"github.com/doctor-kat/ynab-assist/internal/models"
	"github.com/doctor-kat/ynab-assist/internal/staging"
)

func (t *Toolset) categorizeTransaction() Tool {
	return &handlerTool{
		mutating: true,
		readOnly: t.isReadOnly,
		decl: &genai.FunctionDeclaration{
			Name:        "categorize_transaction",
			Description: "Stage a category change for a transaction. Nothing is sent to the server until apply_staged_changes.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"budget_id":      budgetIDParam(),
					"transaction_id": {Type: genai.TypeString, Description: "Transaction id."},
					"category_name":  {Type: genai.TypeString, Description: "Category to assign, matched by name."},
				},
				Required: []string{"transaction_id", "category_name"},
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
			name, err := requireStrArg(args, "category_name")
			if err != nil {
				return "", err
			}
			categoryID, err := t.resolver.CategoryID(ctx, budgetID, name)
			if err != nil {
				return "", err
			}
			tx, err := t.client.Transaction(ctx, budgetID, transactionID)
			if err != nil {
				return "", err
			}

			original := models.SaveTransaction{CategoryID: tx.CategoryID}
			proposed := models.SaveTransaction{CategoryID: &categoryID}
			description := fmt.Sprintf("%s %s: category → %s",
				tx.Date, derefOr(tx.PayeeName, "(no payee)"), name)

			change := t.staged.Stage(staging.TypeCategorization, budgetID, transactionID, description, original, proposed)
			return fmt.Sprintf("staged %s: %s", change.ID, description), nil
		},
	}
}

func (t *Toolset) splitTransaction() Tool {
	return &handlerTool{
		mutating: true,
		readOnly: t.isReadOnly,
		decl: &genai.FunctionDeclaration{
			Name:        "split_transaction",
			Description: "Stage a split of a transaction into multiple category legs. The leg amounts must sum exactly to the transaction amount.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"budget_id":      budgetIDParam(),
					"transaction_id": {Type: genai.TypeString, Description: "Transaction id."},
					"splits": {
						Type:        genai.TypeArray,
						Description: "The split legs.",
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"amount":        {Type: genai.TypeNumber, Description: "Leg amount in currency units, same sign as the transaction."},
								"category_name": {Type: genai.TypeString, Description: "Category for this leg, matched by name."},
								"memo":          {Type: genai.TypeString, Description: "Optional memo for this leg."},
							},
							Required: []string{"amount", "category_name"},
						},
					},
				},
				Required: []string{"transaction_id", "splits"},
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
			rawSplits, ok := args["splits"].([]any)
			if !ok || len(rawSplits) < 2 {
				return "", &apperr.ValidationError{Field: "splits", Reason: "a split needs at least two legs"}
			}

			tx, err := t.client.Transaction(ctx, budgetID, transactionID)
			if err != nil {
				return "", err
			}

			// Build the legs and check the sum before anything is staged.
			thousand := decimal.NewFromInt(1000)
			sum := decimal.Zero
			legs := make([]models.SaveSubTransaction, 0, len(rawSplits))
			for i, raw := range rawSplits {
				leg, ok := raw.(map[string]any)
				if !ok {
					return "", &apperr.ValidationError{Field: "splits", Reason: fmt.Sprintf("leg %d is not an object", i+1)}
				}
				amount, ok := numArg(leg, "amount")
				if !ok {
					return "", &apperr.ValidationError{Field: "splits", Reason: fmt.Sprintf("leg %d has no amount", i+1)}
				}
				milli := decimal.NewFromFloat(amount).Mul(thousand)
				if !milli.IsInteger() {
					return "", &apperr.ValidationError{Field: "splits", Reason: fmt.Sprintf("leg %d amount has sub-milliunit precision", i+1)}
				}
				name, ok := strArg(leg, "category_name")
				if !ok {
					return "", &apperr.ValidationError{Field: "splits", Reason: fmt.Sprintf("leg %d has no category_name", i+1)}
				}
				categoryID, err := t.resolver.CategoryID(ctx, budgetID, name)
				if err != nil {
					return "", err
				}
				sub := models.SaveSubTransaction{
					Amount:     milli.IntPart(),
					CategoryID: &categoryID,
				}
				if memo, ok := strArg(leg, "memo"); ok {
					sub.Memo = &memo
				}
				legs = append(legs, sub)
				sum = sum.Add(milli)
			}

			if !sum.Equal(decimal.NewFromInt(tx.Amount)) {
				return "", &apperr.ValidationError{
					Field: "splits",
					Reason: fmt.Sprintf("leg amounts sum to %s but the transaction amount is %s",
						format.Units(sum.IntPart()), format.Units(tx.Amount)),
				}
			}

			amount := tx.Amount
			original := models.SaveTransaction{Amount: &amount, CategoryID: tx.CategoryID}
			proposed := models.SaveTransaction{Subtransactions: legs}
			description := fmt.Sprintf("%s %s: split into %d legs",
				tx.Date, derefOr(tx.PayeeName, "(no payee)"), len(legs))

			change := t.staged.Stage(staging.TypeSplit, budgetID, transactionID, description, original, proposed)
			return fmt.Sprintf("staged %s: %s", change.ID, description), nil
		},
	}
}

func (t *Toolset) stageTransactionUpdate() Tool {
	return &handlerTool{
		mutating: true,
		readOnly: t.isReadOnly,
		decl: &genai.FunctionDeclaration{
			Name:        "stage_transaction_update",
			Description: "Stage a general transaction edit for later review and batch apply.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: transactionEditParams(),
				Required:   []string{"transaction_id"},
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
			original, proposed, description, err := t.buildEdit(ctx, budgetID, tx, args)
			if err != nil {
				return "", err
			}
			change := t.staged.Stage(staging.TypeUpdate, budgetID, transactionID, description, original, proposed)
			return fmt.Sprintf("staged %s: %s", change.ID, description), nil
		},
	}
}

func (t *Toolset) reviewStagedChanges() Tool {
	return &handlerTool{
		decl: &genai.FunctionDeclaration{
			Name:        "review_staged_changes",
			Description: "List the staged changes pending apply, optionally for one transaction.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"budget_id":      budgetIDParam(),
					"transaction_id": {Type: genai.TypeString, Description: "Restrict to one transaction."},
				},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			if transactionID, ok := strArg(args, "transaction_id"); ok {
				budgetID, err := t.budgetID(args)
				if err != nil {
					return "", err
				}
				return format.StagedChanges(t.staged.ChangesForTransaction(budgetID, transactionID)), nil
			}
			return format.StagedChanges(t.staged.Changes()), nil
		},
	}
}

func (t *Toolset) applyStagedChanges() Tool {
	return &handlerTool{
		mutating: true,
		readOnly: t.isReadOnly,
		decl: &genai.FunctionDeclaration{
			Name:        "apply_staged_changes",
			Description: "Commit staged changes to the server as one batch per budget. Failed changes stay staged.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"change_ids": {
						Type:        genai.TypeArray,
						Description: "Ids of the changes to apply. Omit to apply everything staged.",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
				},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			var ids []string
			if raw, ok := args["change_ids"].([]any); ok {
				for _, v := range raw {
					if s, ok := v.(string); ok {
						ids = append(ids, s)
					}
				}
			}
			summary := t.staged.Apply(ctx, ids...)
			return format.ApplySummary(summary), nil
		},
	}
}

func (t *Toolset) discardStagedChanges() Tool {
	return &handlerTool{
		mutating: true,
		readOnly: t.isReadOnly,
		decl: &genai.FunctionDeclaration{
			Name:        "discard_staged_changes",
			Description: "Discard one staged change by id, or all staged changes when no id is given.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"change_id": {Type: genai.TypeString, Description: "Id of the change to discard. Omit to discard everything."},
				},
			},
		},
		handler: func(ctx context.Context, args map[string]any) (string, error) {
			if id, ok := strArg(args, "change_id"); ok {
				if !t.staged.Discard(id) {
					return "", &apperr.NotFoundError{Kind: "staged change", Query: id}
				}
				return fmt.Sprintf("discarded %s", id), nil
			}
			n := t.staged.DiscardAll()
			return fmt.Sprintf("discarded %d staged changes", n), nil
		},
	}
}
