package tools

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/doctor-kat/ynab-assist/internal/models"
)

// transactionEditParams are the fields shared by the direct and staged
// update tools.
func transactionEditParams() map[string]*genai.Schema {
	return map[string]*genai.Schema{
		"budget_id":      budgetIDParam(),
		"transaction_id": {Type: genai.TypeString, Description: "Transaction id."},
		"category_name":  {Type: genai.TypeString, Description: "New category, matched by name."},
		"payee_name":     {Type: genai.TypeString, Description: "New payee, matched by name."},
		"memo":           {Type: genai.TypeString, Description: "New memo text."},
		"cleared":        {Type: genai.TypeString, Description: "Cleared status: cleared, uncleared, or reconciled."},
		"approved":       {Type: genai.TypeBoolean, Description: "Approve or unapprove the transaction."},
		"flag_color":     {Type: genai.TypeString, Description: "Flag color: red, orange, yellow, green, blue, purple."},
	}
}

// buildEdit turns tool arguments into a proposed partial update plus a
// snapshot of exactly the fields being touched.
func (t *Toolset) buildEdit(ctx context.Context, budgetID string, tx models.TransactionDetail, args map[string]any) (original, proposed models.SaveTransaction, description string, err error) {
	var parts []string

	if name, ok := strArg(args, "category_name"); ok {
		categoryID, err := t.resolver.CategoryID(ctx, budgetID, name)
		if err != nil {
			return original, proposed, "", err
		}
		original.CategoryID = tx.CategoryID
		proposed.CategoryID = &categoryID
		parts = append(parts, fmt.Sprintf("category → %s", name))
	}
	if name, ok := strArg(args, "payee_name"); ok {
		payeeID, err := t.resolver.PayeeID(ctx, budgetID, name)
		if err != nil {
			return original, proposed, "", err
		}
		original.PayeeID = tx.PayeeID
		proposed.PayeeID = &payeeID
		parts = append(parts, fmt.Sprintf("payee → %s", name))
	}
	if memo, ok := strArg(args, "memo"); ok {
		original.Memo = tx.Memo
		proposed.Memo = &memo
		parts = append(parts, "memo")
	}
	if cleared, ok := strArg(args, "cleared"); ok {
		original.Cleared = &tx.Cleared
		proposed.Cleared = &cleared
		parts = append(parts, fmt.Sprintf("cleared → %s", cleared))
	}
	if approved, ok := boolArg(args, "approved"); ok {
		a := tx.Approved
		original.Approved = &a
		proposed.Approved = &approved
		parts = append(parts, fmt.Sprintf("approved → %t", approved))
	}
	if color, ok := strArg(args, "flag_color"); ok {
		original.FlagColor = tx.FlagColor
		proposed.FlagColor = &color
		parts = append(parts, fmt.Sprintf("flag → %s", color))
	}

	if len(parts) == 0 {
		return original, proposed, "", fmt.Errorf("no fields to change; supply at least one of category_name, payee_name, memo, cleared, approved, flag_color")
	}
	description = fmt.Sprintf("%s %s: %s", tx.Date, derefOr(tx.PayeeName, "(no payee)"), strings.Join(parts, ", "))
	return original, proposed, description, nil
}

func (t *Toolset) updateTransaction() Tool {
	return &handlerTool{
		mutating: true,
		readOnly: t.isReadOnly,
		decl: &genai.FunctionDeclaration{
			Name:        "update_transaction",
			Description: "Update a transaction immediately, without staging. Prefer the staged tools when the user wants to review first.",
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
			_, proposed, description, err := t.buildEdit(ctx, budgetID, tx, args)
			if err != nil {
				return "", err
			}
			if _, err := t.client.UpdateTransaction(ctx, budgetID, transactionID, models.SaveSingle{Transaction: proposed}); err != nil {
				return "", err
			}
			return "updated: " + description, nil
		},
	}
}
