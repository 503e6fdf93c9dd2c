package models

// TransactionDetail is a full transaction as returned by the API,
// including any split subtransactions.
type TransactionDetail struct {
	ID                string           `json:"id"`
	Date              string           `json:"date"`
	Amount            int64            `json:"amount"`
	Memo              *string          `json:"memo"`
	Cleared           string           `json:"cleared"`
	Approved          bool             `json:"approved"`
	FlagColor         *string          `json:"flag_color"`
	AccountID         string           `json:"account_id"`
	AccountName       string           `json:"account_name"`
	PayeeID           *string          `json:"payee_id"`
	PayeeName         *string          `json:"payee_name"`
	CategoryID        *string          `json:"category_id"`
	CategoryName      *string          `json:"category_name"`
	TransferAccountID *string          `json:"transfer_account_id"`
	Deleted           bool             `json:"deleted"`
	Subtransactions   []SubTransaction `json:"subtransactions"`
}

// SubTransaction is one leg of a split transaction.
type SubTransaction struct {
	ID            string  `json:"id"`
	TransactionID string  `json:"transaction_id"`
	Amount        int64   `json:"amount"`
	Memo          *string `json:"memo"`
	PayeeID       *string `json:"payee_id"`
	CategoryID    *string `json:"category_id"`
	CategoryName  *string `json:"category_name"`
	Deleted       bool    `json:"deleted"`
}

// SaveTransaction is the partial field set for creating or updating a
// transaction. Pointer fields distinguish "leave untouched" from "set to
// zero value"; only non-nil fields reach the wire.
type SaveTransaction struct {
	ID              string               `json:"id,omitempty"`
	AccountID       *string              `json:"account_id,omitempty"`
	Date            *string              `json:"date,omitempty"`
	Amount          *int64               `json:"amount,omitempty"`
	PayeeID         *string              `json:"payee_id,omitempty"`
	PayeeName       *string              `json:"payee_name,omitempty"`
	CategoryID      *string              `json:"category_id,omitempty"`
	Memo            *string              `json:"memo,omitempty"`
	Cleared         *string              `json:"cleared,omitempty"`
	Approved        *bool                `json:"approved,omitempty"`
	FlagColor       *string              `json:"flag_color,omitempty"`
	Subtransactions []SaveSubTransaction `json:"subtransactions,omitempty"`
}

// SaveSubTransaction is one proposed leg of a split.
type SaveSubTransaction struct {
	Amount     int64   `json:"amount"`
	PayeeID    *string `json:"payee_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Memo       *string `json:"memo,omitempty"`
}
