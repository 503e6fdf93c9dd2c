package models

import "encoding/json"

// SaveRequest is the body of a transaction save call. The API accepts
// either a single transaction or a list, keyed differently; modeling the
// two shapes as distinct types makes an empty or doubled body
// unrepresentable instead of a runtime check.
type SaveRequest interface {
	json.Marshaler
	isSaveRequest()
}

// SaveSingle updates exactly one transaction.
type SaveSingle struct {
	Transaction SaveTransaction
}

func (s SaveSingle) isSaveRequest() {}

func (s SaveSingle) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Transaction SaveTransaction `json:"transaction"`
	}{s.Transaction})
}

// SaveMany updates a batch of transactions in one call.
type SaveMany struct {
	Transactions []SaveTransaction
}

func (s SaveMany) isSaveRequest() {}

func (s SaveMany) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Transactions []SaveTransaction `json:"transactions"`
	}{s.Transactions})
}
