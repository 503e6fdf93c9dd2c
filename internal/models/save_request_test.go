package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSingleMarshalsTransactionKeyOnly(t *testing.T) {
	memo := "lunch"
	body, err := json.Marshal(SaveSingle{Transaction: SaveTransaction{Memo: &memo}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Contains(t, decoded, "transaction")
	assert.NotContains(t, decoded, "transactions")
}

func TestSaveManyMarshalsTransactionsKeyOnly(t *testing.T) {
	body, err := json.Marshal(SaveMany{Transactions: []SaveTransaction{{ID: "t1"}}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Contains(t, decoded, "transactions")
	assert.NotContains(t, decoded, "transaction")
}

func TestSaveTransactionOmitsUntouchedFields(t *testing.T) {
	categoryID := "c1"
	body, err := json.Marshal(SaveTransaction{ID: "t1", CategoryID: &categoryID})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, map[string]any{"id": "t1", "category_id": "c1"}, decoded)
}
