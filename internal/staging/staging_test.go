package staging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/models"
	"github.com/doctor-kat/ynab-assist/internal/ynab"
)

type batchCall struct {
	budgetID string
	req      models.SaveMany
}

// fakeUpdater scripts per-budget batch results or errors and records
// every call.
type fakeUpdater struct {
	results map[string]ynab.BatchUpdateResult
	errs    map[string]error
	calls   []batchCall
}

func (f *fakeUpdater) UpdateTransactions(_ context.Context, budgetID string, req models.SaveMany) (ynab.BatchUpdateResult, error) {
	f.calls = append(f.calls, batchCall{budgetID: budgetID, req: req})
	if err, ok := f.errs[budgetID]; ok {
		return ynab.BatchUpdateResult{}, err
	}
	return f.results[budgetID], nil
}

func strptr(s string) *string { return &s }

func stageCategorization(s *Store, budgetID, txID, categoryID string) StagedChange {
	return s.Stage(TypeCategorization, budgetID, txID, "recategorize "+txID,
		models.SaveTransaction{CategoryID: nil},
		models.SaveTransaction{CategoryID: strptr(categoryID)})
}

func TestStageGeneratesIDAndTimestamp(t *testing.T) {
	s := NewStore(&fakeUpdater{}, &logging.MockLogger{})

	change := stageCategorization(s, "b1", "t1", "c1")

	assert.NotEmpty(t, change.ID)
	assert.False(t, change.Timestamp.IsZero())
	assert.Equal(t, TypeCategorization, change.Type)

	got, ok := s.Change(change.ID)
	require.True(t, ok)
	assert.Equal(t, change, got)
}

func TestChangesPreserveStageOrder(t *testing.T) {
	s := NewStore(&fakeUpdater{}, &logging.MockLogger{})
	first := stageCategorization(s, "b1", "t1", "c1")
	second := stageCategorization(s, "b1", "t2", "c2")

	changes := s.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, first.ID, changes[0].ID)
	assert.Equal(t, second.ID, changes[1].ID)
}

func TestChangesForTransaction(t *testing.T) {
	s := NewStore(&fakeUpdater{}, &logging.MockLogger{})
	stageCategorization(s, "b1", "t1", "c1")
	want := stageCategorization(s, "b1", "t2", "c2")
	stageCategorization(s, "b2", "t2", "c3")

	got := s.ChangesForTransaction("b1", "t2")
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)
}

func TestDiscard(t *testing.T) {
	s := NewStore(&fakeUpdater{}, &logging.MockLogger{})
	change := stageCategorization(s, "b1", "t1", "c1")

	assert.True(t, s.Discard(change.ID))
	assert.False(t, s.Discard(change.ID), "second discard misses")
	assert.Empty(t, s.Changes())
}

func TestDiscardAll(t *testing.T) {
	s := NewStore(&fakeUpdater{}, &logging.MockLogger{})
	stageCategorization(s, "b1", "t1", "c1")
	stageCategorization(s, "b1", "t2", "c2")

	assert.Equal(t, 2, s.DiscardAll())
	assert.Empty(t, s.Changes())
}

func TestApplyRemovesReportedChanges(t *testing.T) {
	updater := &fakeUpdater{results: map[string]ynab.BatchUpdateResult{
		"b1": {TransactionIDs: []string{"t1"}},
	}}
	s := NewStore(updater, &logging.MockLogger{})
	change := stageCategorization(s, "b1", "t1", "c1")

	summary := s.Apply(context.Background(), change.ID)

	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, s.Changes(), "applied changes leave the store")

	// One batch call carrying the proposed fields keyed by transaction id.
	require.Len(t, updater.calls, 1)
	require.Len(t, updater.calls[0].req.Transactions, 1)
	assert.Equal(t, "t1", updater.calls[0].req.Transactions[0].ID)
	require.NotNil(t, updater.calls[0].req.Transactions[0].CategoryID)
	assert.Equal(t, "c1", *updater.calls[0].req.Transactions[0].CategoryID)
}

func TestApplyRetainsUnreportedChanges(t *testing.T) {
	updater := &fakeUpdater{results: map[string]ynab.BatchUpdateResult{
		"b1": {TransactionIDs: []string{"something-else"}},
	}}
	s := NewStore(updater, &logging.MockLogger{})
	change := stageCategorization(s, "b1", "t1", "c1")

	summary := s.Apply(context.Background())

	assert.Equal(t, 0, summary.Applied)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, StatusFailed, summary.Results[0].Status)
	assert.NotEmpty(t, summary.Results[0].Error)

	_, ok := s.Change(change.ID)
	assert.True(t, ok, "a failed change stays staged")
}

func TestApplyPartitionIsolation(t *testing.T) {
	updater := &fakeUpdater{
		results: map[string]ynab.BatchUpdateResult{
			"a": {TransactionIDs: []string{"t1", "t2"}},
		},
		errs: map[string]error{
			"b": errors.New("server exploded"),
		},
	}
	s := NewStore(updater, &logging.MockLogger{})
	a1 := stageCategorization(s, "a", "t1", "c1")
	a2 := stageCategorization(s, "a", "t2", "c2")
	b1 := stageCategorization(s, "b", "t3", "c3")

	summary := s.Apply(context.Background())

	assert.Equal(t, 2, summary.Applied, "partition A succeeds despite B's failure")
	assert.Equal(t, 1, summary.Failed)

	_, ok := s.Change(a1.ID)
	assert.False(t, ok)
	_, ok = s.Change(a2.ID)
	assert.False(t, ok)
	_, ok = s.Change(b1.ID)
	assert.True(t, ok, "B's change remains staged after the thrown batch")

	// One batch call per budget partition.
	assert.Len(t, updater.calls, 2)
}

func TestApplySelectionFiltersUnknownIDs(t *testing.T) {
	updater := &fakeUpdater{results: map[string]ynab.BatchUpdateResult{
		"b1": {TransactionIDs: []string{"t1"}},
	}}
	s := NewStore(updater, &logging.MockLogger{})
	change := stageCategorization(s, "b1", "t1", "c1")
	kept := stageCategorization(s, "b1", "t2", "c2")

	summary := s.Apply(context.Background(), change.ID, "no-such-id")

	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 0, summary.Failed)

	_, ok := s.Change(kept.ID)
	assert.True(t, ok, "unselected changes are untouched")
}

func TestApplyWithNothingStaged(t *testing.T) {
	updater := &fakeUpdater{}
	s := NewStore(updater, &logging.MockLogger{})

	summary := s.Apply(context.Background())

	assert.Zero(t, summary.Applied)
	assert.Zero(t, summary.Failed)
	assert.Empty(t, updater.calls, "no batch call without selected changes")
}
