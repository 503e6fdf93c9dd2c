package staging

import (
	"context"

	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/models"
)

// ChangeStatus is the outcome of one change in an Apply run.
type ChangeStatus string

const (
	StatusApplied ChangeStatus = "applied"
	StatusFailed  ChangeStatus = "failed"
)

// ChangeResult pairs a staged change with its Apply outcome.
type ChangeResult struct {
	Change StagedChange
	Status ChangeStatus
	Error  string
}

// ApplySummary reports the outcome of an Apply run.
type ApplySummary struct {
	Applied int
	Failed  int
	Results []ChangeResult
}

// Apply commits staged changes. With no ids every staged change is
// selected; otherwise unknown ids are ignored. Selected changes are
// partitioned by budget and each partition goes to the server as one
// batch update, the closest substitute for a transaction the API offers.
//
// A change is applied iff the server reports its transaction id as
// updated; applied changes leave the store. Everything else, including a
// whole partition whose call failed, stays staged and is reported failed.
// Apply never returns an error for business failures, only a summary.
func (s *Store) Apply(ctx context.Context, ids ...string) ApplySummary {
	s.mu.Lock()
	var selected []StagedChange
	if len(ids) == 0 {
		selected = s.selectLocked(nil)
	} else {
		selected = s.selectLocked(ids)
	}
	s.mu.Unlock()

	summary := ApplySummary{}
	if len(selected) == 0 {
		return summary
	}

	// Partition by budget, preserving stage order within each partition.
	partitionOrder := make([]string, 0, 2)
	partitions := make(map[string][]StagedChange)
	for _, c := range selected {
		if _, ok := partitions[c.BudgetID]; !ok {
			partitionOrder = append(partitionOrder, c.BudgetID)
		}
		partitions[c.BudgetID] = append(partitions[c.BudgetID], c)
	}

	for _, budgetID := range partitionOrder {
		changes := partitions[budgetID]
		summary.merge(s.applyPartition(ctx, budgetID, changes))
	}
	return summary
}

// applyPartition commits one budget's changes with a single batch call.
// An error from the call fails every change in the partition; no partial
// state is inferred from an exception.
func (s *Store) applyPartition(ctx context.Context, budgetID string, changes []StagedChange) ApplySummary {
	transactions := make([]models.SaveTransaction, 0, len(changes))
	for _, c := range changes {
		tx := c.ProposedChanges
		tx.ID = c.TransactionID
		transactions = append(transactions, tx)
	}

	result, err := s.client.UpdateTransactions(ctx, budgetID, models.SaveMany{Transactions: transactions})
	if err != nil {
		s.log.WithError(err).Error("batch update failed, partition retained",
			logging.F("budget_id", budgetID), logging.F("changes", len(changes)))
		summary := ApplySummary{}
		for _, c := range changes {
			summary.Failed++
			summary.Results = append(summary.Results, ChangeResult{
				Change: c,
				Status: StatusFailed,
				Error:  err.Error(),
			})
		}
		return summary
	}

	updated := make(map[string]bool, len(result.TransactionIDs))
	for _, id := range result.TransactionIDs {
		updated[id] = true
	}

	summary := ApplySummary{}
	s.mu.Lock()
	for _, c := range changes {
		if updated[c.TransactionID] {
			s.removeLocked(c.ID)
			summary.Applied++
			summary.Results = append(summary.Results, ChangeResult{Change: c, Status: StatusApplied})
			continue
		}
		summary.Failed++
		summary.Results = append(summary.Results, ChangeResult{
			Change: c,
			Status: StatusFailed,
			Error:  "server did not report the transaction as updated",
		})
	}
	s.mu.Unlock()

	s.log.Info("partition applied",
		logging.F("budget_id", budgetID),
		logging.F("applied", summary.Applied),
		logging.F("failed", summary.Failed))
	return summary
}

func (a *ApplySummary) merge(other ApplySummary) {
	a.Applied += other.Applied
	a.Failed += other.Failed
	a.Results = append(a.Results, other.Results...)
}
