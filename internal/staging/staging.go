// Package staging holds proposed transaction edits pending review and an
// explicit batch commit. Changes live only in memory for the session; a
// change leaves the store when it is applied or discarded, never because
// it failed.
package staging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/models"
	"github.com/doctor-kat/ynab-assist/internal/ynab"
)

// ChangeType classifies a staged edit.
type ChangeType string

const (
	TypeCategorization ChangeType = "categorization"
	TypeSplit          ChangeType = "split"
	TypeUpdate         ChangeType = "update"
)

// StagedChange is one proposed transaction edit. OriginalSnapshot carries
// only the fields the proposal touches, captured at stage time for review
// display.
type StagedChange struct {
	ID               string
	Type             ChangeType
	BudgetID         string
	TransactionID    string
	Description      string
	Timestamp        time.Time
	OriginalSnapshot models.SaveTransaction
	ProposedChanges  models.SaveTransaction
}

// BatchUpdater is the slice of the YNAB client the store needs.
type BatchUpdater interface {
	UpdateTransactions(ctx context.Context, budgetID string, req models.SaveMany) (ynab.BatchUpdateResult, error)
}

// Store accumulates staged changes and commits them as one batch call per
// budget. The store performs no semantic validation; callers validate
// before staging.
type Store struct {
	client BatchUpdater
	log    logging.Logger

	mu      sync.Mutex
	changes map[string]StagedChange
	order   []string // stage order, for stable listings
}

// NewStore builds an empty staging store.
func NewStore(client BatchUpdater, log logging.Logger) *Store {
	return &Store{
		client:  client,
		log:     log,
		changes: make(map[string]StagedChange),
	}
}

// Stage records a proposed edit and returns it with a generated id and
// timestamp.
func (s *Store) Stage(changeType ChangeType, budgetID, transactionID, description string, original, proposed models.SaveTransaction) StagedChange {
	change := StagedChange{
		ID:               uuid.NewString(),
		Type:             changeType,
		BudgetID:         budgetID,
		TransactionID:    transactionID,
		Description:      description,
		Timestamp:        time.Now(),
		OriginalSnapshot: original,
		ProposedChanges:  proposed,
	}

	s.mu.Lock()
	s.changes[change.ID] = change
	s.order = append(s.order, change.ID)
	s.mu.Unlock()

	s.log.Info("change staged",
		logging.F("change_id", change.ID),
		logging.F("type", changeType),
		logging.F("transaction_id", transactionID))
	return change
}

// Changes returns every staged change in stage order.
func (s *Store) Changes() []StagedChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(nil)
}

// Change returns one staged change by id.
func (s *Store) Change(id string) (StagedChange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.changes[id]
	return c, ok
}

// ChangesForTransaction returns the staged changes targeting one
// transaction.
func (s *Store) ChangesForTransaction(budgetID, transactionID string) []StagedChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []StagedChange
	for _, id := range s.order {
		c := s.changes[id]
		if c.BudgetID == budgetID && c.TransactionID == transactionID {
			out = append(out, c)
		}
	}
	return out
}

// Discard removes one staged change. It reports whether the id was live.
func (s *Store) Discard(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.changes[id]; !ok {
		return false
	}
	s.removeLocked(id)
	return true
}

// DiscardAll removes every staged change and returns how many were
// discarded.
func (s *Store) DiscardAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.changes)
	s.changes = make(map[string]StagedChange)
	s.order = nil
	return n
}

func (s *Store) removeLocked(id string) {
	delete(s.changes, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// selectLocked returns live changes in stage order; a nil filter selects
// everything, otherwise ids absent from the store are skipped.
func (s *Store) selectLocked(ids []string) []StagedChange {
	if ids == nil {
		out := make([]StagedChange, 0, len(s.order))
		for _, id := range s.order {
			out = append(out, s.changes[id])
		}
		return out
	}
	var out []StagedChange
	for _, id := range ids {
		if c, ok := s.changes[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
