// Package cache implements the reference-data caches layered over the
// YNAB API: a delta-synchronized store for accounts, payees and category
// groups, and a TTL store for budget settings.
//
// The delta protocol: a fetch without server knowledge returns the full
// collection plus a knowledge value; a fetch with the last-seen knowledge
// returns only records changed or deleted since, plus a new knowledge
// value. Knowledge is opaque to this package and never computed locally.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/models"
)

// FetchFunc fetches one collection for a budget. A nil lastKnowledge
// requests a full fetch; otherwise only changes since that knowledge are
// returned, deletions as tombstones.
type FetchFunc[T models.Entity] func(ctx context.Context, budgetID string, lastKnowledge *int64) ([]T, int64, error)

// MergeFunc applies a fetched delta to the current map in place.
type MergeFunc[T models.Entity] func(current map[string]T, delta []T)

type deltaEntry[T any] struct {
	data            map[string]T
	serverKnowledge int64
	lastFetched     time.Time
}

// Store is a per-budget delta-synchronized cache for one collection.
// It is safe for concurrent use; concurrent Gets for the same budget
// share a single in-flight fetch.
type Store[T models.Entity] struct {
	name  string
	fetch FetchFunc[T]
	merge MergeFunc[T]
	log   logging.Logger

	mu      sync.Mutex
	entries map[string]*deltaEntry[T]
	flight  singleflight.Group
}

// NewStore builds a Store with the default upsert/tombstone merge.
func NewStore[T models.Entity](name string, fetch FetchFunc[T], log logging.Logger) *Store[T] {
	return NewStoreWithMerge(name, fetch, UpsertMerge[T], log)
}

// NewStoreWithMerge builds a Store with a custom merge, used when delta
// semantics go beyond flat upsert/tombstone (nested categories).
func NewStoreWithMerge[T models.Entity](name string, fetch FetchFunc[T], merge MergeFunc[T], log logging.Logger) *Store[T] {
	return &Store[T]{
		name:    name,
		fetch:   fetch,
		merge:   merge,
		log:     log,
		entries: make(map[string]*deltaEntry[T]),
	}
}

// Get returns the collection for a budget, fetching the full collection
// on first use and a delta afterwards. If a fetch fails and a prior
// snapshot exists the stale snapshot is returned; with no prior snapshot
// the error propagates.
func (s *Store[T]) Get(ctx context.Context, budgetID string) ([]T, error) {
	v, err, _ := s.flight.Do(budgetID, func() (any, error) {
		return s.fetchAndMerge(ctx, budgetID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

func (s *Store[T]) fetchAndMerge(ctx context.Context, budgetID string) ([]T, error) {
	s.mu.Lock()
	var lastKnowledge *int64
	var prev *deltaEntry[T]
	if e, ok := s.entries[budgetID]; ok {
		k := e.serverKnowledge
		lastKnowledge = &k
		prev = e
	}
	s.mu.Unlock()

	delta, knowledge, err := s.fetch(ctx, budgetID, lastKnowledge)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[budgetID]; ok {
			s.log.WithError(err).Warn("fetch failed, serving stale cache",
				logging.F("store", s.name), logging.F("budget_id", budgetID))
			return snapshot(e.data), nil
		}
		return nil, err
	}

	s.mu.Lock()
	e, ok := s.entries[budgetID]
	if lastKnowledge != nil && (!ok || e != prev) {
		// The entry this delta was fetched against was invalidated while
		// the fetch was in flight. A delta only carries changed records,
		// so applying it anywhere else would drop everything it does not
		// mention. Start over with a full fetch.
		s.mu.Unlock()
		return s.fetchAndMerge(ctx, budgetID)
	}
	if !ok {
		e = &deltaEntry[T]{data: make(map[string]T)}
		s.entries[budgetID] = e
	}
	s.merge(e.data, delta)
	e.serverKnowledge = knowledge
	e.lastFetched = time.Now()
	out := snapshot(e.data)
	s.mu.Unlock()

	s.log.Debug("cache merged",
		logging.F("store", s.name),
		logging.F("budget_id", budgetID),
		logging.F("delta_size", len(delta)),
		logging.F("server_knowledge", knowledge))
	return out, nil
}

// Invalidate drops the cached entry for a budget; the next Get performs a
// full fetch.
func (s *Store[T]) Invalidate(budgetID string) {
	s.mu.Lock()
	delete(s.entries, budgetID)
	s.mu.Unlock()
	// Later callers must not join an in-flight fetch that predates the
	// invalidation.
	s.flight.Forget(budgetID)
}

// Refresh forces a full, non-delta fetch for a budget.
func (s *Store[T]) Refresh(ctx context.Context, budgetID string) ([]T, error) {
	s.Invalidate(budgetID)
	return s.Get(ctx, budgetID)
}

// Reset clears every budget's entry.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*deltaEntry[T])
}

// ActiveBudgetSource reports the budget that budget-scoped operations
// address implicitly, if any.
type ActiveBudgetSource interface {
	ActiveBudgetID() (string, bool)
}

// Warm eagerly primes the cache for the active budget at process start.
// Failure is logged, never fatal.
func (s *Store[T]) Warm(ctx context.Context, src ActiveBudgetSource) {
	budgetID, ok := src.ActiveBudgetID()
	if !ok {
		return
	}
	if _, err := s.Get(ctx, budgetID); err != nil {
		s.log.WithError(err).Warn("cache warm-up failed",
			logging.F("store", s.name), logging.F("budget_id", budgetID))
	}
}

// ServerKnowledge exposes the stored sync token for a budget, mainly for
// tests and diagnostics.
func (s *Store[T]) ServerKnowledge(budgetID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[budgetID]
	if !ok {
		return 0, false
	}
	return e.serverKnowledge, true
}

func snapshot[T models.Entity](data map[string]T) []T {
	out := make([]T, 0, len(data))
	for _, item := range data {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EntityID() < out[j].EntityID()
	})
	return out
}
