package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/doctor-kat/ynab-assist/internal/logging"
)

// TTLFetchFunc fetches the single cached value for a budget.
type TTLFetchFunc[T any] func(ctx context.Context, budgetID string) (T, error)

type ttlEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTLStore caches one value per budget with an absolute expiry. It has no
// delta protocol: an expired read refetches the whole value. Once primed
// it never hard-fails; a failed refetch serves the stale value.
type TTLStore[T any] struct {
	name  string
	ttl   time.Duration
	fetch TTLFetchFunc[T]
	log   logging.Logger

	mu      sync.Mutex
	entries map[string]*ttlEntry[T]
	flight  singleflight.Group

	// now is swappable in tests.
	now func() time.Time
}

// NewTTLStore builds a TTLStore with the given expiry window.
func NewTTLStore[T any](name string, ttl time.Duration, fetch TTLFetchFunc[T], log logging.Logger) *TTLStore[T] {
	return &TTLStore[T]{
		name:    name,
		ttl:     ttl,
		fetch:   fetch,
		log:     log,
		entries: make(map[string]*ttlEntry[T]),
		now:     time.Now,
	}
}

// Get returns the cached value for a budget, refetching after expiry.
func (s *TTLStore[T]) Get(ctx context.Context, budgetID string) (T, error) {
	s.mu.Lock()
	if e, ok := s.entries[budgetID]; ok && s.now().Before(e.expiresAt) {
		value := e.value
		s.mu.Unlock()
		return value, nil
	}
	s.mu.Unlock()

	v, err, _ := s.flight.Do(budgetID, func() (any, error) {
		return s.refetch(ctx, budgetID)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (s *TTLStore[T]) refetch(ctx context.Context, budgetID string) (T, error) {
	value, err := s.fetch(ctx, budgetID)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[budgetID]; ok {
			s.log.WithError(err).Warn("fetch failed, serving stale value",
				logging.F("store", s.name), logging.F("budget_id", budgetID))
			return e.value, nil
		}
		var zero T
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[budgetID] = &ttlEntry[T]{value: value, expiresAt: s.now().Add(s.ttl)}
	return value, nil
}

// Invalidate drops the cached value for a budget.
func (s *TTLStore[T]) Invalidate(budgetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, budgetID)
}

// Refresh forces a refetch for a budget.
func (s *TTLStore[T]) Refresh(ctx context.Context, budgetID string) (T, error) {
	s.Invalidate(budgetID)
	return s.Get(ctx, budgetID)
}

// Reset clears every budget's entry.
func (s *TTLStore[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*ttlEntry[T])
}
