package idempotency

import (
	"context"
	"slices"
	"sync"
	"time"

	"onboarding/pkg/platform/sentinel"
)

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

// InMemoryStore is the single-instance store used when Redis is not configured.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return nil, nil
	}
	rec := e.record
	rec.Body = slices.Clone(e.record.Body)
	return &rec, nil
}

func (s *InMemoryStore) Reserve(_ context.Context, key, requestHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(key); ok {
		return sentinel.ErrConflict
	}
	s.entries[key] = memoryEntry{
		record:    Record{RequestHash: requestHash, Status: StatusPending},
		expiresAt: s.clock().Add(ttl),
	}
	return nil
}

func (s *InMemoryStore) Complete(_ context.Context, key string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Status = StatusCompleted
	rec.Body = slices.Clone(rec.Body)
	s.entries[key] = memoryEntry{record: rec, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// live returns the entry for key, evicting it if expired. Caller holds mu.
func (s *InMemoryStore) live(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.clock().Before(e.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}
