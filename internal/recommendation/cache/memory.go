package cache

import (
	"context"
	"sync"
	"time"

	"automation-advisor/internal/models"
)

// MemoryStore keeps entries in process memory. Used by the CLI and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	keyed  map[models.CacheKey]models.CacheEntry
	latest map[latestKey]models.CacheEntry
	ttl    time.Duration
	now    func() time.Time
}

type latestKey struct {
	entityID string
	kind     models.CacheKind
}

// NewMemoryStore creates a store. A zero ttl keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		keyed:  make(map[models.CacheKey]models.CacheEntry),
		latest: make(map[latestKey]models.CacheEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key models.CacheKey) (*models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.keyed[key]
	if !ok || s.expired(e) {
		return nil, nil
	}
	return &e, nil
}

func (s *MemoryStore) GetLatest(_ context.Context, entityID string, kind models.CacheKind) (*models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.latest[latestKey{entityID, kind}]
	if !ok || s.expired(e) {
		return nil, nil
	}
	return &e, nil
}

func (s *MemoryStore) Put(_ context.Context, entry models.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyed[entry.Key] = entry
	s.latest[latestKey{entry.Key.EntityID, entry.Key.Kind}] = entry
	return nil
}

func (s *MemoryStore) expired(e models.CacheEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.GeneratedAt) > s.ttl
}
