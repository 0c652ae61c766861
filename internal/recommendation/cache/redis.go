package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"automation-advisor/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "advisor:cache"

// RedisStore keeps entries as JSON strings with an optional TTL.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// KeyFor is the key of one (scenario, provider) entry.
func KeyFor(key models.CacheKey) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", redisKeyPrefix, key.Kind, key.EntityID, segment(string(key.Scenario)), segment(key.Provider))
}

// LatestKeyFor is the key of the entity's single latest document.
func LatestKeyFor(entityID string, kind models.CacheKind) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, kind, entityID)
}

func segment(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, key models.CacheKey) (*models.CacheEntry, error) {
	return s.read(ctx, KeyFor(key))
}

func (s *RedisStore) GetLatest(ctx context.Context, entityID string, kind models.CacheKind) (*models.CacheEntry, error) {
	return s.read(ctx, LatestKeyFor(entityID, kind))
}

func (s *RedisStore) read(ctx context.Context, key string) (*models.CacheEntry, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return &entry, nil
}

// Put writes the keyed entry and the latest document in one transaction.
func (s *RedisStore) Put(ctx context.Context, entry models.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, KeyFor(entry.Key), raw, s.ttl)
		pipe.Set(ctx, LatestKeyFor(entry.Key.EntityID, entry.Key.Kind), raw, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}
