package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"automation-advisor/internal/common/database"
	"automation-advisor/internal/models"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS recommendation_cache (
    entity_id    TEXT        NOT NULL,
    kind         TEXT        NOT NULL,
    scenario     TEXT        NOT NULL,
    provider     TEXT        NOT NULL,
    payload      JSONB       NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (entity_id, kind, scenario, provider)
);
CREATE TABLE IF NOT EXISTS recommendation_cache_legacy (
    entity_id    TEXT        NOT NULL,
    kind         TEXT        NOT NULL,
    scenario     TEXT        NOT NULL,
    provider     TEXT        NOT NULL,
    payload      JSONB       NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (entity_id, kind)
);`

const (
	selectKeyed = `SELECT payload, generated_at FROM recommendation_cache
WHERE entity_id = $1 AND kind = $2 AND scenario = $3 AND provider = $4`

	selectLatest = `SELECT scenario, provider, payload, generated_at FROM recommendation_cache_legacy
WHERE entity_id = $1 AND kind = $2`

	upsertKeyed = `INSERT INTO recommendation_cache (entity_id, kind, scenario, provider, payload, generated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (entity_id, kind, scenario, provider)
DO UPDATE SET payload = EXCLUDED.payload, generated_at = EXCLUDED.generated_at`

	upsertLatest = `INSERT INTO recommendation_cache_legacy (entity_id, kind, scenario, provider, payload, generated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (entity_id, kind)
DO UPDATE SET scenario = EXCLUDED.scenario, provider = EXCLUDED.provider,
payload = EXCLUDED.payload, generated_at = EXCLUDED.generated_at`
)

// PostgresStore keeps keyed entries and the legacy latest documents in two
// tables. Entries older than ttl read as absent.
type PostgresStore struct {
	db  *database.PostgresClient
	ttl time.Duration
	now func() time.Time
}

func NewPostgresStore(db *database.PostgresClient, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, now: time.Now}
}

// EnsureSchema creates both tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create cache tables: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key models.CacheKey) (*models.CacheEntry, error) {
	var (
		payload     []byte
		generatedAt time.Time
	)
	err := s.db.QueryRow(ctx, selectKeyed, key.EntityID, string(key.Kind), string(key.Scenario), key.Provider).
		Scan(&payload, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select cache entry: %w", err)
	}
	if s.expired(generatedAt) {
		return nil, nil
	}
	return &models.CacheEntry{
		Key:         key,
		Payload:     json.RawMessage(payload),
		Scenario:    key.Scenario,
		Provider:    key.Provider,
		GeneratedAt: generatedAt,
	}, nil
}

func (s *PostgresStore) GetLatest(ctx context.Context, entityID string, kind models.CacheKind) (*models.CacheEntry, error) {
	var (
		scenario, provider string
		payload            []byte
		generatedAt        time.Time
	)
	err := s.db.QueryRow(ctx, selectLatest, entityID, string(kind)).
		Scan(&scenario, &provider, &payload, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select latest cache entry: %w", err)
	}
	if s.expired(generatedAt) {
		return nil, nil
	}
	return &models.CacheEntry{
		Key:         models.CacheKey{EntityID: entityID, Kind: kind, Scenario: models.ScenarioType(scenario), Provider: provider},
		Payload:     json.RawMessage(payload),
		Scenario:    models.ScenarioType(scenario),
		Provider:    provider,
		GeneratedAt: generatedAt,
	}, nil
}

func (s *PostgresStore) Put(ctx context.Context, entry models.CacheEntry) error {
	k := entry.Key
	args := []interface{}{k.EntityID, string(k.Kind), string(k.Scenario), k.Provider, []byte(entry.Payload), entry.GeneratedAt}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertKeyed, args...); err != nil {
			return fmt.Errorf("upsert cache entry: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsertLatest, args...); err != nil {
			return fmt.Errorf("upsert latest cache entry: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) expired(generatedAt time.Time) bool {
	return s.ttl > 0 && s.now().Sub(generatedAt) > s.ttl
}
