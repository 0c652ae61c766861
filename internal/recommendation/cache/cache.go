// Package cache stores generated recommendations per entity, kind,
// scenario and provider, and decides whether a stored result may be reused.
package cache

import (
	"context"
	"encoding/json"
	"time"

	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/common/metrics"
	"automation-advisor/internal/models"
)

// Status is the outcome of a lookup.
type Status string

const (
	StatusHit      Status = "hit"
	StatusMiss     Status = "miss"
	StatusMismatch Status = "mismatch"
)

// Lookup is the result of Controller.Lookup. Entry is set for hits.
// CachedScenario and CachedProvider describe the stored entry on mismatch.
type Lookup struct {
	Status         Status
	Entry          *models.CacheEntry
	CachedScenario models.ScenarioType
	CachedProvider string
}

// Store persists entries. Get reads one exact key; GetLatest reads the
// single latest document of an entity and kind. Both return nil, nil when
// nothing is stored. Put must write both representations.
type Store interface {
	Get(ctx context.Context, key models.CacheKey) (*models.CacheEntry, error)
	GetLatest(ctx context.Context, entityID string, kind models.CacheKind) (*models.CacheEntry, error)
	Put(ctx context.Context, entry models.CacheEntry) error
}

// Controller applies reuse rules on top of a Store.
type Controller struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

func NewController(store Store, log logger.Logger) *Controller {
	return &Controller{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Lookup decides whether a stored result answers key. force always misses.
// Read failures degrade to a miss.
func (c *Controller) Lookup(ctx context.Context, key models.CacheKey, force bool) Lookup {
	res := c.lookup(ctx, key, force)
	metrics.CacheLookups.WithLabelValues(string(key.Kind), string(res.Status)).Inc()
	return res
}

func (c *Controller) lookup(ctx context.Context, key models.CacheKey, force bool) Lookup {
	if force {
		return Lookup{Status: StatusMiss}
	}

	if key.Exact() {
		entry, err := c.store.Get(ctx, key)
		if err != nil {
			c.readFailed(key, err)
			return Lookup{Status: StatusMiss}
		}
		if entry != nil {
			entry.Cached = true
			return Lookup{Status: StatusHit, Entry: entry}
		}
	}

	latest, err := c.store.GetLatest(ctx, key.EntityID, key.Kind)
	if err != nil {
		c.readFailed(key, err)
		return Lookup{Status: StatusMiss}
	}
	if latest == nil {
		return Lookup{Status: StatusMiss}
	}

	if Matches(latest, key) {
		latest.Cached = true
		return Lookup{Status: StatusHit, Entry: latest}
	}
	return Lookup{
		Status:         StatusMismatch,
		CachedScenario: latest.Scenario,
		CachedProvider: latest.Provider,
	}
}

// Matches reports whether entry satisfies every dimension key specifies.
func Matches(entry *models.CacheEntry, key models.CacheKey) bool {
	if key.Scenario != "" && entry.Scenario != key.Scenario {
		return false
	}
	if key.Provider != "" && entry.Provider != key.Provider {
		return false
	}
	return true
}

// Store saves payload under key and as the entity's latest document.
func (c *Controller) Store(ctx context.Context, key models.CacheKey, payload json.RawMessage, generatedAt time.Time) (models.CacheEntry, error) {
	if generatedAt.IsZero() {
		generatedAt = c.now()
	}
	entry := models.CacheEntry{
		Key:         key,
		Payload:     payload,
		Scenario:    key.Scenario,
		Provider:    key.Provider,
		GeneratedAt: generatedAt,
	}
	if err := c.store.Put(ctx, entry); err != nil {
		c.logger.Error("Failed to store recommendation", map[string]interface{}{
			"entityId": key.EntityID,
			"kind":     string(key.Kind),
			"error":    err.Error(),
		})
		return entry, apperrors.NewCacheStoreFailedError("put", err)
	}
	return entry, nil
}

// Latest returns the newest stored document for an entity, optionally
// restricted to a scenario. It returns nil when nothing matches.
func (c *Controller) Latest(ctx context.Context, entityID string, kind models.CacheKind, scenarioType models.ScenarioType) (*models.CacheEntry, error) {
	latest, err := c.store.GetLatest(ctx, entityID, kind)
	if err != nil || latest == nil {
		return nil, err
	}
	if scenarioType == "" || latest.Scenario == scenarioType {
		latest.Cached = true
		return latest, nil
	}

	// The scenario may have been generated earlier under any provider.
	for _, provider := range models.Providers {
		entry, err := c.store.Get(ctx, models.CacheKey{EntityID: entityID, Kind: kind, Scenario: scenarioType, Provider: provider})
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entry.Cached = true
			return entry, nil
		}
	}
	return nil, nil
}

func (c *Controller) readFailed(key models.CacheKey, err error) {
	c.logger.Warn("Cache read failed, treating as miss", map[string]interface{}{
		"entityId": key.EntityID,
		"kind":     string(key.Kind),
		"scenario": string(key.Scenario),
		"provider": key.Provider,
		"error":    err.Error(),
	})
}
