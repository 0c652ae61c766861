package models

import (
	"encoding/json"
	"time"
)

// CacheKind is the kind of generated document held in the cache.
type CacheKind string

const (
	KindWorkflows CacheKind = "workflows"
	KindTimeline  CacheKind = "timeline"
)

// CacheKey addresses a generated document. Scenario and Provider may be
// empty when the caller expressed no preference.
type CacheKey struct {
	EntityID string       `json:"entityId"`
	Kind     CacheKind    `json:"kind"`
	Scenario ScenarioType `json:"scenario,omitempty"`
	Provider string       `json:"provider,omitempty"`
}

// Exact reports whether the key names a single stored entry. Workflows
// are not scenario specific, so a provider alone is enough for them.
func (k CacheKey) Exact() bool {
	if k.Provider == "" {
		return false
	}
	return k.Kind == KindWorkflows || k.Scenario != ""
}

// CacheEntry is a stored generation result.
type CacheEntry struct {
	Key         CacheKey        `json:"key"`
	Payload     json.RawMessage `json:"payload"`
	Scenario    ScenarioType    `json:"scenario"`
	Provider    string          `json:"provider"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Cached      bool            `json:"cached"`
}
