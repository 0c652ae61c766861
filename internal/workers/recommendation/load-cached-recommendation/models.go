// internal/workers/recommendation/load-cached-recommendation/models.go
package loadcachedrecommendation

import (
	"time"

	"automation-advisor/internal/models"
)

// Input names the entity directly or through its profile.
type Input struct {
	EntityID     string           `json:"entityId,omitempty"`
	Profile      *models.Profile  `json:"profile,omitempty"`
	Kind         models.CacheKind `json:"kind"`
	ScenarioType string           `json:"scenarioType,omitempty"`
}

type Output struct {
	CacheFound       bool                          `json:"cacheFound"`
	CacheKind        models.CacheKind              `json:"cacheKind"`
	Workflows        []models.PersonalizedWorkflow `json:"workflows,omitempty"`
	WorkflowAnalysis *models.WorkflowAnalysis      `json:"workflowAnalysis,omitempty"`
	Timeline         *models.Timeline              `json:"timeline,omitempty"`
	CachedScenario   models.ScenarioType           `json:"cachedScenario,omitempty"`
	CachedProvider   string                        `json:"cachedProvider,omitempty"`
	CacheGeneratedAt *time.Time                    `json:"cacheGeneratedAt,omitempty"`
}
