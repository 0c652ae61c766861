package pipeline

import (
	"time"

	"automation-advisor/internal/models"
)

type WorkflowsRequest struct {
	Profile           *models.Profile `json:"profile"`
	PreferredProvider string          `json:"preferredProvider,omitempty"`
	ForceRegenerate   bool            `json:"forceRegenerate,omitempty"`
}

// WorkflowsResponse carries either workflows or, when no provider can be
// used and nothing is cached, SetupRequired with a message.
type WorkflowsResponse struct {
	Workflows     []models.PersonalizedWorkflow `json:"workflows"`
	Analysis      models.WorkflowAnalysis       `json:"analysis"`
	Cached        bool                          `json:"cached"`
	Provider      string                        `json:"provider,omitempty"`
	GeneratedAt   time.Time                     `json:"generatedAt"`
	SetupRequired bool                          `json:"setupRequired,omitempty"`
	SetupMessage  string                        `json:"setupMessage,omitempty"`
}

type TimelineRequest struct {
	Profile         *models.Profile `json:"profile"`
	ScenarioType    string          `json:"scenarioType,omitempty"`
	Provider        string          `json:"provider,omitempty"`
	ForceRegenerate bool            `json:"forceRegenerate,omitempty"`
}

// TimelineResponse carries a timeline, a scenario mismatch signal, or
// SetupRequired. On mismatch Timeline is nil and CachedScenario names the
// scenario that is stored.
type TimelineResponse struct {
	Timeline          *models.Timeline    `json:"timeline,omitempty"`
	Cached            bool                `json:"cached"`
	GeneratedAt       time.Time           `json:"generatedAt"`
	ScenarioType      models.ScenarioType `json:"scenarioType"`
	ScenarioCorrected bool                `json:"scenarioCorrected,omitempty"`
	ScenarioError     string              `json:"scenarioError,omitempty"`
	ScenarioMismatch  bool                `json:"scenarioMismatch,omitempty"`
	CachedScenario    models.ScenarioType `json:"cachedScenario,omitempty"`
	Provider          string              `json:"provider,omitempty"`
	SetupRequired     bool                `json:"setupRequired,omitempty"`
	SetupMessage      string              `json:"setupMessage,omitempty"`
}

type CachedResponse struct {
	Found        bool                `json:"found"`
	Kind         models.CacheKind    `json:"kind"`
	Workflows    *models.WorkflowSet `json:"workflows,omitempty"`
	Timeline     *models.Timeline    `json:"timeline,omitempty"`
	Cached       bool                `json:"cached"`
	ScenarioType models.ScenarioType `json:"scenarioType,omitempty"`
	Provider     string              `json:"provider,omitempty"`
	GeneratedAt  time.Time           `json:"generatedAt"`
}
