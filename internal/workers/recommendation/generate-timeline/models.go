// internal/workers/recommendation/generate-timeline/models.go
package generatetimeline

import (
	"time"

	"automation-advisor/internal/models"
)

type Input struct {
	Profile         *models.Profile `json:"profile"`
	ScenarioType    string          `json:"scenarioType,omitempty"`
	Provider        string          `json:"provider,omitempty"`
	ForceRegenerate bool            `json:"forceRegenerate,omitempty"`
}

// Output is merged into the process scope. ScenarioMismatch lets the
// process route to a "regenerate or keep" decision.
type Output struct {
	Timeline            *models.Timeline    `json:"timeline,omitempty"`
	TimelineCached      bool                `json:"timelineCached"`
	TimelineGeneratedAt *time.Time          `json:"timelineGeneratedAt,omitempty"`
	TimelineProvider    string              `json:"timelineProvider,omitempty"`
	ScenarioType        models.ScenarioType `json:"scenarioType"`
	ScenarioCorrected   bool                `json:"scenarioCorrected"`
	ScenarioError       string              `json:"scenarioError,omitempty"`
	ScenarioMismatch    bool                `json:"scenarioMismatch"`
	CachedScenario      models.ScenarioType `json:"cachedScenario,omitempty"`
	SetupRequired       bool                `json:"setupRequired"`
	SetupMessage        string              `json:"setupMessage,omitempty"`
}
