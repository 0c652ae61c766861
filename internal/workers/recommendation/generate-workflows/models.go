// internal/workers/recommendation/generate-workflows/models.go
package generateworkflows

import (
	"time"

	"automation-advisor/internal/models"
)

type Input struct {
	Profile           *models.Profile `json:"profile"`
	PreferredProvider string          `json:"preferredProvider,omitempty"`
	ForceRegenerate   bool            `json:"forceRegenerate,omitempty"`
}

// Output is merged into the process scope, so field names are prefixed
// where they would collide with the timeline worker.
type Output struct {
	Workflows            []models.PersonalizedWorkflow `json:"workflows"`
	WorkflowAnalysis     models.WorkflowAnalysis       `json:"workflowAnalysis"`
	WorkflowsCached      bool                          `json:"workflowsCached"`
	WorkflowProvider     string                        `json:"workflowProvider,omitempty"`
	WorkflowsGeneratedAt *time.Time                    `json:"workflowsGeneratedAt,omitempty"`
	SetupRequired        bool                          `json:"setupRequired"`
	SetupMessage         string                        `json:"setupMessage,omitempty"`
}
