// Package scenario resolves free-text scenario identifiers to one of the
// fixed scenario configurations.
package scenario

import (
	"fmt"
	"strings"

	"automation-advisor/internal/models"
)

// Resolution is the outcome of resolving a scenario identifier. Invalid
// input is reported here, never as an error return.
type Resolution struct {
	IsValid   bool                `json:"isValid"`
	Corrected models.ScenarioType `json:"corrected"`
	Input     string              `json:"input"`
	Error     string              `json:"error,omitempty"`
}

// WasCorrected reports whether the resolved type differs from the raw input.
func (r Resolution) WasCorrected() bool {
	return string(r.Corrected) != r.Input
}

var aliases = map[string]models.ScenarioType{
	"conservative": models.ScenarioConservative,
	"safe":         models.ScenarioConservative,
	"low-risk":     models.ScenarioConservative,
	"low risk":     models.ScenarioConservative,
	"careful":      models.ScenarioConservative,
	"cautious":     models.ScenarioConservative,

	"balanced": models.ScenarioBalanced,
	"moderate": models.ScenarioBalanced,
	"standard": models.ScenarioBalanced,
	"default":  models.ScenarioBalanced,
	"medium":   models.ScenarioBalanced,

	"aggressive": models.ScenarioAggressive,
	"fast":       models.ScenarioAggressive,
	"bold":       models.ScenarioAggressive,
	"high-risk":  models.ScenarioAggressive,
	"high risk":  models.ScenarioAggressive,
	"rapid":      models.ScenarioAggressive,
	"innovative": models.ScenarioAggressive,
}

// Resolve maps input to a scenario type. Unknown input falls back to
// balanced with IsValid false.
func Resolve(input string) Resolution {
	if t := models.ScenarioType(input); t.Valid() {
		return Resolution{IsValid: true, Corrected: t, Input: input}
	}

	key := strings.ToLower(strings.TrimSpace(input))
	if t, ok := aliases[key]; ok {
		return Resolution{IsValid: true, Corrected: t, Input: input}
	}

	return Resolution{
		IsValid:   false,
		Corrected: models.ScenarioBalanced,
		Input:     input,
		Error:     fmt.Sprintf("invalid scenario type %q, using balanced", input),
	}
}

var configs = map[models.ScenarioType]models.ScenarioConfig{
	models.ScenarioConservative: {
		Type:             models.ScenarioConservative,
		Label:            "Conservative",
		RiskTolerance:    "Low",
		Pace:             "Gradual",
		TechnologyFocus:  "Proven, mature technologies with strong vendor support",
		DurationGuidance: "Plan for 18-24 months with extended pilots and validation gates",
		TotalMonths:      24,
		Guidance: "Prioritize stability and risk mitigation. Start with low-risk, high-visibility pilots, " +
			"require human review at every decision point, and expand only after measurable success.",
	},
	models.ScenarioBalanced: {
		Type:             models.ScenarioBalanced,
		Label:            "Balanced",
		RiskTolerance:    "Moderate",
		Pace:             "Steady",
		TechnologyFocus:  "Established AI platforms combined with targeted emerging capabilities",
		DurationGuidance: "Plan for 12-18 months with overlapping phases",
		TotalMonths:      18,
		Guidance: "Balance quick wins with foundational investment. Run pilots in parallel with data and " +
			"integration work, and keep human oversight on customer-facing decisions.",
	},
	models.ScenarioAggressive: {
		Type:             models.ScenarioAggressive,
		Label:            "Aggressive",
		RiskTolerance:    "High",
		Pace:             "Accelerated",
		TechnologyFocus:  "Cutting-edge AI including autonomous agents and generative models",
		DurationGuidance: "Plan for 6-12 months with parallel workstreams",
		TotalMonths:      12,
		Guidance: "Move fast to capture competitive advantage. Run workstreams in parallel, automate " +
			"end-to-end where possible, and accept higher change-management risk for faster returns.",
	},
}

// Config returns the configuration of t. Unknown types get balanced.
func Config(t models.ScenarioType) models.ScenarioConfig {
	if c, ok := configs[t]; ok {
		return c
	}
	return configs[models.ScenarioBalanced]
}
