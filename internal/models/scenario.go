package models

// ScenarioType selects the risk and pacing guidance of a timeline.
type ScenarioType string

const (
	ScenarioConservative ScenarioType = "conservative"
	ScenarioBalanced     ScenarioType = "balanced"
	ScenarioAggressive   ScenarioType = "aggressive"
)

// ScenarioTypes lists the known scenarios in display order.
var ScenarioTypes = []ScenarioType{ScenarioConservative, ScenarioBalanced, ScenarioAggressive}

func (s ScenarioType) String() string { return string(s) }

// Valid reports whether s is one of the known scenarios.
func (s ScenarioType) Valid() bool {
	switch s {
	case ScenarioConservative, ScenarioBalanced, ScenarioAggressive:
		return true
	}
	return false
}

// ScenarioConfig is the fixed guidance attached to a scenario.
type ScenarioConfig struct {
	Type             ScenarioType `json:"type"`
	Label            string       `json:"label"`
	RiskTolerance    string       `json:"riskTolerance"`
	Pace             string       `json:"pace"`
	TechnologyFocus  string       `json:"technologyFocus"`
	DurationGuidance string       `json:"durationGuidance"`
	TotalMonths      int          `json:"totalMonths"`
	Guidance         string       `json:"guidance"`
}
