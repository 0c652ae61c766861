package models

import "time"

type TimelinePhase struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	StartMonth      int      `json:"startMonth"`
	EndMonth        int      `json:"endMonth"`
	Milestones      []string `json:"milestones"`
	KeyActivities   []string `json:"keyActivities"`
	Risks           []string `json:"risks"`
	SuccessCriteria []string `json:"successCriteria"`
}

// Timeline is a phased transformation plan for one scenario.
type Timeline struct {
	ScenarioType        ScenarioType    `json:"scenarioType"`
	TotalDurationMonths int             `json:"totalDurationMonths"`
	Summary             string          `json:"summary"`
	Phases              []TimelinePhase `json:"phases"`
	KeyMetrics          []string        `json:"keyMetrics"`
	GeneratedAt         time.Time       `json:"generatedAt"`
}
