package models

import (
	"fmt"
	"time"
)

// PatternCategory is the enumerated tag of a catalog pattern.
type PatternCategory string

const (
	CategoryCustomerService    PatternCategory = "customer-service"
	CategoryDocumentProcessing PatternCategory = "document-processing"
	CategoryFinanceOperations  PatternCategory = "finance-operations"
	CategorySalesMarketing     PatternCategory = "sales-marketing"
	CategoryHumanResources     PatternCategory = "human-resources"
	CategoryITOperations       PatternCategory = "it-operations"
	CategoryDataAnalytics      PatternCategory = "data-analytics"
)

// Valid reports whether c is a declared category.
func (c PatternCategory) Valid() bool {
	switch c {
	case CategoryCustomerService, CategoryDocumentProcessing, CategoryFinanceOperations,
		CategorySalesMarketing, CategoryHumanResources, CategoryITOperations, CategoryDataAnalytics:
		return true
	}
	return false
}

// AllIndustries is the industry-fit sentinel matching every industry.
const AllIndustries = "All Industries"

// Company size buckets.
const (
	SizeSMB        = "SMB"
	SizeMidMarket  = "Mid-Market"
	SizeEnterprise = "Enterprise"
	SizeUnknown    = "unknown"
)

// Actor performs a workflow step.
type Actor string

const (
	ActorHuman  Actor = "human"
	ActorAI     Actor = "ai"
	ActorSystem Actor = "system"
)

type WorkflowStep struct {
	Order       int    `json:"order" yaml:"order"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Actor       Actor  `json:"actor" yaml:"actor"`
	Automated   bool   `json:"automated" yaml:"automated"`
	Duration    string `json:"duration" yaml:"duration"`
}

type RiskAssessment struct {
	Level       string   `json:"level" yaml:"level"`
	Risks       []string `json:"risks" yaml:"risks"`
	Mitigations []string `json:"mitigations" yaml:"mitigations"`
}

type CostRange struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

type ROIMetrics struct {
	AnnualSavings         float64   `json:"annualSavings" yaml:"annualSavings"`
	ROI3Year              float64   `json:"roi3Year" yaml:"roi3Year"`
	PaybackPeriod         string    `json:"paybackPeriod" yaml:"paybackPeriod"`
	ImplementationCost    CostRange `json:"implementationCost" yaml:"implementationCost"`
	TimeSavedHoursPerWeek float64   `json:"timeSavedHoursPerWeek" yaml:"timeSavedHoursPerWeek"`
}

// WorkflowPattern is one entry of the static pattern catalog.
type WorkflowPattern struct {
	ID                   string          `json:"id,omitempty" yaml:"id"`
	Name                 string          `json:"name" yaml:"name"`
	Category             PatternCategory `json:"category" yaml:"category"`
	Description          string          `json:"description" yaml:"description"`
	IndustryFit          []string        `json:"industryFit" yaml:"industryFit"`
	CompanySizeFit       []string        `json:"companySizeFit" yaml:"companySizeFit"`
	Steps                []WorkflowStep  `json:"steps" yaml:"steps"`
	Governance           []string        `json:"governance" yaml:"governance"`
	RiskAssessment       RiskAssessment  `json:"riskAssessment" yaml:"riskAssessment"`
	ROIMetrics           ROIMetrics      `json:"roiMetrics" yaml:"roiMetrics"`
	ComplexityScore      int             `json:"complexityScore" yaml:"complexityScore"`
	ImplementationPhases []string        `json:"implementationPhases" yaml:"implementationPhases"`
	KPIs                 []string        `json:"kpis" yaml:"kpis"`
	RequiredSystems      []string        `json:"requiredSystems" yaml:"requiredSystems"`
}

// Clone returns a deep copy so callers cannot mutate catalog state.
func (p WorkflowPattern) Clone() WorkflowPattern {
	c := p
	c.IndustryFit = cloneStrings(p.IndustryFit)
	c.CompanySizeFit = cloneStrings(p.CompanySizeFit)
	c.Steps = append([]WorkflowStep(nil), p.Steps...)
	c.Governance = cloneStrings(p.Governance)
	c.RiskAssessment.Risks = cloneStrings(p.RiskAssessment.Risks)
	c.RiskAssessment.Mitigations = cloneStrings(p.RiskAssessment.Mitigations)
	c.ImplementationPhases = cloneStrings(p.ImplementationPhases)
	c.KPIs = cloneStrings(p.KPIs)
	c.RequiredSystems = cloneStrings(p.RequiredSystems)
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// WorkflowStatus is the lifecycle state of a personalized workflow.
type WorkflowStatus string

const (
	StatusDraft      WorkflowStatus = "draft"
	StatusPilot      WorkflowStatus = "pilot"
	StatusProduction WorkflowStatus = "production"
	StatusRetired    WorkflowStatus = "retired"
)

var allowedTransitions = map[WorkflowStatus][]WorkflowStatus{
	StatusDraft:      {StatusPilot, StatusRetired},
	StatusPilot:      {StatusProduction, StatusDraft, StatusRetired},
	StatusProduction: {StatusRetired},
}

// Workflow sources.
const (
	SourceGenerated = "generated"
	SourcePattern   = "pattern"
)

// PersonalizedWorkflow is a pattern specialized for one profile. The
// embedded pattern keeps its catalog id under "id".
type PersonalizedWorkflow struct {
	WorkflowPattern
	ID              string         `json:"workflowId"`
	PatternID       string         `json:"patternId,omitempty"`
	ProfileID       string         `json:"profileId"`
	CompanyName     string         `json:"companyName"`
	SpecificUseCase string         `json:"specificUseCase"`
	Priority        string         `json:"priority"`
	Status          WorkflowStatus `json:"status"`
	Source          string         `json:"source"`
}

// Transition moves the workflow to a new lifecycle status.
func (w *PersonalizedWorkflow) Transition(to WorkflowStatus) error {
	for _, next := range allowedTransitions[w.Status] {
		if next == to {
			w.Status = to
			return nil
		}
	}
	return fmt.Errorf("workflow %s: transition %s -> %s not allowed", w.ID, w.Status, to)
}

// WorkflowAnalysis summarizes a set of recommended workflows.
type WorkflowAnalysis struct {
	Summary            string   `json:"summary"`
	KeyPainPoints      []string `json:"keyPainPoints"`
	CompletenessScore  int      `json:"completenessScore"`
	TotalAnnualSavings float64  `json:"totalAnnualSavings"`
	Source             string   `json:"source"`
}

// WorkflowSet is the cached payload of a workflows generation.
type WorkflowSet struct {
	Workflows   []PersonalizedWorkflow `json:"workflows"`
	Analysis    WorkflowAnalysis       `json:"analysis"`
	GeneratedAt time.Time              `json:"generatedAt"`
}
