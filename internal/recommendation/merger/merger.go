// Package merger reconciles generator output with the pattern catalog and
// guarantees complete, schema-valid workflows and timelines.
package merger

import (
	"fmt"
	"strings"

	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/features"
	"automation-advisor/internal/recommendation/patterns"

	"github.com/tidwall/gjson"
)

// Field defaults used when neither the generator nor a matched pattern
// supplies a value.
const (
	DefaultROI3Year           = 350.0
	DefaultPaybackPeriod      = "6-12 months"
	DefaultCostLow            = 25000.0
	DefaultCostHigh           = 50000.0
	DefaultAnnualSavings      = 50000.0
	DefaultComplexity         = 5
	DefaultTimeSavedPerWeek   = 10.0
	DefaultRiskLevel          = "Medium"
	DefaultCategory           = models.CategoryDataAnalytics
	MaxWorkflows              = 5
	fallbackWorkflowNameStart = "AI Workflow"
)

var defaultGovernance = []string{"Human review of AI outputs before production use"}

func defaultSteps() []models.WorkflowStep {
	return []models.WorkflowStep{
		{Order: 1, Name: "Discovery and design", Description: "Map the current process and define success criteria", Actor: models.ActorHuman},
		{Order: 2, Name: "AI-assisted execution", Description: "AI performs the repetitive portion of the work", Actor: models.ActorAI, Automated: true},
		{Order: 3, Name: "Review and approval", Description: "A person reviews AI output before it takes effect", Actor: models.ActorHuman},
	}
}

// WorkflowResult is a complete set of workflows plus the fallbacks that
// were applied to produce it.
type WorkflowResult struct {
	Workflows []models.PersonalizedWorkflow `json:"workflows"`
	Analysis  models.WorkflowAnalysis       `json:"analysis"`
	Warnings  []*apperrors.StandardError    `json:"-"`
}

// FromPatterns reports whether the result came entirely from the catalog.
func (r WorkflowResult) FromPatterns() bool {
	return r.Analysis.Source == models.SourcePattern
}

type warnings struct {
	list []*apperrors.StandardError
}

func (w *warnings) add(field, reason string) {
	w.list = append(w.list, apperrors.NewMergeFallbackWarning(field, reason))
}

// MergeWorkflows builds the workflow result from raw generator output.
// Candidates must already be ranked. Missing or malformed output never
// causes an error; the top candidates are used instead.
func MergeWorkflows(raw string, candidates []patterns.Candidate, profile *models.Profile, f *features.Features) WorkflowResult {
	if f == nil {
		f = features.Extract(profile)
	}
	w := &warnings{}

	doc, ok := ExtractJSON(raw)
	if !ok {
		w.add("workflows", "no JSON object in generator output")
		return fromPatterns(candidates, profile, f, w)
	}

	items := usableObjects(gjson.Get(doc, "workflows"))
	if len(items) == 0 {
		w.add("workflows", "no usable workflows array")
		return fromPatterns(candidates, profile, f, w)
	}
	if len(items) > MaxWorkflows {
		items = items[:MaxWorkflows]
	}

	byID := make(map[string]models.WorkflowPattern, len(candidates))
	for _, c := range candidates {
		byID[c.Pattern.ID] = c.Pattern
	}

	result := WorkflowResult{Workflows: make([]models.PersonalizedWorkflow, 0, len(items))}
	for i, item := range items {
		pattern := matchPattern(item, i, candidates, byID)
		result.Workflows = append(result.Workflows, mergeWorkflow(item, i, pattern, profile, f, w))
	}

	result.Analysis = mergeAnalysis(gjson.Get(doc, "analysis"), result.Workflows, f, models.SourceGenerated, w)
	result.Warnings = w.list
	validateWorkflows(&result)
	return result
}

// fromPatterns is the designed fallback: the top ranked candidates,
// personalized and untouched by generator output.
func fromPatterns(candidates []patterns.Candidate, profile *models.Profile, f *features.Features, w *warnings) WorkflowResult {
	top := patterns.Top(candidates, MaxWorkflows)
	result := WorkflowResult{Workflows: make([]models.PersonalizedWorkflow, 0, len(top))}
	for _, c := range top {
		result.Workflows = append(result.Workflows, patterns.Personalize(c.Pattern, profile, f))
	}
	result.Analysis = mergeAnalysis(gjson.Result{}, result.Workflows, f, models.SourcePattern, w)
	result.Warnings = w.list
	validateWorkflows(&result)
	return result
}

func usableObjects(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	var out []gjson.Result
	for _, item := range r.Array() {
		if item.IsObject() {
			out = append(out, item)
		}
	}
	return out
}

// matchPattern picks the pattern a generated workflow is reconciled with:
// an explicit patternId naming a candidate, else the candidate at the same
// position, else none.
func matchPattern(item gjson.Result, i int, candidates []patterns.Candidate, byID map[string]models.WorkflowPattern) *models.WorkflowPattern {
	if id, ok := str(item.Get("patternId")); ok {
		if p, found := byID[id]; found {
			return &p
		}
	}
	if i < len(candidates) {
		p := candidates[i].Pattern
		return &p
	}
	return nil
}

func mergeWorkflow(item gjson.Result, i int, pattern *models.WorkflowPattern, profile *models.Profile, f *features.Features, w *warnings) models.PersonalizedWorkflow {
	prefix := fmt.Sprintf("workflows[%d]", i)
	field := func(name string) string { return prefix + "." + name }

	var base models.WorkflowPattern
	if pattern != nil {
		base = pattern.Clone()
	}

	out := models.WorkflowPattern{ID: base.ID}

	out.Name = pickString(item.Get("name"), base.Name, fmt.Sprintf("%s %d", fallbackWorkflowNameStart, i+1), field("name"), w)
	out.Description = pickString(item.Get("description"), base.Description, out.Name, field("description"), w)

	out.Category = DefaultCategory
	if c, ok := str(item.Get("category")); ok && models.PatternCategory(strings.ToLower(c)).Valid() {
		out.Category = models.PatternCategory(strings.ToLower(c))
	} else if pattern != nil {
		out.Category = base.Category
		w.add(field("category"), "used pattern value")
	} else {
		w.add(field("category"), "used default")
	}

	out.Steps = mergeSteps(item.Get("steps"), base.Steps, field("steps"), w)
	out.Governance = pickList(item.Get("governance"), base.Governance, defaultGovernance, field("governance"), w)
	out.RiskAssessment = mergeRisk(item.Get("riskAssessment"), base.RiskAssessment, pattern != nil, field("riskAssessment"), w)
	out.ROIMetrics = mergeROI(item.Get("roiMetrics"), base.ROIMetrics, pattern != nil, field("roiMetrics"), w)

	out.ComplexityScore = DefaultComplexity
	if n, ok := intIn(item.Get("complexityScore"), 1, 10); ok {
		out.ComplexityScore = n
	} else if pattern != nil {
		out.ComplexityScore = base.ComplexityScore
		w.add(field("complexityScore"), "used pattern value")
	} else {
		w.add(field("complexityScore"), "used default")
	}

	out.ImplementationPhases = pickList(item.Get("implementationPhases"), base.ImplementationPhases, []string{}, field("implementationPhases"), w)
	out.KPIs = pickList(item.Get("kpis"), base.KPIs, []string{}, field("kpis"), w)
	out.RequiredSystems = pickList(item.Get("requiredSystems"), base.RequiredSystems, []string{}, field("requiredSystems"), w)
	out.IndustryFit = nonNil(base.IndustryFit)
	out.CompanySizeFit = nonNil(base.CompanySizeFit)

	entityID := ""
	if profile != nil {
		entityID = profile.EntityID()
	}
	patternID := ""
	if pattern != nil {
		patternID = pattern.ID
	}

	useCase, ok := str(item.Get("specificUseCase"))
	if !ok {
		useCase = patterns.UseCase(out, f)
		w.add(field("specificUseCase"), "derived from profile")
	}

	priority := normalizePriority(item.Get("priority"))
	if priority == "" {
		priority = patterns.PriorityFor(out.ComplexityScore)
		w.add(field("priority"), "derived from complexity")
	}

	idSeed := patternID
	if idSeed == "" {
		idSeed = out.Name
	}

	return models.PersonalizedWorkflow{
		WorkflowPattern: out,
		ID:              patterns.WorkflowID(entityID, idSeed),
		PatternID:       patternID,
		ProfileID:       entityID,
		CompanyName:     f.Company.Name,
		SpecificUseCase: useCase,
		Priority:        priority,
		Status:          models.StatusDraft,
		Source:          models.SourceGenerated,
	}
}

func pickString(r gjson.Result, fromPattern, fallback, field string, w *warnings) string {
	if s, ok := str(r); ok {
		return s
	}
	if fromPattern != "" {
		w.add(field, "used pattern value")
		return fromPattern
	}
	w.add(field, "used default")
	return fallback
}

func pickList(r gjson.Result, fromPattern, fallback []string, field string, w *warnings) []string {
	if list, ok := strList(r); ok {
		return list
	}
	if len(fromPattern) > 0 {
		w.add(field, "used pattern value")
		return fromPattern
	}
	w.add(field, "used default")
	return append([]string{}, fallback...)
}

func pickNumber(r gjson.Result, fromPattern float64, hasPattern bool, fallback float64, field string, w *warnings) float64 {
	if v, ok := positive(r); ok {
		return v
	}
	if hasPattern && fromPattern > 0 {
		w.add(field, "used pattern value")
		return fromPattern
	}
	w.add(field, "used default")
	return fallback
}

func mergeSteps(r gjson.Result, fromPattern []models.WorkflowStep, field string, w *warnings) []models.WorkflowStep {
	var steps []models.WorkflowStep
	for _, item := range usableObjects(r) {
		name, ok := str(item.Get("name"))
		if !ok {
			continue
		}
		step := models.WorkflowStep{Name: name}
		step.Order = len(steps) + 1
		if n, ok := intIn(item.Get("order"), 1, 1000); ok {
			step.Order = n
		}
		step.Description, _ = str(item.Get("description"))
		step.Duration, _ = str(item.Get("duration"))
		step.Actor = models.ActorHuman
		if a, ok := str(item.Get("actor")); ok {
			switch models.Actor(strings.ToLower(a)) {
			case models.ActorAI, models.ActorSystem, models.ActorHuman:
				step.Actor = models.Actor(strings.ToLower(a))
			}
		}
		if b, ok := boolean(item.Get("automated")); ok {
			step.Automated = b
		} else {
			step.Automated = step.Actor != models.ActorHuman
		}
		steps = append(steps, step)
	}
	if len(steps) > 0 {
		return steps
	}
	if len(fromPattern) > 0 {
		w.add(field, "used pattern value")
		return fromPattern
	}
	w.add(field, "used default")
	return defaultSteps()
}

func mergeRisk(r gjson.Result, fromPattern models.RiskAssessment, hasPattern bool, field string, w *warnings) models.RiskAssessment {
	return models.RiskAssessment{
		Level:       pickString(r.Get("level"), patternString(hasPattern, fromPattern.Level), DefaultRiskLevel, field+".level", w),
		Risks:       pickList(r.Get("risks"), fromPattern.Risks, []string{}, field+".risks", w),
		Mitigations: pickList(r.Get("mitigations"), fromPattern.Mitigations, []string{}, field+".mitigations", w),
	}
}

func patternString(hasPattern bool, s string) string {
	if !hasPattern {
		return ""
	}
	return s
}

func mergeROI(r gjson.Result, fromPattern models.ROIMetrics, hasPattern bool, field string, w *warnings) models.ROIMetrics {
	roi := models.ROIMetrics{
		AnnualSavings: pickNumber(r.Get("annualSavings"), fromPattern.AnnualSavings, hasPattern, DefaultAnnualSavings, field+".annualSavings", w),
		ROI3Year:      pickNumber(r.Get("roi3Year"), fromPattern.ROI3Year, hasPattern, DefaultROI3Year, field+".roi3Year", w),
		PaybackPeriod: pickString(r.Get("paybackPeriod"), patternString(hasPattern, fromPattern.PaybackPeriod), DefaultPaybackPeriod, field+".paybackPeriod", w),
		ImplementationCost: models.CostRange{
			Low:  pickNumber(r.Get("implementationCost.low"), fromPattern.ImplementationCost.Low, hasPattern, DefaultCostLow, field+".implementationCost.low", w),
			High: pickNumber(r.Get("implementationCost.high"), fromPattern.ImplementationCost.High, hasPattern, DefaultCostHigh, field+".implementationCost.high", w),
		},
		TimeSavedHoursPerWeek: pickNumber(r.Get("timeSavedHoursPerWeek"), fromPattern.TimeSavedHoursPerWeek, hasPattern, DefaultTimeSavedPerWeek, field+".timeSavedHoursPerWeek", w),
	}
	if roi.ImplementationCost.High < roi.ImplementationCost.Low {
		roi.ImplementationCost.High = roi.ImplementationCost.Low
		w.add(field+".implementationCost.high", "raised to low bound")
	}
	return roi
}

func normalizePriority(r gjson.Result) string {
	s, ok := str(r)
	if !ok {
		return ""
	}
	for _, p := range []string{models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		if strings.EqualFold(s, p) {
			return p
		}
	}
	return ""
}

func mergeAnalysis(r gjson.Result, workflows []models.PersonalizedWorkflow, f *features.Features, source string, w *warnings) models.WorkflowAnalysis {
	a := models.WorkflowAnalysis{
		CompletenessScore: f.Completeness.Score,
		Source:            source,
	}
	for _, wf := range workflows {
		a.TotalAnnualSavings += wf.ROIMetrics.AnnualSavings
	}

	if s, ok := str(r.Get("summary")); ok {
		a.Summary = s
	} else {
		a.Summary = fmt.Sprintf("%d AI automation workflows recommended for %s (%s), addressing %d key pain points.",
			len(workflows), f.Company.Name, f.Company.Industry, len(f.KeyPainPoints))
		if source == models.SourceGenerated {
			w.add("analysis.summary", "used default")
		}
	}

	if list, ok := strList(r.Get("keyPainPoints")); ok {
		a.KeyPainPoints = list
	} else {
		a.KeyPainPoints = append([]string{}, f.KeyPainPoints...)
		if source == models.SourceGenerated {
			w.add("analysis.keyPainPoints", "used extracted pain points")
		}
	}
	return a
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
