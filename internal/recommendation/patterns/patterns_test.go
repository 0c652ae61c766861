package patterns

import (
	"testing"

	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Pattern.ID
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	lib := Default()
	require.NotNil(t, lib)
	assert.Equal(t, 7, lib.Len())
	assert.NotEmpty(t, lib.Version())
	assert.Same(t, lib, Default())

	for _, p := range lib.All() {
		assert.GreaterOrEqual(t, p.ComplexityScore, 1, p.ID)
		assert.LessOrEqual(t, p.ComplexityScore, 10, p.ID)
		assert.NotEmpty(t, p.Steps, p.ID)
		assert.Positive(t, p.ROIMetrics.ROI3Year, p.ID)
	}
}

func TestLibrary_ReturnsCopies(t *testing.T) {
	lib := Default()
	p, ok := lib.Get("customer-inquiry-triage")
	require.True(t, ok)
	p.Name = "mutated"
	p.IndustryFit[0] = "mutated"

	again, _ := lib.Get("customer-inquiry-triage")
	assert.Equal(t, "AI Customer Inquiry Triage", again.Name)
	assert.Equal(t, models.AllIndustries, again.IndustryFit[0])

	_, ok = lib.Get("missing")
	assert.False(t, ok)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", `patterns: []`},
		{"zero complexity", `
patterns:
  - {id: a, category: it-operations, industryFit: [All Industries], complexityScore: 0, steps: [{order: 1, name: s}]}
`},
		{"no steps", `
patterns:
  - {id: a, category: it-operations, industryFit: [All Industries], complexityScore: 3}
`},
		{"unknown category", `
patterns:
  - {id: a, category: astrology, industryFit: [All Industries], complexityScore: 3, steps: [{order: 1, name: s}]}
`},
		{"duplicate id", `
patterns:
  - {id: a, category: it-operations, industryFit: [All Industries], complexityScore: 3, steps: [{order: 1, name: s}]}
  - {id: a, category: it-operations, industryFit: [All Industries], complexityScore: 3, steps: [{order: 1, name: s}]}
`},
		{"malformed", `patterns: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestSizeBucket(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1-10", models.SizeSMB},
		{"11-50", models.SizeSMB},
		{"Small business", models.SizeSMB},
		{"51-200", models.SizeMidMarket},
		{"201-1000", models.SizeMidMarket},
		{"201-1000 employees", models.SizeMidMarket},
		{"501-1,000", models.SizeMidMarket},
		{"1000+", models.SizeEnterprise},
		{"1001-5000", models.SizeEnterprise},
		{"Enterprise", models.SizeEnterprise},
		{"35", models.SizeSMB},
		{"1,200", models.SizeEnterprise},
		{"51-100", models.SizeMidMarket},
		{"251-500", models.SizeMidMarket},
		{"251 to 500 staff", models.SizeMidMarket},
		{"1-5", models.SizeSMB},
		{"50+", models.SizeMidMarket},
		{"1,000+", models.SizeEnterprise},
		{"0-0", models.SizeUnknown},
		{"Mid-market", models.SizeMidMarket},
		{"", models.SizeUnknown},
		{"lots", models.SizeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SizeBucket(tt.input))
		})
	}
}

func TestMatch_Healthcare_MidMarket(t *testing.T) {
	p := &models.Profile{Company: models.CompanyInfo{Industry: "Healthcare", EmployeeCount: "201-1000"}}
	got := Match(p, Default())

	assert.Equal(t, []string{
		"invoice-processing-automation",
		"customer-inquiry-triage",
		"intelligent-document-processing",
		"employee-onboarding-assistant",
		"it-incident-triage",
	}, ids(got))

	for _, c := range got {
		assert.True(t, contains(c.Pattern.IndustryFit, "Healthcare") || contains(c.Pattern.IndustryFit, models.AllIndustries))
		assert.Contains(t, c.Pattern.CompanySizeFit, models.SizeMidMarket)
	}
}

func TestMatch_UnknownIndustryKeepsOnlyUniversalPatterns(t *testing.T) {
	p := &models.Profile{Company: models.CompanyInfo{Industry: "Aerospace"}}
	got := Match(p, Default())

	require.NotEmpty(t, got)
	for _, c := range got {
		assert.Contains(t, c.Pattern.IndustryFit, models.AllIndustries, c.Pattern.ID)
	}
}

func TestMatch_IndustryIsCaseInsensitive(t *testing.T) {
	lower := Match(&models.Profile{Company: models.CompanyInfo{Industry: "healthcare"}}, Default())
	title := Match(&models.Profile{Company: models.CompanyInfo{Industry: "Healthcare"}}, Default())
	assert.Equal(t, ids(title), ids(lower))
}

func TestRank_TieBreakByID(t *testing.T) {
	mk := func(id string, roi float64, complexity int) Candidate {
		p := models.WorkflowPattern{ID: id, ComplexityScore: complexity, ROIMetrics: models.ROIMetrics{ROI3Year: roi}}
		return Candidate{Pattern: p, Score: ScoreOf(p)}
	}

	for i := 0; i < 10; i++ {
		cs := []Candidate{mk("zeta", 300, 5), mk("alpha", 600, 10), mk("mid", 120, 2), mk("top", 500, 2)}
		Rank(cs)
		assert.Equal(t, []string{"top", "alpha", "mid", "zeta"}, ids(cs))
	}
}

func TestScoreOf_ZeroComplexityGuard(t *testing.T) {
	p := models.WorkflowPattern{ROIMetrics: models.ROIMetrics{ROI3Year: 300}}
	assert.Equal(t, 300.0, ScoreOf(p))
}

func TestPersonalize(t *testing.T) {
	profile := &models.Profile{
		ID:      "entity-1",
		Company: models.CompanyInfo{Name: "Northwind", Industry: "Healthcare"},
		Initiatives: []models.StrategicInitiative{
			{Priority: "High", BusinessProblems: []string{"slow manual intake"}},
		},
	}
	pattern, _ := Default().Get("intelligent-document-processing")

	w := Personalize(pattern, profile, features.Extract(profile))
	assert.Equal(t, "intelligent-document-processing", w.PatternID)
	assert.Equal(t, "entity-1", w.ProfileID)
	assert.Equal(t, "Northwind", w.CompanyName)
	assert.Contains(t, w.SpecificUseCase, "slow manual intake")
	assert.Equal(t, models.StatusDraft, w.Status)
	assert.Equal(t, models.SourcePattern, w.Source)
	assert.Equal(t, models.PriorityMedium, w.Priority)
	assert.Equal(t, w.ID, Personalize(pattern, profile, nil).ID)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
