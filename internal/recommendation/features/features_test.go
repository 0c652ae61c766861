package features

import (
	"encoding/json"
	"strings"
	"testing"

	"automation-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullProfile() *models.Profile {
	return &models.Profile{
		Company: models.CompanyInfo{
			Name:          "Acme Health",
			Industry:      "Healthcare",
			EmployeeCount: "201-1000",
			AnnualRevenue: "$50M",
			Location:      "Boston, MA",
		},
		Initiatives: []models.StrategicInitiative{
			{
				Name:             "Patient intake",
				Priority:         "High",
				BusinessProblems: []string{"slow manual intake", "manual data entry errors"},
				ExpectedOutcomes: []string{"Faster intake"},
				SuccessMetrics:   []string{"Intake time"},
				Contact:          &models.Contact{Name: "Dana", Role: "COO", Email: "dana@acme.test"},
			},
			{Name: "Billing", Priority: "Medium", BusinessProblems: []string{"billing process delays"}},
			{Name: "Reporting", Priority: "Low"},
		},
		Systems: []models.SystemApplication{
			{Name: "Epic", Category: "EHR"},
			{Name: "Salesforce", Category: "CRM"},
			{Name: "NetSuite", Category: "ERP"},
		},
	}
}

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.Profile
		score   int
	}{
		{name: "nil profile", profile: nil, score: 0},
		{name: "empty profile", profile: &models.Profile{}, score: 0},
		{name: "full profile is clamped", profile: fullProfile(), score: 100},
		{
			name: "essentials only",
			profile: &models.Profile{Company: models.CompanyInfo{
				Name: "Acme", Industry: "Retail", EmployeeCount: "11-50", AnnualRevenue: "1M", Location: "Austin",
			}},
			score: 35,
		},
		{
			name: "placeholders do not count",
			profile: &models.Profile{Company: models.CompanyInfo{Name: "Acme", Industry: "undefined", Location: "null"}},
			score: 10,
		},
		{
			name: "one initiative with problems and one system",
			profile: &models.Profile{
				Company:     models.CompanyInfo{Name: "Acme", Industry: "Retail"},
				Initiatives: []models.StrategicInitiative{{Name: "X", BusinessProblems: []string{"slow"}}},
				Systems:     []models.SystemApplication{{Name: "Shopify"}},
			},
			score: 10 + 10 + 15 + 10 + 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Completeness(tt.profile)
			assert.Equal(t, tt.score, s.Score)
			assert.GreaterOrEqual(t, s.Score, 0)
			assert.LessOrEqual(t, s.Score, 100)
		})
	}
}

func TestExtract_KeyPainPoints(t *testing.T) {
	f := Extract(fullProfile())

	require.NotEmpty(t, f.KeyPainPoints)
	assert.Equal(t, "slow manual intake", f.KeyPainPoints[0])
	assert.Contains(t, f.KeyPainPoints, "manual data entry errors")
	assert.NotContains(t, f.KeyPainPoints, "billing process delays")
	assert.Contains(t, f.Themes, "Manual processes need automation")
	assert.Contains(t, f.KeyPainPoints, "Manual processes need automation")
	assert.LessOrEqual(t, len(f.KeyPainPoints), MaxKeyPainPoints)
	assert.Len(t, f.BusinessProblems, 3)
}

func TestExtract_PainPointsDeduplicatedAndCapped(t *testing.T) {
	p := &models.Profile{Initiatives: []models.StrategicInitiative{
		{Priority: "critical", BusinessProblems: []string{"A", "a", "B", "C", "D", "E", "F"}},
	}}
	f := Extract(p)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, f.KeyPainPoints)
}

func TestDetectThemes_RequiresTwoMatches(t *testing.T) {
	assert.Empty(t, DetectThemes([]string{"manual invoicing"}))
	assert.Equal(t, []string{"Manual processes need automation"},
		DetectThemes([]string{"manual invoicing", "no automation for approvals"}))
}

func TestExtract_SystemsByCategory(t *testing.T) {
	p := &models.Profile{Systems: []models.SystemApplication{
		{Name: "Slack"},
		{Name: "Salesforce", Category: "CRM"},
		{Name: "HubSpot", Category: "CRM"},
		{Name: ""},
	}}
	f := Extract(p)
	assert.Equal(t, []string{"CRM", "Uncategorized"}, f.SystemCategories())
	assert.Equal(t, []string{"Salesforce", "HubSpot"}, f.SystemsByCategory["CRM"])
}

func TestExtract_NeverRendersPlaceholders(t *testing.T) {
	profiles := []*models.Profile{
		nil,
		{},
		fullProfile(),
		{
			Company: models.CompanyInfo{Name: "undefined", Industry: "null", Location: " NULL "},
			Initiatives: []models.StrategicInitiative{{
				Name:             "undefined",
				BusinessProblems: []string{"null", "undefined", "real problem"},
				Contact:          &models.Contact{Name: "null"},
			}},
			Systems: []models.SystemApplication{{Name: "undefined", Category: "null"}, {Name: "ERP", Category: "undefined"}},
		},
	}

	for i, p := range profiles {
		f := Extract(p)
		raw, err := json.Marshal(f)
		require.NoError(t, err)
		text := strings.ToLower(string(raw))
		assert.NotContains(t, text, "undefined", "profile %d", i)
		assert.NotContains(t, text, "null", "profile %d", i)
	}
}

func TestExtract_FallbackText(t *testing.T) {
	f := Extract(&models.Profile{})
	assert.Equal(t, Unknown, f.Company.Name)
	assert.Equal(t, Unknown, f.Company.Industry)
	assert.Empty(t, f.KeyPainPoints)
	assert.NotNil(t, f.BusinessProblems)
}
