package models

import (
	"encoding/json"
	"strings"
	"testing"

	apperrors "automation-advisor/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProfile(t *testing.T) {
	t.Run("valid profile", func(t *testing.T) {
		p, err := DecodeProfile(strings.NewReader(`{
			"company": {"name": "Acme Health", "industry": "Healthcare", "employeeCount": "201-1000"},
			"strategicInitiatives": [{"name": "Intake", "priority": "High", "businessProblems": ["slow manual intake"]}],
			"systems": [{"name": "Epic", "category": "EHR"}]
		}`))
		require.NoError(t, err)
		assert.Equal(t, "Acme Health", p.Company.Name)
		require.Len(t, p.Initiatives, 1)
		assert.True(t, p.Initiatives[0].IsHighPriority())
		assert.Nil(t, p.Initiatives[0].Contact)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := DecodeProfile(strings.NewReader(`{"company": {"name": "Acme"}, "favouriteColour": "blue"}`))
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
	})

	t.Run("map input", func(t *testing.T) {
		p, err := DecodeProfileMap(map[string]interface{}{
			"company": map[string]interface{}{"name": "Acme", "industry": "Retail"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Retail", p.Company.Industry)
	})
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		missing []string
	}{
		{
			name: "complete",
			profile: &Profile{
				Company:     CompanyInfo{Name: "Acme", Industry: "Retail"},
				Initiatives: []StrategicInitiative{{Name: "Growth"}},
			},
		},
		{
			name:    "empty",
			profile: &Profile{},
			missing: []string{"company.name", "company.industry", "strategicInitiatives"},
		},
		{
			name: "blank industry",
			profile: &Profile{
				Company:     CompanyInfo{Name: "Acme", Industry: "  "},
				Initiatives: []StrategicInitiative{{Name: "Growth"}},
			},
			missing: []string{"company.industry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			stdErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeProfileValidationFailed, stdErr.Code)
			assert.Equal(t, tt.missing, stdErr.Metadata["missingFields"])
		})
	}
}

func TestProfile_EntityID(t *testing.T) {
	withID := &Profile{ID: "entity-42", Company: CompanyInfo{Name: "Acme"}}
	assert.Equal(t, "entity-42", withID.EntityID())

	a := &Profile{Company: CompanyInfo{Name: "Acme Corp"}}
	b := &Profile{Company: CompanyInfo{Name: "  acme corp "}}
	c := &Profile{Company: CompanyInfo{Name: "Other"}}
	assert.Equal(t, a.EntityID(), b.EntityID())
	assert.NotEqual(t, a.EntityID(), c.EntityID())
}

func TestPersonalizedWorkflow_Transition(t *testing.T) {
	w := &PersonalizedWorkflow{ID: "wf-1", Status: StatusDraft}

	require.NoError(t, w.Transition(StatusPilot))
	require.NoError(t, w.Transition(StatusProduction))
	assert.Error(t, w.Transition(StatusDraft))
	require.NoError(t, w.Transition(StatusRetired))
	assert.Error(t, w.Transition(StatusPilot))
	assert.Equal(t, StatusRetired, w.Status)
}

func TestPersonalizedWorkflow_JSONKeepsPatternID(t *testing.T) {
	w := PersonalizedWorkflow{
		WorkflowPattern: WorkflowPattern{ID: "customer-inquiry-triage", Name: "Inquiry triage"},
		ID:              "wf-1",
		PatternID:       "customer-inquiry-triage",
		Status:          StatusDraft,
	}

	data, err := json.Marshal(w)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "wf-1", raw["workflowId"])
	assert.Equal(t, "customer-inquiry-triage", raw["id"])

	var decoded PersonalizedWorkflow
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, w, decoded)
}

func TestWorkflowPattern_Clone(t *testing.T) {
	p := WorkflowPattern{ID: "p1", IndustryFit: []string{"Retail"}, Steps: []WorkflowStep{{Order: 1}}}
	c := p.Clone()
	c.IndustryFit[0] = "Changed"
	c.Steps[0].Order = 9
	assert.Equal(t, "Retail", p.IndustryFit[0])
	assert.Equal(t, 1, p.Steps[0].Order)
}
