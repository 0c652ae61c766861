// internal/workers/recommendation/generate-timeline/handler_test.go
package generatetimeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateTimeline(ctx context.Context, req pipeline.TimelineRequest) (*pipeline.TimelineResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.TimelineResponse), args.Error(1)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "automation-recommendation",
		ElementId:          "Activity_GenerateTimeline",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func profileVariables() map[string]interface{} {
	return map[string]interface{}{
		"company": map[string]interface{}{"name": "Northwind Clinics", "industry": "Healthcare"},
		"strategicInitiatives": []interface{}{
			map[string]interface{}{"name": "Patient intake", "priority": "High"},
		},
	}
}

func TestHandler_ParseInput(t *testing.T) {
	h := NewHandler(LoadConfig(), &MockGenerator{}, logger.NewNoOpLogger())

	input, err := h.parseInput(createMockJob(7, map[string]interface{}{
		"profile":         profileVariables(),
		"scenarioType":    "Safe",
		"provider":        "Gemini",
		"forceRegenerate": true,
	}))
	require.NoError(t, err)
	assert.Equal(t, "Northwind Clinics", input.Profile.Company.Name)
	assert.Equal(t, "Safe", input.ScenarioType)
	assert.Equal(t, "Gemini", input.Provider)
	assert.True(t, input.ForceRegenerate)

	_, err = h.parseInput(createMockJob(8, map[string]interface{}{
		"profile":      profileVariables(),
		"scenarioType": 3,
	}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))

	_, err = h.parseInput(createMockJob(9, map[string]interface{}{"scenarioType": "balanced"}))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestHandler_Execute(t *testing.T) {
	profile := &models.Profile{Company: models.CompanyInfo{Name: "Northwind Clinics", Industry: "Healthcare"}}
	generatedAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		response *pipeline.TimelineResponse
		validate func(t *testing.T, out *Output)
	}{
		{
			name: "generated timeline",
			response: &pipeline.TimelineResponse{
				Timeline:          &models.Timeline{ScenarioType: models.ScenarioConservative, TotalDurationMonths: 24},
				GeneratedAt:       generatedAt,
				ScenarioType:      models.ScenarioConservative,
				ScenarioCorrected: true,
				Provider:          "gemini",
			},
			validate: func(t *testing.T, out *Output) {
				require.NotNil(t, out.Timeline)
				assert.Equal(t, 24, out.Timeline.TotalDurationMonths)
				assert.True(t, out.ScenarioCorrected)
				assert.False(t, out.TimelineCached)
				assert.Equal(t, "gemini", out.TimelineProvider)
				require.NotNil(t, out.TimelineGeneratedAt)
				assert.Equal(t, generatedAt, *out.TimelineGeneratedAt)
			},
		},
		{
			name: "scenario mismatch",
			response: &pipeline.TimelineResponse{
				ScenarioType:     models.ScenarioAggressive,
				ScenarioMismatch: true,
				CachedScenario:   models.ScenarioBalanced,
			},
			validate: func(t *testing.T, out *Output) {
				assert.Nil(t, out.Timeline)
				assert.True(t, out.ScenarioMismatch)
				assert.Equal(t, models.ScenarioBalanced, out.CachedScenario)
				assert.Nil(t, out.TimelineGeneratedAt)
			},
		},
		{
			name: "unknown scenario falls back",
			response: &pipeline.TimelineResponse{
				Timeline:      &models.Timeline{ScenarioType: models.ScenarioBalanced},
				GeneratedAt:   generatedAt,
				ScenarioType:  models.ScenarioBalanced,
				ScenarioError: `unknown scenario "turbo"`,
			},
			validate: func(t *testing.T, out *Output) {
				assert.Equal(t, models.ScenarioBalanced, out.ScenarioType)
				assert.NotEmpty(t, out.ScenarioError)
			},
		},
		{
			name:     "setup required",
			response: &pipeline.TimelineResponse{SetupRequired: true, SetupMessage: "Configure a generation provider"},
			validate: func(t *testing.T, out *Output) {
				assert.True(t, out.SetupRequired)
				assert.Nil(t, out.Timeline)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{}
			gen.On("GenerateTimeline", mock.Anything, pipeline.TimelineRequest{
				Profile:      profile,
				ScenarioType: "aggressive",
			}).Return(tt.response, nil)

			h := NewHandler(LoadConfig(), gen, logger.NewNoOpLogger())
			out, err := h.Execute(context.Background(), &Input{Profile: profile, ScenarioType: "aggressive"})
			require.NoError(t, err)
			tt.validate(t, out)
			gen.AssertExpectations(t)
		})
	}
}

func TestHandler_Execute_Error(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateTimeline", mock.Anything, mock.Anything).
		Return(nil, errors.NewProfileValidationError([]string{"company.industry"}))

	h := NewHandler(LoadConfig(), gen, logger.NewNoOpLogger())
	_, err := h.Execute(context.Background(), &Input{Profile: &models.Profile{}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProfileValidationFailed))
}
