package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "generate-workflows", DisplayName: "Generate Workflows", Category: "recommendation", TaskType: "generate-workflows", Timeout: "150s", Retries: 2},
			{ID: "load-cached-recommendation", DisplayName: "Load Cached Recommendation", Category: "recommendation", TaskType: "load-cached-recommendation"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{name: "valid", mutate: func(r *ActivityRegistry) {}},
		{name: "empty", mutate: func(r *ActivityRegistry) { r.Activities = nil }, wantErr: "no activities"},
		{name: "duplicate id", mutate: func(r *ActivityRegistry) { r.Activities[1].ID = "generate-workflows" }, wantErr: "duplicate activity id"},
		{name: "duplicate task type", mutate: func(r *ActivityRegistry) { r.Activities[1].TaskType = "generate-workflows" }, wantErr: "reuses task type"},
		{name: "missing category", mutate: func(r *ActivityRegistry) { r.Activities[0].Category = "" }, wantErr: "category"},
		{name: "bad timeout", mutate: func(r *ActivityRegistry) { r.Activities[0].Timeout = "soon" }, wantErr: "invalid timeout"},
		{name: "negative retries", mutate: func(r *ActivityRegistry) { r.Activities[0].Retries = -1 }, wantErr: "retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	require.NoError(t, Save(validRegistry(), path))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"generate-workflows", "load-cached-recommendation"}, reg.TaskTypes())

	a, ok := reg.Find("generate-workflows")
	require.True(t, ok)
	d, err := a.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 150*time.Second, d)

	_, ok = reg.Find("unknown")
	assert.False(t, ok)
}

func TestLoadShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())
	assert.Equal(t, []string{"generate-timeline", "generate-workflows", "load-cached-recommendation"}, reg.TaskTypes())
}

func TestUpdate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      string
		field   string
		value   string
		wantErr string
		check   func(t *testing.T, a Activity)
	}{
		{name: "status", id: "generate-workflows", field: "status", value: "verified",
			check: func(t *testing.T, a Activity) { assert.Equal(t, "verified", a.ImplementationStatus) }},
		{name: "retries", id: "generate-workflows", field: "retries", value: "4",
			check: func(t *testing.T, a Activity) { assert.Equal(t, 4, a.Retries) }},
		{name: "timeout", id: "generate-workflows", field: "timeout", value: "2m",
			check: func(t *testing.T, a Activity) { assert.Equal(t, "2m", a.Timeout) }},
		{name: "bad timeout", id: "generate-workflows", field: "timeout", value: "later", wantErr: "invalid timeout"},
		{name: "negative retries", id: "generate-workflows", field: "retries", value: "-2", wantErr: "invalid retries"},
		{name: "unknown field", id: "generate-workflows", field: "taskType", value: "x", wantErr: "unknown field"},
		{name: "unknown id", id: "nope", field: "status", value: "planned", wantErr: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistry()
			err := reg.Update(tt.id, tt.field, tt.value, now)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, reg.LastUpdated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "2026-03-01T12:00:00Z", reg.LastUpdated)
			a, ok := reg.Find(tt.id)
			require.True(t, ok)
			tt.check(t, a)
		})
	}
}
