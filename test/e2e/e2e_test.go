// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automation-advisor/internal/bootstrap"
	"automation-advisor/internal/common/camunda"
	"automation-advisor/internal/common/config"
	"automation-advisor/internal/common/database"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/pipeline"

	gt "automation-advisor/internal/workers/recommendation/generate-timeline"
	gw "automation-advisor/internal/workers/recommendation/generate-workflows"
	lcr "automation-advisor/internal/workers/recommendation/load-cached-recommendation"
)

// These tests need Redis, PostgreSQL and a Zeebe gateway on localhost,
// for example from the docker compose stack. Set ADVISOR_E2E=1 to run them.
func requireE2E(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("ADVISOR_E2E") == "" {
		t.Skip("ADVISOR_E2E not set")
	}
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Index.Enabled = false
	return cfg
}

// fakeGateway answers workflow prompts with prose, forcing the catalog
// fallback, and timeline prompts with a minimal timeline document.
func fakeGateway(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req struct {
			System string `json:"system"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		text := `{"summary":"Phased rollout","totalDurationMonths":12,` +
			`"phases":[{"name":"Pilot","startMonth":1,"endMonth":4},{"name":"Scale","startMonth":5,"endMonth":12}]}`
		if strings.Contains(req.System, `"workflows" array`) {
			text = "I cannot format this as JSON."
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func e2eProfile() *models.Profile {
	return &models.Profile{
		ID: "e2e-" + uuid.NewString(),
		Company: models.CompanyInfo{
			Name:          "Contoso Health",
			Industry:      "Healthcare",
			EmployeeCount: "350",
			Location:      "Austin, TX",
		},
		Initiatives: []models.StrategicInitiative{{
			Name:             "Patient intake modernization",
			Priority:         "Critical",
			BusinessProblems: []string{"manual data entry", "slow claims processing"},
			ExpectedOutcomes: []string{"faster intake"},
		}},
		Systems: []models.SystemApplication{{Name: "Epic", Category: "EHR"}},
	}
}

func TestServicesConnectivity(t *testing.T) {
	cfg := requireE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	assert.NoError(t, pg.Ping(ctx), "postgres ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Ping(ctx), "redis ping failed")

	zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
	require.NoError(t, err)
	defer zeebe.Close()
	assert.NoError(t, zeebe.Ping(ctx), "zeebe topology request failed")
}

func TestRecommendationFlow(t *testing.T) {
	cfg := requireE2E(t)

	for _, backend := range []string{config.CacheBackendRedis, config.CacheBackendPostgres} {
		t.Run(backend, func(t *testing.T) {
			var calls int32
			gateway := fakeGateway(t, &calls)

			cfg := *cfg
			cfg.Cache.Backend = backend
			cfg.Providers = config.ProvidersConfig{
				Gateway: config.ProviderConfig{APIKey: "e2e", BaseURL: gateway.URL},
			}
			cfg.Generation.DefaultProvider = models.ProviderGateway

			ctx := context.Background()
			log := logger.NewTestLogger(t)
			components, err := bootstrap.Build(ctx, &cfg, log, bootstrap.Options{ReadyTimeout: 30 * time.Second})
			require.NoError(t, err)
			defer components.Close()
			assert.Empty(t, components.Ready(ctx))

			profile := e2eProfile()

			// Workflows: generate, then serve from cache.
			workflows := gw.NewHandler(gw.LoadConfig(), components.Pipeline, log)
			first, err := workflows.Execute(ctx, &gw.Input{Profile: profile})
			require.NoError(t, err)
			assert.False(t, first.WorkflowsCached)
			assert.NotEmpty(t, first.Workflows)

			second, err := workflows.Execute(ctx, &gw.Input{Profile: profile})
			require.NoError(t, err)
			assert.True(t, second.WorkflowsCached)
			assert.Len(t, second.Workflows, len(first.Workflows))
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

			// Timeline: a different scenario is reported, not regenerated.
			timeline := gt.NewHandler(gt.LoadConfig(), components.Pipeline, log)
			balanced, err := timeline.Execute(ctx, &gt.Input{Profile: profile, ScenarioType: "balanced"})
			require.NoError(t, err)
			require.NotNil(t, balanced.Timeline)

			mismatch, err := timeline.Execute(ctx, &gt.Input{Profile: profile, ScenarioType: "fast"})
			require.NoError(t, err)
			assert.True(t, mismatch.ScenarioMismatch)
			assert.Equal(t, models.ScenarioBalanced, mismatch.CachedScenario)
			assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

			forced, err := timeline.Execute(ctx, &gt.Input{Profile: profile, ScenarioType: "fast", ForceRegenerate: true})
			require.NoError(t, err)
			require.NotNil(t, forced.Timeline)
			assert.Equal(t, models.ScenarioAggressive, forced.Timeline.ScenarioType)

			// Cached loads never call the provider.
			loader := lcr.NewHandler(lcr.LoadConfig(), components.Pipeline, log)
			cached, err := loader.Execute(ctx, &lcr.Input{EntityID: profile.EntityID(), Kind: models.KindTimeline})
			require.NoError(t, err)
			assert.True(t, cached.CacheFound)
			assert.Equal(t, models.ScenarioAggressive, cached.CachedScenario)

			earlier, err := components.Pipeline.LoadCached(ctx, profile.EntityID(), models.KindTimeline, "balanced")
			require.NoError(t, err)
			assert.True(t, earlier.Found)

			resp, err := components.Pipeline.GenerateWorkflows(ctx, pipeline.WorkflowsRequest{Profile: profile, ForceRegenerate: true})
			require.NoError(t, err)
			assert.False(t, resp.Cached)
			assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
		})
	}
}
