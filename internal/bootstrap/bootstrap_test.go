package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"automation-advisor/internal/common/config"
	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/pipeline"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *config.Config {
	return &config.Config{
		Cache:      config.CacheConfig{Backend: config.CacheBackendMemory},
		Generation: config.GenerationConfig{Timeout: 5000, MaxTokens: 256, Temperature: 0.2},
		Index:      config.IndexConfig{Name: "recommendations"},
	}
}

func TestBuild_MemoryWithoutProviders(t *testing.T) {
	c, err := Build(context.Background(), baseConfig(), logger.NewTestLogger(t), Options{})
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Pipeline)
	assert.False(t, c.Registry.Configured())
	assert.Nil(t, c.Indexer)
	assert.Empty(t, c.Ready(context.Background()))

	resp, err := c.Pipeline.GenerateWorkflows(context.Background(), pipelineRequest())
	require.NoError(t, err)
	assert.True(t, resp.SetupRequired)
}

func TestBuild_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Cache.TTL = 3600
	cfg.Database.Redis.Address = mr.Addr()

	c, err := Build(context.Background(), cfg, logger.NewTestLogger(t), Options{ReadyTimeout: time.Second})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Cache.Store(context.Background(), models.CacheKey{
		EntityID: "ent-1",
		Kind:     models.KindWorkflows,
		Provider: "openai",
	}, []byte(`{"workflows":[]}`), time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())
	assert.Empty(t, c.Ready(context.Background()))

	mr.Close()
	failures := c.Ready(context.Background())
	assert.Contains(t, failures, "redis")
}

func TestBuild_RedisUnreachable(t *testing.T) {
	cfg := baseConfig()
	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Database.Redis.Address = "127.0.0.1:1"

	_, err := Build(context.Background(), cfg, logger.NewNoOpLogger(), Options{ReadyTimeout: 300 * time.Millisecond})
	require.Error(t, err)
	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "redis not ready")
}

func TestBuild_IndexEnabled(t *testing.T) {
	var mu sync.Mutex
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := baseConfig()
	cfg.Index.Enabled = true
	cfg.Database.Elasticsearch.Addresses = []string{server.URL}

	c, err := Build(context.Background(), cfg, logger.NewTestLogger(t), Options{ReadyTimeout: time.Second})
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Indexer)
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, requests, "HEAD /recommendations")
}

func TestBuild_GatewayProvider(t *testing.T) {
	cfg := baseConfig()
	cfg.Providers.Gateway = config.ProviderConfig{APIKey: "k", BaseURL: "http://127.0.0.1:1"}

	c, err := Build(context.Background(), cfg, logger.NewNoOpLogger(), Options{})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{models.ProviderGateway}, c.Registry.Names())
}

func pipelineRequest() pipeline.WorkflowsRequest {
	return pipeline.WorkflowsRequest{Profile: &models.Profile{
		Company:     models.CompanyInfo{Name: "Northwind Clinics", Industry: "Healthcare"},
		Initiatives: []models.StrategicInitiative{{Name: "Patient intake", Priority: "High"}},
	}}
}
