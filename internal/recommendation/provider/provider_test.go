package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"automation-advisor/internal/common/config"
	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/recommendation/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubGenerator struct{ name string }

func (s stubGenerator) Name() string { return s.name }

func (s stubGenerator) Generate(context.Context, prompt.Prompt) (string, error) { return "{}", nil }

var testPrompt = prompt.Prompt{System: "You are an automation consultant.", User: "Recommend workflows for Acme Health."}

func TestRegistry_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		defaultName string
		configured  []string
		preferred   string
		want        string
		wantErr     bool
	}{
		{name: "preferred wins", defaultName: "openai", configured: []string{"openai", "gemini"}, preferred: "gemini", want: "gemini"},
		{name: "default when no preference", defaultName: "gemini", configured: []string{"openai", "gemini"}, want: "gemini"},
		{name: "first in preference order", configured: []string{"gateway", "anthropic"}, want: "anthropic"},
		{name: "unconfigured default falls through", defaultName: "openai", configured: []string{"gemini"}, want: "gemini"},
		{name: "preferred not configured", configured: []string{"openai"}, preferred: "anthropic", wantErr: true},
		{name: "nothing configured", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gens []Generator
			for _, n := range tt.configured {
				gens = append(gens, stubGenerator{name: n})
			}
			r := NewRegistry(tt.defaultName, gens...)

			g, err := r.Resolve(tt.preferred)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeProviderNotConfigured))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Name())
		})
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry("", stubGenerator{"gateway"}, stubGenerator{"gemini"}, stubGenerator{"openai"})
	assert.Equal(t, []string{"openai", "gemini", "gateway"}, r.Names())
	assert.True(t, r.Configured())
	assert.False(t, NewRegistry("openai").Configured())
}

func TestFromConfig_SkipsProvidersWithoutCredentials(t *testing.T) {
	cfg := &config.Config{
		Generation: config.GenerationConfig{DefaultProvider: "anthropic", MaxTokens: 1024},
		Providers: config.ProvidersConfig{
			OpenAI:    config.ProviderConfig{APIKey: "sk-test", Model: "gpt-4o"},
			Anthropic: config.ProviderConfig{Model: "claude-sonnet-4-5"},
			Gateway:   config.ProviderConfig{APIKey: "gw-key"},
		},
	}

	r, err := FromConfig(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"openai"}, r.Names())

	g, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "openai", g.Name())
}

func TestCategoryForStatus(t *testing.T) {
	assert.Equal(t, apperrors.CategoryRateLimited, CategoryForStatus(429))
	assert.Equal(t, apperrors.CategoryUnauthenticated, CategoryForStatus(401))
	assert.Equal(t, apperrors.CategoryUnauthenticated, CategoryForStatus(403))
	assert.Equal(t, apperrors.CategoryUnavailable, CategoryForStatus(500))
	assert.Equal(t, apperrors.CategoryUnavailable, CategoryForStatus(400))
}

func TestGateway_Generate(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		want         string
		wantCategory apperrors.InvocationCategory
	}{
		{name: "success", status: 200, body: `{"text":"{\"workflows\":[]}"}`, want: `{"workflows":[]}`},
		{name: "rate limited", status: 429, body: `{"error":"slow down"}`, wantCategory: apperrors.CategoryRateLimited},
		{name: "bad key", status: 401, body: `{"error":"unauthorized"}`, wantCategory: apperrors.CategoryUnauthenticated},
		{name: "server error", status: 503, body: `upstream down`, wantCategory: apperrors.CategoryUnavailable},
		{name: "empty text", status: 200, body: `{"text":"  "}`, wantCategory: apperrors.CategoryUnavailable},
		{name: "garbage body", status: 200, body: `not json`, wantCategory: apperrors.CategoryUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got gatewayRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, gatewayPath, r.URL.Path)
				assert.Equal(t, "Bearer gw-key", r.Header.Get("Authorization"))
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g := NewGateway(config.ProviderConfig{APIKey: "gw-key", BaseURL: server.URL + "/", Model: "router"},
				Options{MaxTokens: 2048, Temperature: 0.7}, 0)

			text, err := g.Generate(context.Background(), testPrompt)
			assert.Equal(t, testPrompt.System, got.System)
			assert.Equal(t, testPrompt.User, got.Prompt)
			assert.Equal(t, 2048, got.MaxTokens)

			if tt.wantCategory != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsProviderInvocation(err))
				assert.Equal(t, tt.wantCategory, apperrors.CategoryOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestGateway_DeadlineIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	g := NewGateway(config.ProviderConfig{APIKey: "k", BaseURL: server.URL}, Options{}, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.Generate(ctx, testPrompt)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryUnavailable, apperrors.CategoryOf(err))
}

func TestOpenAI_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		if r.Header.Get("Authorization") != "Bearer sk-good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"workflows\":[]}"}}]}`))
	}))
	defer server.Close()

	opts := Options{MaxTokens: 1000, Temperature: 0.2}

	g := NewOpenAI(config.ProviderConfig{APIKey: "sk-good", Model: "gpt-4o", BaseURL: server.URL + "/"}, opts)
	text, err := g.Generate(context.Background(), testPrompt)
	require.NoError(t, err)
	assert.Equal(t, `{"workflows":[]}`, text)

	g = NewOpenAI(config.ProviderConfig{APIKey: "sk-bad", Model: "gpt-4o", BaseURL: server.URL + "/"}, opts)
	_, err = g.Generate(context.Background(), testPrompt)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryUnauthenticated, apperrors.CategoryOf(err))
}

func TestAnthropic_Generate(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("X-Api-Key") == "limited" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",
			"content":[{"type":"text","text":"{\"phases\":"},{"type":"text","text":"[]}"}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer server.Close()

	g := NewAnthropic(config.ProviderConfig{APIKey: "ok", Model: "claude-sonnet-4-5", BaseURL: server.URL}, Options{})
	text, err := g.Generate(context.Background(), testPrompt)
	require.NoError(t, err)
	assert.Equal(t, `{"phases":[]}`, text)

	calls = 0
	g = NewAnthropic(config.ProviderConfig{APIKey: "limited", Model: "claude-sonnet-4-5", BaseURL: server.URL}, Options{})
	_, err = g.Generate(context.Background(), testPrompt)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryRateLimited, apperrors.CategoryOf(err))
	assert.Equal(t, 1, calls, "generators must not retry")
}

func TestGeminiStatus(t *testing.T) {
	assert.Equal(t, 429, geminiStatus(fmt.Errorf("generate: %w", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"})))
	assert.Equal(t, 403, geminiStatus(&genai.APIError{Code: 403}))
	assert.Equal(t, 0, geminiStatus(fmt.Errorf("dial tcp: connection refused")))

	err := invocationError("gemini", geminiStatus(genai.APIError{Code: 403}), genai.APIError{Code: 403})
	assert.Equal(t, apperrors.CategoryUnauthenticated, apperrors.CategoryOf(err))
}
