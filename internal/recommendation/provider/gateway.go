package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"automation-advisor/internal/common/config"
	apphttp "automation-advisor/internal/common/http"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/prompt"
)

const gatewayPath = "/api/ai/generate"

// Gateway posts prompts to an internal generation service that fronts one
// or more model vendors.
type Gateway struct {
	client  *apphttp.Client
	baseURL string
	apiKey  string
	model   string
	opts    Options
}

// NewGateway creates the gateway generator. A zero timeout relies on the
// request context only.
func NewGateway(cfg config.ProviderConfig, opts Options, timeout time.Duration) *Gateway {
	return &Gateway{
		client:  apphttp.NewClient(timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		opts:    opts,
	}
}

func (g *Gateway) Name() string { return models.ProviderGateway }

type gatewayRequest struct {
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type gatewayResponse struct {
	Text string `json:"text"`
}

func (g *Gateway) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	body := gatewayRequest{
		System:      p.System,
		Prompt:      p.User,
		Model:       g.model,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}

	resp, err := g.client.PostJSON(ctx, g.baseURL+gatewayPath, headers, body)
	if err != nil {
		return "", invocationError(g.Name(), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", invocationError(g.Name(), resp.StatusCode,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var out gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", invocationError(g.Name(), 0, fmt.Errorf("decode error: %w", err))
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", invocationError(g.Name(), 0, fmt.Errorf("empty response text"))
	}
	return out.Text, nil
}
