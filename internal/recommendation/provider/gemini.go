package provider

import (
	"context"
	"errors"
	"fmt"

	"automation-advisor/internal/common/config"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/prompt"

	"google.golang.org/genai"
)

// Gemini generates through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	opts   Options
}

func NewGemini(ctx context.Context, cfg config.ProviderConfig, opts Options) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, opts: opts}, nil
}

func (g *Gemini) Name() string { return models.ProviderGemini }

func (g *Gemini) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.opts.Temperature)),
	}
	if g.opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(g.opts.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.User), genCfg)
	if err != nil {
		return "", invocationError(g.Name(), geminiStatus(err), err)
	}
	text := resp.Text()
	if text == "" {
		return "", invocationError(g.Name(), 0, fmt.Errorf("response has no text"))
	}
	return text, nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
