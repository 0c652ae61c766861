package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"automation-advisor/internal/common/config"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/prompt"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 4096

// Anthropic generates through the Messages API.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
	opts   Options
}

func NewAnthropic(cfg config.ProviderConfig, opts Options) *Anthropic {
	reqOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(cfg.APIKey),
		anthropicopt.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, anthropicopt.WithBaseURL(cfg.BaseURL))
	}
	return &Anthropic{client: anthropic.NewClient(reqOpts...), model: anthropic.Model(cfg.Model), opts: opts}
}

func (a *Anthropic) Name() string { return models.ProviderAnthropic }

func (a *Anthropic) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	maxTokens := int64(a.opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: p.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
		Temperature: anthropic.Float(a.opts.Temperature),
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", invocationError(a.Name(), apiErr.StatusCode, err)
		}
		return "", invocationError(a.Name(), 0, err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", invocationError(a.Name(), 0, fmt.Errorf("response has no text blocks"))
	}
	return sb.String(), nil
}
