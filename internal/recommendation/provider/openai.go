package provider

import (
	"context"
	"errors"
	"fmt"

	"automation-advisor/internal/common/config"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/prompt"

	"github.com/openai/openai-go/v2"
	openaiopt "github.com/openai/openai-go/v2/option"
)

// OpenAI generates through the chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
	opts   Options
}

func NewOpenAI(cfg config.ProviderConfig, opts Options) *OpenAI {
	reqOpts := []openaiopt.RequestOption{
		openaiopt.WithAPIKey(cfg.APIKey),
		openaiopt.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, openaiopt.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{client: openai.NewClient(reqOpts...), model: cfg.Model, opts: opts}
}

func (o *OpenAI) Name() string { return models.ProviderOpenAI }

func (o *OpenAI) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		Temperature: openai.Float(o.opts.Temperature),
	}
	if o.opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.opts.MaxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", invocationError(o.Name(), apiErr.StatusCode, err)
		}
		return "", invocationError(o.Name(), 0, err)
	}
	if len(resp.Choices) == 0 {
		return "", invocationError(o.Name(), 0, fmt.Errorf("response has no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
