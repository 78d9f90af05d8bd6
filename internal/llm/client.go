// Package llm wraps the Chat Completions transport behind the harness's
// prompt-in, text-out contract. Auth, TLS, and connection retries live
// in the underlying client; the runner only sees success or failure.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL targets OpenRouter, which fronts every provider the
	// evals are run against behind one Chat Completions endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// 0 breaks some providers, so just set it super low.
	defaultTemperature = 0.001

	// answers are a single number or move, so keep completions tiny
	defaultMaxTokens = 10
)

// Config carries the transport settings.
type Config struct {
	BaseURL   string
	APIKey    string
	MaxTokens int
}

// Client is a thin completion client for evaluation prompts.
type Client struct {
	api       *openai.Client
	maxTokens int
}

// New builds a client. An empty base URL falls back to OpenRouter.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	if oc.BaseURL == "" {
		oc.BaseURL = DefaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{api: openai.NewClientWithConfig(oc), maxTokens: maxTokens}, nil
}

// Complete sends one prompt and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: defaultTemperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion: model %q returned no choices", model)
	}
	slog.Debug("model responded", "model", model, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// Caller binds the client to one model, yielding the prompt→response
// function the runner consumes.
func (c *Client) Caller(model string) func(ctx context.Context, prompt string) (string, error) {
	return func(ctx context.Context, prompt string) (string, error) {
		return c.Complete(ctx, model, prompt)
	}
}
