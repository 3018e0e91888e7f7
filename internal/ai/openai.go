package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// ChatCompletionBackend talks to any OpenAI-compatible chat completions API.
// OpenAI, Groq and xAI Grok differ only in base URL and model naming.
type ChatCompletionBackend struct {
	provider  string
	model     string
	maxTokens int
	client    *openai.Client
	logger    *slog.Logger
}

// NewChatCompletionBackend creates a backend for provider. An empty baseURL keeps the go-openai default.
func NewChatCompletionBackend(provider, apiKey, baseURL, model string, maxTokens int, httpClient *http.Client, logger *slog.Logger) *ChatCompletionBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &ChatCompletionBackend{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
		client:    openai.NewClientWithConfig(cfg),
		logger:    logger,
	}
}

func (b *ChatCompletionBackend) Name() string  { return b.provider }
func (b *ChatCompletionBackend) Model() string { return b.model }

// Generate sends a system + user chat completion and returns the first choice
func (b *ChatCompletionBackend) Generate(ctx context.Context, req Request) (string, error) {
	b.logger.DebugContext(ctx, "sending AI request",
		"provider", b.provider,
		"model", b.model,
		"max_tokens", b.maxTokens,
		"prompt_length", len(req.Prompt))

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
	})
	if err != nil {
		return "", NewAPIError(b.provider, statusCode(err), "chat completion failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", NewAPIError(b.provider, http.StatusOK, "no choices in response", nil)
	}

	b.logger.DebugContext(ctx, "received AI response",
		"provider", b.provider,
		"response_length", len(resp.Choices[0].Message.Content),
		"finish_reason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

// statusCode extracts the HTTP status go-openai attaches to its errors
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
