package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Options selects and configures a backend at startup
type Options struct {
	Provider  string
	APIKey    string
	Model     string
	Timeout   time.Duration
	MaxTokens int

	// BaseURL overrides the provider endpoint; used by tests and self-hosted proxies
	BaseURL string
}

// NewBackend creates the backend named by opts.Provider.
// The HTTP client timeout is the only deadline applied to backend calls.
func NewBackend(ctx context.Context, opts Options, logger *slog.Logger) (Backend, error) {
	if opts.APIKey == "" {
		return nil, NewValidationError("api_key", fmt.Sprintf("no API key for backend %s", opts.Provider))
	}

	model, fellBack := ResolveModel(opts.Provider, opts.Model)
	if fellBack {
		logger.WarnContext(ctx, "model name does not match backend, using default",
			"provider", opts.Provider,
			"configured_model", opts.Model,
			"model", model)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	httpClient := &http.Client{Timeout: timeout}

	logger.InfoContext(ctx, "initializing AI backend",
		"provider", opts.Provider,
		"model", model,
		"timeout", timeout)

	switch opts.Provider {
	case ProviderPuter:
		return NewPuterBackend(opts.APIKey, opts.BaseURL, model, httpClient, logger), nil
	case ProviderGroq:
		return NewChatCompletionBackend(ProviderGroq, opts.APIKey, orDefault(opts.BaseURL, GroqBaseURL), model, maxTokens, httpClient, logger), nil
	case ProviderGrok:
		return NewChatCompletionBackend(ProviderGrok, opts.APIKey, orDefault(opts.BaseURL, XAIBaseURL), model, maxTokens, httpClient, logger), nil
	case ProviderOpenAI:
		return NewChatCompletionBackend(ProviderOpenAI, opts.APIKey, opts.BaseURL, model, maxTokens, httpClient, logger), nil
	case ProviderGemini:
		backend, err := NewGeminiBackend(ctx, opts.APIKey, opts.BaseURL, model, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini backend: %w", err)
		}
		return backend, nil
	default:
		return nil, NewValidationError("AI_BACKEND", fmt.Sprintf("unknown backend %q", opts.Provider))
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
