package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Safety filters are off for persona replies
var geminiSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// GeminiBackend implements Backend using the Google Gen AI SDK
type GeminiBackend struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiBackend creates a Gemini API client. An empty baseURL keeps the SDK default.
func NewGeminiBackend(ctx context.Context, apiKey, baseURL, model string, httpClient *http.Client, logger *slog.Logger) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, NewValidationError("GEMINI_API_KEY", "environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiBackend{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (b *GeminiBackend) Name() string  { return ProviderGemini }
func (b *GeminiBackend) Model() string { return b.model }

// Generate sends the prompt with the persona as system instruction
func (b *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	b.logger.DebugContext(ctx, "sending AI request",
		"provider", ProviderGemini,
		"model", b.model,
		"prompt_length", len(req.Prompt))

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: req.Prompt}},
		},
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
		SafetySettings:    geminiSafetySettings,
	})
	if err != nil {
		return "", NewAPIError(ProviderGemini, geminiStatusCode(err), "generate content failed", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", NewAPIError(ProviderGemini, http.StatusOK, "no candidates in response", nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}

	b.logger.DebugContext(ctx, "received AI response",
		"provider", ProviderGemini,
		"response_length", sb.Len(),
		"finish_reason", resp.Candidates[0].FinishReason)

	return sb.String(), nil
}

// geminiStatusCode extracts the HTTP status the SDK attaches to its errors
func geminiStatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
