package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type puterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type puterArgs struct {
	Messages []puterMessage `json:"messages"`
	Model    string         `json:"model"`
}

type puterCallRequest struct {
	Interface string    `json:"interface"`
	Driver    string    `json:"driver"`
	Method    string    `json:"method"`
	Args      puterArgs `json:"args"`
}

type puterCallResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Message struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// PuterBackend calls the Puter driver API's chat completion interface
type PuterBackend struct {
	baseURL    string
	authToken  string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPuterBackend creates a Puter backend. An empty baseURL uses PuterAPIURL.
func NewPuterBackend(authToken, baseURL, model string, httpClient *http.Client, logger *slog.Logger) *PuterBackend {
	if baseURL == "" {
		baseURL = PuterAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &PuterBackend{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		authToken:  authToken,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (b *PuterBackend) Name() string  { return ProviderPuter }
func (b *PuterBackend) Model() string { return b.model }

// Generate sends the request to Puter and returns the assistant message text
func (b *PuterBackend) Generate(ctx context.Context, req Request) (string, error) {
	if b.authToken == "" {
		return "", NewValidationError("PUTER_AUTH_TOKEN", "environment variable not set")
	}

	b.logger.DebugContext(ctx, "sending AI request",
		"provider", ProviderPuter,
		"model", b.model,
		"prompt_length", len(req.Prompt))

	body, err := json.Marshal(puterCallRequest{
		Interface: "puter-chat-completion",
		Driver:    puterDriver(b.model),
		Method:    "complete",
		Args: puterArgs{
			Model: b.model,
			Messages: []puterMessage{
				{Role: "system", Content: req.System},
				{Role: "user", Content: req.Prompt},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/drivers/call", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.authToken)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", NewAPIError(ProviderPuter, resp.StatusCode, truncate(respBody), nil)
	}

	var parsed puterCallResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", NewAPIError(ProviderPuter, resp.StatusCode, "invalid response format", err)
	}
	if !parsed.Success {
		msg := "request failed"
		if parsed.Error != nil {
			msg = strings.TrimSpace(parsed.Error.Code + " " + parsed.Error.Message)
		}
		return "", NewAPIError(ProviderPuter, resp.StatusCode, msg, nil)
	}

	content := messageText(parsed.Result.Message.Content)

	b.logger.DebugContext(ctx, "received AI response",
		"provider", ProviderPuter,
		"response_length", len(content))

	return content, nil
}

// puterDriver picks the Puter driver that serves a model family
func puterDriver(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude"):
		return "claude"
	case strings.HasPrefix(m, "gemini"):
		return "gemini"
	case strings.HasPrefix(m, "grok"):
		return "xai"
	case strings.HasPrefix(m, "mistral"), strings.HasPrefix(m, "codestral"):
		return "mistral"
	case strings.HasPrefix(m, "deepseek"):
		return "deepseek"
	default:
		return "openai-completion"
	}
}

// messageText accepts either a plain string or a list of content parts
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, p := range parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}
