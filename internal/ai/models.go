package ai

import (
	"regexp"
	"strings"
	"time"
)

// Provider and model constants
const (
	ProviderPuter  = "puter"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderGrok   = "grok"

	DefaultProvider    = ProviderPuter
	DefaultPuterModel  = "gpt-5-nano"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o"
	DefaultGrokModel   = "grok-3"
	DefaultMaxTokens   = 200
	DefaultTimeout     = 60 * time.Second
)

// API endpoints for the OpenAI-compatible providers and Puter
const (
	GroqBaseURL = "https://api.groq.com/openai/v1"
	XAIBaseURL  = "https://api.x.ai/v1"
	PuterAPIURL = "https://api.puter.com"
)

var defaultModels = map[string]string{
	ProviderPuter:  DefaultPuterModel,
	ProviderGroq:   DefaultGroqModel,
	ProviderGemini: DefaultGeminiModel,
	ProviderOpenAI: DefaultOpenAIModel,
	ProviderGrok:   DefaultGrokModel,
}

// Expected model naming per provider. A name outside its pattern is almost
// always a copy-paste from another backend's config.
var modelPatterns = map[string]*regexp.Regexp{
	ProviderPuter:  regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/-]*$`),
	ProviderGroq:   regexp.MustCompile(`^[a-z0-9][a-z0-9._/-]*$`),
	ProviderGemini: regexp.MustCompile(`^(models/)?gemini-[a-z0-9.-]+$`),
	ProviderOpenAI: regexp.MustCompile(`^(gpt-|o[0-9]|chatgpt-)[a-z0-9.-]*$`),
	ProviderGrok:   regexp.MustCompile(`^grok-[a-z0-9.-]+$`),
}

// DefaultModel returns the default model for a provider, or "" for an unknown provider
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// ResolveModel returns the model to use for provider. An empty name yields the
// provider default. A name that does not match the provider's naming pattern is
// replaced by the default and fellBack is true.
func ResolveModel(provider, model string) (resolved string, fellBack bool) {
	model = strings.TrimSpace(model)
	def := DefaultModel(provider)
	if model == "" {
		return def, false
	}

	pattern, ok := modelPatterns[provider]
	if !ok || pattern.MatchString(model) {
		return model, false
	}
	return def, true
}
