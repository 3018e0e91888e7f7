package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Dmetrikx/neesa/internal/ai"
)

// Backend names accepted by AI_BACKEND
const (
	BackendPuter  = ai.ProviderPuter
	BackendGroq   = ai.ProviderGroq
	BackendGemini = ai.ProviderGemini
	BackendOpenAI = ai.ProviderOpenAI
	BackendGrok   = ai.ProviderGrok

	// DefaultBackend applies when AI_BACKEND is unset
	DefaultBackend = ai.DefaultProvider
)

// Reply delivery modes accepted by REPLY_MODE
const (
	ReplyModeReply = "reply"
	ReplyModeSend  = "send"
)

// Config holds all configuration values
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN" validate:"required"`
	TargetUserID string `env:"TARGET_ID"`

	Backend        string        `env:"AI_BACKEND" validate:"oneof=puter groq gemini openai grok"`
	PuterAuthToken string        `env:"PUTER_AUTH_TOKEN"`
	PuterModel     string        `env:"PUTER_MODEL"`
	GroqAPIKey     string        `env:"GROQ_API_KEY"`
	GroqModel      string        `env:"GROQ_MODEL"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL"`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"`
	OpenAIModel    string        `env:"OPENAI_MODEL"`
	XAIAPIKey      string        `env:"XAI_API_KEY"`
	GrokModel      string        `env:"GROK_MODEL"`
	AITimeout      time.Duration `env:"AI_TIMEOUT" envDefault:"60s" validate:"min=1s,max=10m"`
	AIMaxTokens    int           `env:"AI_MAX_TOKENS" envDefault:"200" validate:"gt=0"`

	TriggerPrefix    string   `env:"TRIGGER_PREFIX" envDefault:"?!"`
	TriggerKeywords  []string `env:"TRIGGER_KEYWORDS" envSeparator:","`
	AllowedAuthorIDs []string `env:"ALLOWED_AUTHOR_IDS" envSeparator:","`

	ReplyMode        string        `env:"REPLY_MODE" envDefault:"reply" validate:"oneof=reply send"`
	HumanizeDelayMin time.Duration `env:"HUMANIZE_DELAY_MIN" envDefault:"0s" validate:"min=0"`
	HumanizeDelayMax time.Duration `env:"HUMANIZE_DELAY_MAX" envDefault:"0s" validate:"gtefield=HumanizeDelayMin"`
	MinReplyLength   int           `env:"MIN_REPLY_LENGTH" envDefault:"2" validate:"min=0"`
	PersonaFile      string        `env:"PERSONA_FILE"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
}

// LoadConfig loads environment variables from .env file and returns a Config struct
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional - may not exist in production)
	_ = godotenv.Load(".env")

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if config.Backend == "" {
		config.Backend = DefaultBackend
	}

	// Older deployments used TOKEN for the bot credential
	if config.DiscordToken == "" {
		config.DiscordToken = os.Getenv("TOKEN")
	}

	return config, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return NewConfigError(envName(fe.StructField()), fmt.Sprintf("failed %q check", fe.Tag()))
		}
		return NewConfigError("config", err.Error())
	}

	apiKey, _ := c.BackendCredentials()
	if apiKey == "" {
		return NewConfigError(credentialEnv[c.Backend], fmt.Sprintf("environment variable is required for backend %s", c.Backend))
	}

	return nil
}

var credentialEnv = map[string]string{
	BackendPuter:  "PUTER_AUTH_TOKEN",
	BackendGroq:   "GROQ_API_KEY",
	BackendGemini: "GEMINI_API_KEY",
	BackendOpenAI: "OPENAI_API_KEY",
	BackendGrok:   "XAI_API_KEY",
}

// BackendCredentials returns the API key and configured model for the active backend.
// The model may be empty, in which case the backend default applies.
func (c *Config) BackendCredentials() (apiKey, model string) {
	switch c.Backend {
	case BackendPuter:
		return c.PuterAuthToken, c.PuterModel
	case BackendGroq:
		return c.GroqAPIKey, c.GroqModel
	case BackendGemini:
		return c.GeminiAPIKey, c.GeminiModel
	case BackendOpenAI:
		return c.OpenAIAPIKey, c.OpenAIModel
	case BackendGrok:
		return c.XAIAPIKey, c.GrokModel
	default:
		return "", ""
	}
}

// envName maps a Config field name to the environment variable it is read from
func envName(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	if name := f.Tag.Get("env"); name != "" {
		return name
	}
	return field
}
