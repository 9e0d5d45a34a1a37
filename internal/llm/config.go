package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names understood by the registry.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use when a request names none.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 60s.
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "claude-haiku"
	BaseURL string `yaml:"base_url"` // Optional.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"` // Default: "gemini-flash"
	BaseURL string `yaml:"base_url"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.0-flash-exp:free"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderOpenAI,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model:   "google/gemini-2.0-flash-exp:free",
			BaseURL: "https://openrouter.ai/api/v1",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overrides cfg with any WIKIQUIZ_* variables that are set.
func ApplyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Provider, "WIKIQUIZ_LLM_PROVIDER")

	setString(&cfg.Anthropic.APIKey, "WIKIQUIZ_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "WIKIQUIZ_ANTHROPIC_MODEL")

	setString(&cfg.OpenAI.APIKey, "WIKIQUIZ_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "WIKIQUIZ_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "WIKIQUIZ_OPENAI_BASE_URL")

	setString(&cfg.Gemini.APIKey, "WIKIQUIZ_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "WIKIQUIZ_GEMINI_MODEL")

	setString(&cfg.OpenRouter.APIKey, "WIKIQUIZ_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "WIKIQUIZ_OPENROUTER_MODEL")

	if v := os.Getenv("WIKIQUIZ_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("WIKIQUIZ_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxAttempts = n
		}
	}
}

// HasAnyKey reports whether any provider has an API key configured.
func (c Config) HasAnyKey() bool {
	return c.Anthropic.APIKey != "" || c.OpenAI.APIKey != "" ||
		c.Gemini.APIKey != "" || c.OpenRouter.APIKey != ""
}

// DiscoverConfig probes standard API key env vars in priority order
// (OpenAI → Gemini → Anthropic → OpenRouter) and fills in keys for every
// provider it finds. The first one found becomes the default provider.
// Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	found := ""

	probe := func(name, key string, dst *string) {
		if k := os.Getenv(key); k != "" {
			*dst = k
			if found == "" {
				found = name
			}
		}
	}
	probe(ProviderOpenAI, "OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	probe(ProviderGemini, "GEMINI_API_KEY", &cfg.Gemini.APIKey)
	probe(ProviderAnthropic, "ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey)
	probe(ProviderOpenRouter, "OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey)

	if found == "" {
		return Config{}, false
	}
	cfg.Provider = found
	return cfg, true
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	return c.ValidateProvider(c.Provider)
}

// ValidateProvider checks that the named provider is known and has its
// API key set.
func (c Config) ValidateProvider(name string) error {
	switch name {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("WIKIQUIZ_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("WIKIQUIZ_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("WIKIQUIZ_GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("WIKIQUIZ_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return nil
}
