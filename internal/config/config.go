// Package config loads wikiquiz configuration from an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/wikiquiz/internal/llm"
	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/wiki"
)

// Config is the complete application configuration.
type Config struct {
	LLM        llm.Config     `yaml:"llm"`
	Wiki       wiki.Config    `yaml:"wiki"`
	Generation quizgen.Config `yaml:"generation"`

	// PricingFile is an optional YAML file of model price overrides.
	PricingFile string `yaml:"pricing_file"`

	// LogLevel is a zap level name. Default: "warn".
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM:        llm.DefaultConfig(),
		Wiki:       wiki.DefaultConfig(),
		Generation: quizgen.DefaultConfig(),
		LogLevel:   "warn",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/wikiquiz/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "wikiquiz", "config.yaml"), nil
}

// Load builds the configuration in this order, later steps winning:
// built-in defaults, the YAML file, WIKIQUIZ_* environment variables.
// A .env file in the working directory is loaded into the environment
// first. When no API key is configured anywhere, the standard provider
// variables (OPENAI_API_KEY and friends) are used.
//
// An empty path means DefaultPath, which may be absent. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.LLM.Provider = ""

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	setDefaults(&cfg)
	llm.ApplyEnv(&cfg.LLM)

	if !cfg.LLM.HasAnyKey() {
		if found, ok := llm.DiscoverConfig(); ok {
			cfg.LLM.OpenAI.APIKey = found.OpenAI.APIKey
			cfg.LLM.Gemini.APIKey = found.Gemini.APIKey
			cfg.LLM.Anthropic.APIKey = found.Anthropic.APIKey
			cfg.LLM.OpenRouter.APIKey = found.OpenRouter.APIKey
			if cfg.LLM.Provider == "" {
				cfg.LLM.Provider = found.Provider
			}
		}
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.DefaultConfig().Provider
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late. Missing API keys
// are not checked here; the provider chosen at request time reports them.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	switch c.LLM.Provider {
	case llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderOpenRouter, llm.ProviderMock:
	default:
		return fmt.Errorf("%w: %q", llm.ErrUnknownProvider, c.LLM.Provider)
	}
	if c.Generation.MinOptions > c.Generation.MaxOptions {
		return fmt.Errorf("generation: min_options %d exceeds max_options %d",
			c.Generation.MinOptions, c.Generation.MaxOptions)
	}
	return nil
}

// Catalog returns the default pricing catalog merged with PricingFile.
func (c *Config) Catalog() (*llm.Catalog, error) {
	if c.PricingFile == "" {
		return llm.DefaultCatalog(), nil
	}
	cat, err := llm.LoadPricingFile(c.PricingFile)
	if err != nil {
		return nil, fmt.Errorf("load pricing file: %w", err)
	}
	return cat, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// setDefaults restores defaults for fields a config file zeroed out.
func setDefaults(cfg *Config) {
	def := Default()

	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}

	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = def.LLM.Timeout
	}
	if cfg.LLM.Retry.MaxAttempts <= 0 {
		cfg.LLM.Retry.MaxAttempts = def.LLM.Retry.MaxAttempts
	}
	if cfg.LLM.Retry.InitialWait <= 0 {
		cfg.LLM.Retry.InitialWait = def.LLM.Retry.InitialWait
	}
	if cfg.LLM.Retry.MaxWait <= 0 {
		cfg.LLM.Retry.MaxWait = def.LLM.Retry.MaxWait
	}
	if cfg.LLM.Retry.Multiplier < 1 {
		cfg.LLM.Retry.Multiplier = def.LLM.Retry.Multiplier
	}

	if cfg.Wiki.BaseURLTemplate == "" {
		cfg.Wiki.BaseURLTemplate = def.Wiki.BaseURLTemplate
	}
	if cfg.Wiki.UserAgent == "" {
		cfg.Wiki.UserAgent = def.Wiki.UserAgent
	}
	if cfg.Wiki.Timeout <= 0 {
		cfg.Wiki.Timeout = def.Wiki.Timeout
	}
	if cfg.Wiki.LinkLimit <= 0 {
		cfg.Wiki.LinkLimit = def.Wiki.LinkLimit
	}
	if cfg.Wiki.MaxAttempts <= 0 {
		cfg.Wiki.MaxAttempts = def.Wiki.MaxAttempts
	}
	if cfg.Wiki.InitialBackoff <= 0 {
		cfg.Wiki.InitialBackoff = def.Wiki.InitialBackoff
	}
	if cfg.Wiki.MaxBackoff <= 0 {
		cfg.Wiki.MaxBackoff = def.Wiki.MaxBackoff
	}

	if cfg.Generation.MaxTokens <= 0 {
		cfg.Generation.MaxTokens = def.Generation.MaxTokens
	}
	if cfg.Generation.TokensPerQuestion <= 0 {
		cfg.Generation.TokensPerQuestion = def.Generation.TokensPerQuestion
	}
	if cfg.Generation.MinOptions <= 0 {
		cfg.Generation.MinOptions = def.Generation.MinOptions
	}
	if cfg.Generation.MaxOptions <= 0 {
		cfg.Generation.MaxOptions = def.Generation.MaxOptions
	}
}
