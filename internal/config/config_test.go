package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wikiquiz/internal/llm"
)

// isolate points every lookup Load performs at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, k := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"WIKIQUIZ_LLM_PROVIDER", "WIKIQUIZ_OPENAI_API_KEY", "WIKIQUIZ_OPENAI_MODEL",
		"WIKIQUIZ_ANTHROPIC_API_KEY", "WIKIQUIZ_GEMINI_API_KEY", "WIKIQUIZ_OPENROUTER_API_KEY",
		"WIKIQUIZ_LLM_TIMEOUT", "WIKIQUIZ_LLM_MAX_ATTEMPTS", "WIKIQUIZ_TEST_KEY",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, def.Wiki, cfg.Wiki)
	assert.Equal(t, def.Generation, cfg.Generation)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.LLM.HasAnyKey())
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	dir := isolate(t)
	t.Setenv("WIKIQUIZ_TEST_KEY", "sk-from-env")

	path := filepath.Join(dir, "wikiquiz.yaml")
	writeFile(t, path, `
llm:
  provider: anthropic
  anthropic:
    api_key: ${WIKIQUIZ_TEST_KEY}
    model: claude-sonnet
  timeout: 30s
wiki:
  user_agent: test-agent/1.0
  link_limit: 10
generation:
  max_tokens: 4000
  temperature: 0.2
pricing_file: prices.yaml
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "sk-from-env", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Anthropic.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	// Untouched sections keep their defaults.
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)

	assert.Equal(t, "test-agent/1.0", cfg.Wiki.UserAgent)
	assert.Equal(t, 10, cfg.Wiki.LinkLimit)
	assert.Equal(t, "https://%s.wikipedia.org/w/api.php", cfg.Wiki.BaseURLTemplate)

	assert.Equal(t, 4000, cfg.Generation.MaxTokens)
	assert.Equal(t, 0.2, cfg.Generation.Temperature)
	assert.Equal(t, 200, cfg.Generation.TokensPerQuestion)

	assert.Equal(t, "prices.yaml", cfg.PricingFile)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DefaultPath(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "xdg", "wikiquiz", "config.yaml"), "llm:\n  provider: mock\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.yaml")
	writeFile(t, path, "llm:\n  provider: gemini\n  openai:\n    model: gpt-4o\n")
	t.Setenv("WIKIQUIZ_LLM_PROVIDER", "openai")
	t.Setenv("WIKIQUIZ_OPENAI_MODEL", "gpt-4.1")
	t.Setenv("WIKIQUIZ_LLM_MAX_ATTEMPTS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4.1", cfg.LLM.OpenAI.Model)
	assert.Equal(t, 5, cfg.LLM.Retry.MaxAttempts)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "WIKIQUIZ_GEMINI_API_KEY=gm-dotenv\nWIKIQUIZ_LLM_PROVIDER=gemini\n")
	// godotenv does not override variables that are already set, and
	// isolate sets them to "". Unset them so .env can fill them.
	os.Unsetenv("WIKIQUIZ_GEMINI_API_KEY")
	os.Unsetenv("WIKIQUIZ_LLM_PROVIDER")
	t.Cleanup(func() {
		os.Unsetenv("WIKIQUIZ_GEMINI_API_KEY")
		os.Unsetenv("WIKIQUIZ_LLM_PROVIDER")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gm-dotenv", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
}

func TestLoad_DiscoversStandardKeys(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "sk-or", cfg.LLM.OpenRouter.APIKey)
}

func TestLoad_DiscoveryKeepsExplicitProvider(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("WIKIQUIZ_LLM_PROVIDER", "mock")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.Anthropic.APIKey)
}

func TestLoad_ConfiguredKeySkipsDiscovery(t *testing.T) {
	isolate(t)
	t.Setenv("WIKIQUIZ_OPENAI_API_KEY", "sk-wq")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Empty(t, cfg.LLM.Anthropic.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "llm: [unclosed"},
		{"bad log level", "log_level: loud"},
		{"unknown provider", "llm:\n  provider: skynet"},
		{"option bounds", "generation:\n  min_options: 5\n  max_options: 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "c.yaml")
			writeFile(t, path, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	_, err = cat.Lookup("gpt-4o-mini")
	require.NoError(t, err)

	prices := filepath.Join(dir, "prices.yaml")
	writeFile(t, prices, "models:\n  house-model:\n    input_per_mtok: 1\n    output_per_mtok: 2\n")
	cfg.PricingFile = prices

	cat, err = cfg.Catalog()
	require.NoError(t, err)
	cost, err := cat.CostOf("house-model", 1_000_000, 0, 1_000_000)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, cost, 1e-9)

	cfg.PricingFile = filepath.Join(dir, "missing.yaml")
	_, err = cfg.Catalog()
	assert.Error(t, err)
}
