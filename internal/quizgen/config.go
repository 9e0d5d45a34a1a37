package quizgen

const (
	MinQuestions = 1
	MaxQuestions = 35

	DefaultOptions = 4
	MaxOptions     = 5
)

// Config controls the behavior of the Engine.
type Config struct {
	// MaxTokens caps the response token budget regardless of the
	// question count.
	MaxTokens int `yaml:"max_tokens"`

	// TokensPerQuestion sizes the response budget: 256 plus this much per
	// requested question, capped at MaxTokens.
	TokensPerQuestion int `yaml:"tokens_per_question"`

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`

	MinOptions int `yaml:"min_options"`
	MaxOptions int `yaml:"max_options"`
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         8192,
		TokensPerQuestion: 200,
		Temperature:       0.7,
		MinOptions:        2,
		MaxOptions:        5,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.TokensPerQuestion <= 0 {
		c.TokensPerQuestion = def.TokensPerQuestion
	}
	if c.MinOptions < def.MinOptions {
		c.MinOptions = def.MinOptions
	}
	if c.MaxOptions <= 0 || c.MaxOptions > def.MaxOptions {
		c.MaxOptions = def.MaxOptions
	}
	if c.MinOptions > c.MaxOptions {
		c.MinOptions = c.MaxOptions
	}
	return c
}

// responseBudget returns the max tokens to request for n questions.
func (c Config) responseBudget(n int) int {
	return min(c.MaxTokens, 256+c.TokensPerQuestion*n)
}

func clampQuestions(n int) int {
	return max(MinQuestions, min(n, MaxQuestions))
}

func (c Config) clampOptions(n int) int {
	if n == 0 {
		n = DefaultOptions
	}
	return max(c.MinOptions, min(n, c.MaxOptions))
}
