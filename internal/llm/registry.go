package llm

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/wikiquiz/internal/store"
)

// Factory builds a bare provider for the given model. An empty model means
// the provider's configured default.
type Factory func(ctx context.Context, cfg Config, model string) (Provider, error)

// Registry maps provider names to factories and builds decorated providers
// on demand. Providers are built per call from immutable config, so a
// Registry is safe for concurrent use once registration is done.
type Registry struct {
	cfg       Config
	eventRepo store.EventRepo
	logger    *zap.Logger

	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in providers registered.
// eventRepo and logger may be nil.
func NewRegistry(cfg Config, eventRepo store.EventRepo, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		cfg:       cfg,
		eventRepo: eventRepo,
		logger:    logger,
		factories: make(map[string]Factory),
	}

	r.Register(ProviderAnthropic, func(_ context.Context, cfg Config, model string) (Provider, error) {
		c := cfg.Anthropic
		if model != "" {
			c.Model = model
		}
		return NewAnthropicProvider(c)
	})
	r.Register(ProviderOpenAI, func(_ context.Context, cfg Config, model string) (Provider, error) {
		c := cfg.OpenAI
		if model != "" {
			c.Model = model
		}
		return NewOpenAIProvider(c)
	})
	r.Register(ProviderGemini, func(ctx context.Context, cfg Config, model string) (Provider, error) {
		c := cfg.Gemini
		if model != "" {
			c.Model = model
		}
		return NewGeminiProvider(ctx, c)
	})
	r.Register(ProviderOpenRouter, func(_ context.Context, cfg Config, model string) (Provider, error) {
		c := cfg.OpenRouter
		if model != "" {
			c.Model = model
		}
		return NewOpenRouterProvider(c)
	})
	r.Register(ProviderMock, func(_ context.Context, _ Config, model string) (Provider, error) {
		if model == "" {
			return NewMockProvider(), nil
		}
		return NewMockProviderForModel(model), nil
	})

	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// DefaultProvider returns the provider used when a request names none.
func (r *Registry) DefaultProvider() string {
	return r.cfg.Provider
}

// Provider builds the named provider for model, wrapped with middleware:
// caller → timeout → retry → logging → base.
// An empty name selects the configured default provider.
func (r *Registry) Provider(ctx context.Context, name, model string) (Provider, error) {
	if name == "" {
		name = r.cfg.Provider
	}

	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	base, err := f(ctx, r.cfg, model)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}

	logged := WithLogging(base, name, r.eventRepo, r.logger)
	retried := WithRetry(logged, r.cfg.Retry)
	return WithTimeout(retried, r.cfg.Timeout), nil
}

// friendlyModels holds each provider's friendly-name table. OpenRouter and
// the mock take model ids verbatim.
var friendlyModels = map[string]map[string]string{
	ProviderAnthropic: anthropicModels,
	ProviderOpenAI:    openaiModels,
	ProviderGemini:    geminiModels,
}

// ResolveModelID maps a friendly model name to the id the provider will be
// called with. With an empty provider every table is searched. Unknown
// names come back unchanged.
func ResolveModelID(provider, model string) string {
	if provider != "" {
		if models, ok := friendlyModels[provider]; ok {
			return resolveModel(model, models)
		}
		return model
	}
	for _, name := range slices.Sorted(maps.Keys(friendlyModels)) {
		if id, ok := friendlyModels[name][model]; ok {
			return id
		}
	}
	return model
}
