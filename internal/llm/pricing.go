package llm

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ModelPricing holds per-million-token pricing and limits for a model.
// Prices are in USD per 1 million tokens, sourced from models.dev.
type ModelPricing struct {
	ModelID            string  `yaml:"-"`
	MaxTokens          int     `yaml:"max_tokens"`            // max output tokens
	ContextWindow      int     `yaml:"context_window"`        // max prompt + output tokens
	InputPerMTok       float64 `yaml:"input_per_mtok"`        // USD per 1M uncached input tokens
	CachedInputPerMTok float64 `yaml:"cached_input_per_mtok"` // USD per 1M cache-read input tokens
	OutputPerMTok      float64 `yaml:"output_per_mtok"`       // USD per 1M output tokens
}

// Cost calculates the total USD cost for the given token counts.
func (p ModelPricing) Cost(inputTokens, cachedTokens, outputTokens int) float64 {
	return float64(inputTokens)/1_000_000*p.InputPerMTok +
		float64(cachedTokens)/1_000_000*p.CachedInputPerMTok +
		float64(outputTokens)/1_000_000*p.OutputPerMTok
}

// Validate checks that no price is negative.
func (p ModelPricing) Validate() error {
	if p.InputPerMTok < 0 || p.CachedInputPerMTok < 0 || p.OutputPerMTok < 0 {
		return fmt.Errorf("model %q: prices must not be negative", p.ModelID)
	}
	if p.MaxTokens < 0 || p.ContextWindow < 0 {
		return fmt.Errorf("model %q: token limits must not be negative", p.ModelID)
	}
	return nil
}

// Catalog is a read-only pricing table keyed by model id.
type Catalog struct {
	models map[string]ModelPricing
}

// NewCatalog builds a catalog from explicit entries. ModelID is filled in
// from the map key.
func NewCatalog(entries map[string]ModelPricing) (*Catalog, error) {
	models := make(map[string]ModelPricing, len(entries))
	for id, p := range entries {
		p.ModelID = id
		if err := p.Validate(); err != nil {
			return nil, err
		}
		models[id] = p
	}
	return &Catalog{models: models}, nil
}

// DefaultCatalog returns the embedded pricing table.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(modelPricing)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the pricing for a model id.
func (c *Catalog) Lookup(modelID string) (ModelPricing, error) {
	p, ok := c.models[modelID]
	if !ok {
		return ModelPricing{}, &UnknownModelError{ModelID: modelID}
	}
	return p, nil
}

// CostOf prices a single call. Missing upstream counts should be passed as 0.
func (c *Catalog) CostOf(modelID string, promptTokens, cachedTokens, completionTokens int) (float64, error) {
	p, err := c.Lookup(modelID)
	if err != nil {
		return 0, err
	}
	return p.Cost(promptTokens, cachedTokens, completionTokens), nil
}

// Models returns all model ids in sorted order.
func (c *Catalog) Models() []string {
	return slices.Sorted(maps.Keys(c.models))
}

// pricingFile is the YAML layout accepted by LoadPricingFile.
type pricingFile struct {
	Models map[string]ModelPricing `yaml:"models"`
}

// LoadPricingFile returns the default catalog with the entries from the
// YAML file at path added or replaced.
func LoadPricingFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}

	var f pricingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pricing file: %w", err)
	}

	merged := maps.Clone(modelPricing)
	maps.Copy(merged, f.Models)
	return NewCatalog(merged)
}

func price(in, cached, out float64, maxTokens, contextWindow int) ModelPricing {
	return ModelPricing{
		MaxTokens:          maxTokens,
		ContextWindow:      contextWindow,
		InputPerMTok:       in,
		CachedInputPerMTok: cached,
		OutputPerMTok:      out,
	}
}

// modelPricing is the embedded pricing table extracted from models.dev.
// Last updated: 2026-02-15.
var modelPricing = map[string]ModelPricing{
	// Anthropic
	"claude-3-5-haiku-20241022":  price(0.8, 0.08, 4, 8192, 200_000),
	"claude-3-5-haiku-latest":    price(0.8, 0.08, 4, 8192, 200_000),
	"claude-3-7-sonnet-20250219": price(3, 0.3, 15, 64_000, 200_000),
	"claude-3-7-sonnet-latest":   price(3, 0.3, 15, 64_000, 200_000),
	"claude-3-haiku-20240307":    price(0.25, 0.03, 1.25, 4096, 200_000),
	"claude-haiku-4-5":           price(1, 0.1, 5, 64_000, 200_000),
	"claude-haiku-4-5-20251001":  price(1, 0.1, 5, 64_000, 200_000),
	"claude-opus-4-1":            price(15, 1.5, 75, 32_000, 200_000),
	"claude-opus-4-1-20250805":   price(15, 1.5, 75, 32_000, 200_000),
	"claude-opus-4-20250514":     price(15, 1.5, 75, 32_000, 200_000),
	"claude-opus-4-5":            price(5, 0.5, 25, 64_000, 200_000),
	"claude-opus-4-5-20251101":   price(5, 0.5, 25, 64_000, 200_000),
	"claude-sonnet-4-0":          price(3, 0.3, 15, 64_000, 200_000),
	"claude-sonnet-4-20250514":   price(3, 0.3, 15, 64_000, 200_000),
	"claude-sonnet-4-5":          price(3, 0.3, 15, 64_000, 200_000),
	"claude-sonnet-4-5-20250929": price(3, 0.3, 15, 64_000, 200_000),

	// OpenAI
	"gpt-3.5-turbo":     price(0.5, 0.5, 1.5, 4096, 16_385),
	"gpt-4-turbo":       price(10, 10, 30, 4096, 128_000),
	"gpt-4.1":           price(2, 0.5, 8, 32_768, 1_047_576),
	"gpt-4.1-mini":      price(0.4, 0.1, 1.6, 32_768, 1_047_576),
	"gpt-4.1-nano":      price(0.1, 0.025, 0.4, 32_768, 1_047_576),
	"gpt-4o":            price(2.5, 1.25, 10, 16_384, 128_000),
	"gpt-4o-2024-08-06": price(2.5, 1.25, 10, 16_384, 128_000),
	"gpt-4o-2024-11-20": price(2.5, 1.25, 10, 16_384, 128_000),
	"gpt-4o-mini":       price(0.15, 0.075, 0.6, 16_384, 128_000),
	"gpt-5":             price(1.25, 0.125, 10, 128_000, 400_000),
	"gpt-5-mini":        price(0.25, 0.025, 2, 128_000, 400_000),
	"gpt-5-nano":        price(0.05, 0.005, 0.4, 128_000, 400_000),
	"gpt-5.1":           price(1.25, 0.125, 10, 128_000, 400_000),
	"o3":                price(2, 0.5, 8, 100_000, 200_000),
	"o3-mini":           price(1.1, 0.55, 4.4, 100_000, 200_000),
	"o4-mini":           price(1.1, 0.275, 4.4, 100_000, 200_000),

	// Google (Gemini)
	"gemini-1.5-flash":      price(0.075, 0.01875, 0.3, 8192, 1_048_576),
	"gemini-1.5-pro":        price(1.25, 0.3125, 5, 8192, 2_097_152),
	"gemini-2.0-flash":      price(0.1, 0.025, 0.4, 8192, 1_048_576),
	"gemini-2.0-flash-lite": price(0.075, 0.075, 0.3, 8192, 1_048_576),
	"gemini-2.5-flash":      price(0.3, 0.075, 2.5, 65_536, 1_048_576),
	"gemini-2.5-flash-lite": price(0.1, 0.025, 0.4, 65_536, 1_048_576),
	"gemini-2.5-pro":        price(1.25, 0.31, 10, 65_536, 1_048_576),
	"gemini-3-pro-preview":  price(2, 0.2, 12, 65_536, 1_048_576),

	// OpenRouter free tier
	"google/gemini-2.0-flash-exp:free": price(0, 0, 0, 8192, 1_048_576),

	// Local
	"mock": price(0, 0, 0, 8192, 8192),
}
