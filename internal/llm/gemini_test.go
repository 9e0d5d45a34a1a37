package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"age":   map[string]any{"type": "integer"},
			"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"scores": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "integer", "minimum": 0},
				"minItems": 2,
				"maxItems": 5,
			},
		},
		"required": []any{"name", "age"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["name"].Type != "STRING" {
		t.Fatalf("expected STRING for name, got %s", schema.Properties["name"].Type)
	}
	if schema.Properties["age"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for age, got %s", schema.Properties["age"].Type)
	}
	if len(schema.Properties["grade"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["grade"].Enum))
	}
	if schema.Properties["scores"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for scores, got %s", schema.Properties["scores"].Type)
	}
	if schema.Properties["scores"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for scores items, got %s", schema.Properties["scores"].Items.Type)
	}
	if s := schema.Properties["scores"]; s.MinItems == nil || *s.MinItems != 2 || s.MaxItems == nil || *s.MaxItems != 5 {
		t.Fatalf("expected minItems 2 and maxItems 5 on scores")
	}
	if m := schema.Properties["scores"].Items.Minimum; m == nil || *m != 0 {
		t.Fatalf("expected minimum 0 on scores items")
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestMapGeminiUsage(t *testing.T) {
	u := mapGeminiUsage(&genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:        1200,
		CachedContentTokenCount: 200,
		CandidatesTokenCount:    300,
		TotalTokenCount:         1500,
	})
	if u.InputTokens != 1000 || u.CachedInputTokens != 200 || u.OutputTokens != 300 || u.TotalTokens != 1500 {
		t.Errorf("unexpected usage: %+v", u)
	}
}

func TestMapGeminiUsage_NoTotal(t *testing.T) {
	u := mapGeminiUsage(&genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     100,
		CandidatesTokenCount: 50,
	})
	if u.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", u.TotalTokens)
	}
}
