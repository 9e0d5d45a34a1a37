package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-question",
		Description: "A quiz question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "minLength": 1},
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 2,
					"maxItems": 5,
				},
				"correctAnswerIndex": map[string]any{"type": "integer", "minimum": 0},
			},
			"required": []any{"text", "options", "correctAnswerIndex"},
		},
	}
}

func TestValidateJSON_Valid(t *testing.T) {
	raw := []byte(`{"text":"Capital of Italy?","options":["Rome","Milan"],"correctAnswerIndex":0}`)
	if err := ValidateJSON(testSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing required", `{"text":"Q?","options":["a","b"]}`},
		{"wrong type", `{"text":"Q?","options":["a","b"],"correctAnswerIndex":"zero"}`},
		{"too few options", `{"text":"Q?","options":["a"],"correctAnswerIndex":0}`},
		{"too many options", `{"text":"Q?","options":["a","b","c","d","e","f"],"correctAnswerIndex":0}`},
		{"negative index", `{"text":"Q?","options":["a","b"],"correctAnswerIndex":-1}`},
		{"empty text", `{"text":"","options":["a","b"],"correctAnswerIndex":0}`},
		{"malformed", `{not json}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(testSchema(), []byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
			if invErr.Content != tt.raw {
				t.Errorf("Content = %q, want %q", invErr.Content, tt.raw)
			}
		})
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	if err := ValidateJSON(nil, []byte(`not even json`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateValue_DecodedItem(t *testing.T) {
	var v any
	if err := json.Unmarshal([]byte(`{"text":"Q?","options":["a","b","c"],"correctAnswerIndex":2}`), &v); err != nil {
		t.Fatal(err)
	}
	if err := ValidateValue(testSchema(), v); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if err := json.Unmarshal([]byte(`{"text":"Q?","options":"a,b"}`), &v); err != nil {
		t.Fatal(err)
	}
	if err := ValidateValue(testSchema(), v); err == nil {
		t.Fatal("expected error for malformed item")
	}
}

func TestValidateJSON_ArraySchema(t *testing.T) {
	schema := &Schema{
		Name: "test-question-list",
		Definition: map[string]any{
			"type":  "array",
			"items": testSchema().Definition,
		},
	}

	valid := []byte(`[{"text":"Q1?","options":["a","b"],"correctAnswerIndex":1}]`)
	if err := ValidateJSON(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := []byte(`[{"text":"Q1?","options":["a","b"],"correctAnswerIndex":1},{"text":"Q2?"}]`)
	if err := ValidateJSON(schema, invalid); err == nil {
		t.Fatal("expected error for invalid array item")
	}
}
