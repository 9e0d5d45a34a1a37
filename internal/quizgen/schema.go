package quizgen

import "github.com/abhisek/wikiquiz/internal/llm"

// questionSchema validates one normalized question object.
var questionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A multiple-choice question with its options and the index of the correct one",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"minItems": 2,
				"maxItems": 5,
			},
			"correctAnswerIndex": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": MaxOptions - 1,
			},
		},
		"required": []any{"text", "options", "correctAnswerIndex"},
	},
}
