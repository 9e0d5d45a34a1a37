package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/wikiquiz/internal/llm"
)

// canonicalFields maps normalized keys (lowercase, no underscores) to the
// field names the item schema uses.
var canonicalFields = map[string]string{
	"text":               "text",
	"question":           "text",
	"options":            "options",
	"correctanswerindex": "correctAnswerIndex",
}

// parseQuestions decodes repaired model output into validated questions.
// A decode failure yields no questions and is not an error. Items that
// fail validation are dropped and counted.
func parseQuestions(repaired string, cfg Config, logger *zap.Logger) (questions []Question, dropped int) {
	var items []any
	if err := json.Unmarshal([]byte(repaired), &items); err != nil {
		logger.Warn("discarding unparseable model output", zap.Error(err))
		return nil, 0
	}

	for i, item := range items {
		q, err := parseQuestion(item, cfg)
		if err != nil {
			logger.Info("dropping invalid question", zap.Int("index", i), zap.Error(err))
			dropped++
			continue
		}
		questions = append(questions, q)
	}
	return questions, dropped
}

func parseQuestion(item any, cfg Config) (Question, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return Question{}, errors.New("item is not an object")
	}

	normalized := normalizeKeys(obj)
	if err := llm.ValidateValue(questionSchema, normalized); err != nil {
		return Question{}, err
	}

	// The schema guarantees the shapes below.
	q := Question{Text: strings.TrimSpace(normalized["text"].(string))}
	for _, o := range normalized["options"].([]any) {
		q.Options = append(q.Options, strings.TrimSpace(o.(string)))
	}

	if q.Text == "" {
		return Question{}, errors.New("question text is blank")
	}
	if n := len(q.Options); n < cfg.MinOptions || n > cfg.MaxOptions {
		return Question{}, fmt.Errorf("%d options outside [%d, %d]", n, cfg.MinOptions, cfg.MaxOptions)
	}

	// Bound the float before converting; int() of a huge value is undefined.
	idx := normalized["correctAnswerIndex"].(float64)
	if idx < 0 || idx >= float64(len(q.Options)) {
		return Question{}, fmt.Errorf("correct answer index %v out of range for %d options", idx, len(q.Options))
	}
	q.CorrectAnswerIndex = int(idx)
	return q, nil
}

// normalizeKeys matches field names case-insensitively, ignoring
// underscores. Unknown fields are dropped. When two keys map to the same
// field, an exact canonical key wins.
func normalizeKeys(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		key := strings.ToLower(strings.ReplaceAll(k, "_", ""))
		field, ok := canonicalFields[key]
		if !ok {
			continue
		}
		if _, exists := out[field]; exists && k != field {
			continue
		}
		out[field] = v
	}
	return out
}
