package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/wikiquiz/internal/lang"
)

const systemPrompt = `You are a quiz author writing multiple-choice questions about encyclopedia articles.

Rules:
- Base every question only on facts stated in the provided text. Do not use outside knowledge.
- Each question must have exactly one correct option. Distractors must be plausible but clearly wrong according to the text.
- Do not ask about the text itself ("According to the passage..."). Ask about the subject.
- Do not repeat a question or ask two questions with the same answer.
- Write the questions and options in the requested language.
- Respond with JSON only. No prose, no markdown.`

// buildUserMessage constructs the user message for a clamped request.
func buildUserMessage(text string, l lang.Language, numQuestions, numOptions int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Language: %s\n", l)
	fmt.Fprintf(&b, "Number of questions: %d\n", numQuestions)
	fmt.Fprintf(&b, "Options per question: %d\n", numOptions)

	b.WriteString("\nReturn a JSON array of exactly ")
	fmt.Fprintf(&b, "%d objects. Each object has these fields:\n", numQuestions)
	b.WriteString(`- "text": the question, a string` + "\n")
	fmt.Fprintf(&b, `- "options": an array of exactly %d answer strings`+"\n", numOptions)
	b.WriteString(`- "correctAnswerIndex": the zero-based index of the correct option in "options"` + "\n")
	b.WriteString("\nExample:\n")
	b.WriteString(`[{"text": "...", "options": ["...", "..."], "correctAnswerIndex": 0}]` + "\n")

	b.WriteString("\nText:\n")
	b.WriteString(text)

	return b.String()
}
