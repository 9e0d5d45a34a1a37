// Package quizview renders quizzes and quiz listings for the terminal.
package quizview

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/wikiquiz/internal/quiz"
	"github.com/abhisek/wikiquiz/internal/store"
	"github.com/abhisek/wikiquiz/internal/ui/theme"
)

// Options controls quiz rendering.
type Options struct {
	// ShowAnswers marks the correct option of each question.
	ShowAnswers bool

	// Width wraps question text. Zero disables wrapping.
	Width int
}

// OptionLabel returns the letter label for the i-th option ("A", "B", ...).
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// Render formats q as a header card followed by numbered questions.
func Render(q *quiz.Quiz, opts Options) string {
	var b strings.Builder

	b.WriteString(renderHeader(q))
	b.WriteString("\n\n")

	if len(q.Questions) == 0 {
		b.WriteString(theme.Warning.Render("The model returned no usable questions for this article."))
		b.WriteString("\n")
		return b.String()
	}

	question := theme.Question
	if opts.Width > 0 {
		question = question.Width(opts.Width)
	}

	for i, item := range q.Questions {
		b.WriteString(question.Render(fmt.Sprintf("%d. %s", i+1, item.Text)))
		b.WriteString("\n")
		for j, opt := range item.Options {
			line := fmt.Sprintf("   %s) %s", OptionLabel(j), opt)
			if opts.ShowAnswers && j == item.CorrectAnswerIndex {
				b.WriteString(theme.Correct.Render(line + "  ✓"))
			} else {
				b.WriteString(theme.Option.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(renderFooter(q))
	b.WriteString("\n")
	return b.String()
}

func renderHeader(q *quiz.Quiz) string {
	lines := []string{
		theme.Title.Render(q.Title),
		theme.Subtitle.Render(fmt.Sprintf("%s · %d questions · %s",
			q.Language, len(q.Questions), q.CreatedAt.Local().Format("2006-01-02 15:04"))),
	}
	if q.ArticleReference.URL != "" {
		lines = append(lines, theme.Link.Render(q.ArticleReference.URL))
	}
	return theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderFooter(q *quiz.Quiz) string {
	tokens := "?"
	if q.Usage.TotalTokens != nil {
		tokens = strconv.Itoa(*q.Usage.TotalTokens)
	}
	return theme.Hint.Render(fmt.Sprintf("%s · %s tokens · %dms · %s · id %s",
		q.Usage.ModelName, tokens, q.Usage.ResponseTimeMs, FormatCost(q.EstimatedCost), q.ID))
}

// RenderHistory formats saved quizzes as a table.
func RenderHistory(records []store.QuizRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			Truncate(r.Title, 32),
			r.Language,
			strconv.Itoa(r.QuestionCount),
			Truncate(r.ModelName, 24),
			FormatCost(r.EstimatedCost),
		})
	}
	return Table([]string{"ID", "Created", "Title", "Language", "Qs", "Model", "Cost"}, rows)
}

// Table renders rows under headers with the theme's table styles.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TableHeader
			}
			return theme.TableCell
		})
	return t.String()
}

// FormatCost prints small amounts with more precision.
func FormatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
