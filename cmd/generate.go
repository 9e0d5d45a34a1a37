package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/lang"
	"github.com/abhisek/wikiquiz/internal/quiz"
	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/ui/quizview"
	"github.com/abhisek/wikiquiz/internal/wiki"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic...>",
	Short: "Generate a quiz about a topic",
	Example: `  wikiquiz generate george washington
  wikiquiz generate --lang de --questions 10 Berliner Mauer
  wikiquiz generate --provider anthropic --model claude-haiku --json Mount Everest`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")

		langFlag, _ := cmd.Flags().GetString("lang")
		l, err := lang.Parse(langFlag)
		if err != nil {
			return err
		}

		provider, _ := cmd.Flags().GetString("provider")
		model, _ := cmd.Flags().GetString("model")
		numQuestions, _ := cmd.Flags().GetInt("questions")
		numOptions, _ := cmd.Flags().GetInt("options")
		extract, _ := cmd.Flags().GetInt("extract")
		requester, _ := cmd.Flags().GetString("requester")
		asJSON, _ := cmd.Flags().GetBool("json")
		answers, _ := cmd.Flags().GetBool("answers")
		save, _ := cmd.Flags().GetBool("save")

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if provider == "" {
			provider = e.cfg.LLM.Provider
		}
		if err := e.cfg.LLM.ValidateProvider(provider); err != nil {
			return err
		}

		costs, err := e.cfg.Catalog()
		if err != nil {
			return err
		}

		orch := quiz.New(
			wiki.New(e.cfg.Wiki, e.logger),
			quizgen.New(e.registry(), e.cfg.Generation, e.logger),
			costs,
			quiz.WithLogger(e.logger),
			quiz.WithLanguageDetector(lang.NewDetector()),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		q, err := orch.GenerateQuiz(ctx, quiz.Params{
			Topic:         topic,
			Language:      l,
			Provider:      provider,
			Model:         model,
			NumQuestions:  numQuestions,
			NumOptions:    numOptions,
			ExtractLength: extract,
			RequesterID:   requester,
		})
		if err != nil {
			return describeError(err)
		}

		if save {
			if err := quiz.Save(ctx, e.store.QuizRepo(), q); err != nil {
				return fmt.Errorf("save quiz: %w", err)
			}
		}

		if asJSON {
			return writeJSON(cmd, q)
		}
		fmt.Fprint(cmd.OutOrStdout(), quizview.Render(q, quizview.Options{ShowAnswers: answers, Width: 100}))
		if save {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved as %s\n", q.ID)
		}
		return nil
	},
}

// describeError adds a hint to errors users can act on.
func describeError(err error) error {
	var notFound *wiki.ArticleNotFoundError
	var canceled *quiz.CancellationError
	var transient *wiki.TransientFetchError
	var gen *quizgen.GenerationError
	switch {
	case errors.As(err, &notFound):
		return fmt.Errorf("%w (try a more specific topic or another --lang)", err)
	case errors.As(err, &canceled):
		return errors.New("canceled")
	case errors.As(err, &transient) && transient.Timeout():
		return fmt.Errorf("%w (Wikipedia did not respond in time)", err)
	case errors.As(err, &gen) && gen.Timeout():
		return fmt.Errorf("%w (raise llm.timeout in the config)", err)
	}
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	f := generateCmd.Flags()
	f.StringP("lang", "l", "en", "Article language, as a code (de, pt-BR) or name (German)")
	f.StringP("provider", "p", "", "LLM provider (anthropic, openai, gemini, openrouter, mock)")
	f.StringP("model", "m", "", "Model name or id (default: the provider's configured model)")
	f.IntP("questions", "n", 5, fmt.Sprintf("Number of questions (%d-%d)", quizgen.MinQuestions, quizgen.MaxQuestions))
	f.Int("options", quizgen.DefaultOptions, "Options per question (2-5)")
	f.Int("extract", quiz.DefaultExtractLength, "Characters of article text to sample (500-50000)")
	f.String("requester", "", "Requester id recorded with the quiz and its LLM calls")
	f.Bool("json", false, "Print the quiz as JSON")
	f.Bool("answers", false, "Mark the correct answers")
	f.Bool("save", false, "Save the quiz to the database")
}
