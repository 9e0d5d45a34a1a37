package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/quiz"
	"github.com/abhisek/wikiquiz/internal/store"
	"github.com/abhisek/wikiquiz/internal/ui/quizview"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		records, err := e.store.QuizRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list quizzes: %w", err)
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved quizzes. Use 'wikiquiz generate --save'.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), quizview.RenderHistory(records))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		answers, _ := cmd.Flags().GetBool("answers")

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := quiz.Load(cmd.Context(), e.store.QuizRepo(), args[0])
		if err != nil {
			return fmt.Errorf("load quiz: %w", err)
		}
		if q == nil {
			return fmt.Errorf("quiz %s not found", args[0])
		}

		if asJSON {
			return writeJSON(cmd, q)
		}
		fmt.Fprint(cmd.OutOrStdout(), quizview.Render(q, quizview.Options{ShowAnswers: answers, Width: 100}))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of quizzes to show")

	showCmd.Flags().Bool("json", false, "Print the quiz as JSON")
	showCmd.Flags().Bool("answers", false, "Mark the correct answers")
}
