package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/config"
	"github.com/abhisek/wikiquiz/internal/lang"
	"github.com/abhisek/wikiquiz/internal/ui/quizview"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List priced models (USD per million tokens)",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		cat, err := cfg.Catalog()
		if err != nil {
			return err
		}

		var rows [][]string
		for _, id := range cat.Models() {
			p, err := cat.Lookup(id)
			if err != nil {
				return err
			}
			rows = append(rows, []string{
				id,
				formatPrice(p.InputPerMTok),
				formatPrice(p.CachedInputPerMTok),
				formatPrice(p.OutputPerMTok),
				strconv.Itoa(p.MaxTokens),
				strconv.Itoa(p.ContextWindow),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), quizview.Table(
			[]string{"Model", "Input", "Cached", "Output", "Max out", "Context"}, rows))
		return nil
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported article languages",
	Run: func(cmd *cobra.Command, args []string) {
		var rows [][]string
		for _, l := range lang.All() {
			rows = append(rows, []string{l.Code(), string(l)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), quizview.Table([]string{"Code", "Language"}, rows))
	},
}

func formatPrice(usd float64) string {
	return strconv.FormatFloat(usd, 'f', -1, 64)
}
