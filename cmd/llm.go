package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/llm"
	"github.com/abhisek/wikiquiz/internal/store"
	"github.com/abhisek/wikiquiz/internal/ui/quizview"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM events found.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-10s  %-28s  %-6s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Cached", "Out", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 104))

		for _, ev := range events {
			ok := "✓"
			if !ev.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-10s  %-28s  %-6d  %-6d  %-6d  %-7d  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				quizview.Truncate(ev.Purpose, 10),
				quizview.Truncate(ev.Model, 28),
				ev.InputTokens,
				ev.CachedInputTokens,
				ev.OutputTokens,
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("event %d not found", id)
		}

		printEvent(cmd.OutOrStdout(), ev)
		return nil
	},
}

func printEvent(out io.Writer, ev *store.LLMEvent) {
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(out, "ID:        %d\n", ev.ID)
	fmt.Fprintf(out, "Time:      %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Provider:  %s\n", ev.Provider)
	fmt.Fprintf(out, "Model:     %s\n", ev.Model)
	fmt.Fprintf(out, "Purpose:   %s\n", ev.Purpose)
	if ev.RequesterID != "" {
		fmt.Fprintf(out, "Requester: %s\n", ev.RequesterID)
	}
	fmt.Fprintf(out, "Tokens:    %d in (+%d cached) / %d out\n", ev.InputTokens, ev.CachedInputTokens, ev.OutputTokens)
	fmt.Fprintf(out, "Latency:   %dms\n", ev.LatencyMs)
	fmt.Fprintf(out, "Success:   %v\n", ev.Success)
	if ev.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", ev.ErrorMessage)
	}

	for _, section := range []struct{ name, body string }{
		{"REQUEST", ev.RequestBody},
		{"RESPONSE", ev.ResponseBody},
	} {
		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, section.name)
		fmt.Fprintln(out, sep)
		if section.body != "" {
			fmt.Fprintln(out, section.body)
		} else {
			fmt.Fprintln(out, "(not captured)")
		}
	}
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		stats, err := e.store.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		modelUsage, err := e.store.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		costs, err := e.cfg.Catalog()
		if err != nil {
			return err
		}

		printUsage(out, stats, modelUsage, costs)
		return nil
	},
}

func printUsage(out io.Writer, stats []store.PurposeUsage, modelUsage []store.ModelUsage, costs *llm.Catalog) {
	rule := strings.Repeat("─", 82)

	fmt.Fprintln(out, "Usage by Purpose")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "%-16s  %6s  %10s  %10s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Input", "Cached", "Output", "Total", "Avg Ms")
	fmt.Fprintln(out, rule)

	var totalCalls, totalIn, totalCached, totalOut int
	for _, st := range stats {
		total := st.InputTokens + st.CachedInputTokens + st.OutputTokens
		fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d  %10d  %8d\n",
			st.Purpose, st.Calls, st.InputTokens, st.CachedInputTokens, st.OutputTokens, total, st.AvgLatencyMs)
		totalCalls += st.Calls
		totalIn += st.InputTokens
		totalCached += st.CachedInputTokens
		totalOut += st.OutputTokens
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d  %10d\n",
		"TOTAL", totalCalls, totalIn, totalCached, totalOut, totalIn+totalCached+totalOut)

	if len(modelUsage) == 0 {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Estimated Cost (USD)")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s  %10s\n",
		"Model", "Calls", "Input", "Cached", "Output", "Cost")
	fmt.Fprintln(out, rule)

	var totalCost float64
	var unknownModels []string
	for _, mu := range modelUsage {
		c, err := costs.CostOf(mu.Model, mu.InputTokens, mu.CachedInputTokens, mu.OutputTokens)
		if err != nil {
			unknownModels = append(unknownModels, mu.Model)
			fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10d  %10s\n",
				quizview.Truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.CachedInputTokens, mu.OutputTokens, "?")
			continue
		}
		totalCost += c
		fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10d  %10s\n",
			quizview.Truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.CachedInputTokens, mu.OutputTokens, quizview.FormatCost(c))
	}

	fmt.Fprintln(out, rule)
	label := "TOTAL"
	if len(unknownModels) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s  %10s\n",
		label, "", "", "", "", quizview.FormatCost(totalCost))

	if len(unknownModels) > 0 {
		fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
	}
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. quiz-gen)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
