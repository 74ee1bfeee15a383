package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/menuquiz/internal/llm"
	"github.com/abhisek/menuquiz/internal/store"
	"github.com/abhisek/menuquiz/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.RunID, _ = cmd.Flags().GetString("run")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM events found.")
			return nil
		}

		t := theme.Table("ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		for _, e := range events {
			ok := theme.Correct.Render("✓")
			if !e.Success {
				ok = theme.Incorrect.Render("✗ " + e.ErrorKind)
			}
			t.Row(
				strconv.FormatInt(e.ID, 10),
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				theme.Truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				ok,
			)
		}
		fmt.Fprintln(out, t)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Field("ID", e.ID))
		fmt.Fprintln(out, theme.Field("Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")))
		fmt.Fprintln(out, theme.Field("Run", e.RunID))
		fmt.Fprintln(out, theme.Field("Provider", e.Provider))
		fmt.Fprintln(out, theme.Field("Model", e.Model))
		fmt.Fprintln(out, theme.Field("Purpose", e.Purpose))
		fmt.Fprintln(out, theme.Field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)))
		fmt.Fprintln(out, theme.Field("Latency", fmt.Sprintf("%dms", e.LatencyMs)))
		fmt.Fprintln(out, theme.Field("Stop", e.StopReason))
		fmt.Fprintln(out, theme.Field("Success", e.Success))
		if e.ErrorMessage != "" {
			fmt.Fprintln(out, theme.Field("Error", theme.Incorrect.Render(e.ErrorKind+": "+e.ErrorMessage)))
		}

		for _, section := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			body := section.body
			if body == "" {
				body = theme.Hint.Render("(not captured)")
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, theme.Title.Render(section.title))
			fmt.Fprintln(out, body)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		stats, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintln(out, theme.Title.Render("Usage by Purpose"))
		t := theme.Table("Purpose", "Calls", "Failed", "Input", "Output", "Total", "Avg Ms")
		var total store.UsageStat
		for _, st := range stats {
			t.Row(st.Key, itoa(st.Calls), itoa(st.Failures), itoa(st.InputTokens), itoa(st.OutputTokens),
				itoa(st.InputTokens+st.OutputTokens), strconv.FormatInt(st.AvgLatencyMs, 10))
			total.Calls += st.Calls
			total.Failures += st.Failures
			total.InputTokens += st.InputTokens
			total.OutputTokens += st.OutputTokens
		}
		t.Row("TOTAL", itoa(total.Calls), itoa(total.Failures), itoa(total.InputTokens), itoa(total.OutputTokens),
			itoa(total.InputTokens+total.OutputTokens), "")
		fmt.Fprintln(out, t)

		modelUsage, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(modelUsage) == 0 {
			return nil
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Title.Render("Estimated Cost (USD)"))
		t = theme.Table("Model", "Calls", "Input", "Output", "Cost")
		var totalCost float64
		var unknownModels []string
		for _, mu := range modelUsage {
			cost := "?"
			if mc := llm.LookupCost(mu.Key); mc != nil {
				c := mc.Cost(mu.InputTokens, mu.OutputTokens)
				totalCost += c
				cost = theme.Cost(c)
			} else {
				unknownModels = append(unknownModels, mu.Key)
			}
			t.Row(theme.Truncate(mu.Key, 32), itoa(mu.Calls), itoa(mu.InputTokens), itoa(mu.OutputTokens), cost)
		}
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		t.Row(label, "", "", "", theme.Cost(totalCost))
		fmt.Fprintln(out, t)

		if len(unknownModels) > 0 {
			fmt.Fprintln(out, theme.Hint.Render("Pricing unavailable for: "+strings.Join(unknownModels, ", ")))
		}
		return nil
	},
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (question-gen, question-batch)")
	llmListCmd.Flags().String("run", "", "Show only the calls of one generation run")
	llmListCmd.Flags().Duration("since", 0, "Show only calls newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
