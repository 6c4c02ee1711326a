package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rpscam/internal/llm"
	"github.com/abhisek/rpscam/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect requests made by the vision classifier",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent vision requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.Events().QueryLLMEvents(context.Background(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query vision requests: %w", err)
		}
		printRequests(cmd.OutOrStdout(), keepRequests(events, purpose, failed))
		return nil
	},
}

// keepRequests filters events by purpose, and to failures only when failed
// is set.
func keepRequests(events []store.LLMRequestRecord, purpose string, failed bool) []store.LLMRequestRecord {
	out := events[:0:0]
	for _, e := range events {
		if (purpose == "" || e.Purpose == purpose) && (!failed || !e.Success) {
			out = append(out, e)
		}
	}
	return out
}

func printRequests(w io.Writer, events []store.LLMRequestRecord) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No vision requests recorded.")
		return
	}
	fmt.Fprintf(w, "%5s  %-8s  %-10s  %-28s  %6s  %5s  %6s  %s\n",
		"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "Result")
	fmt.Fprintln(w, strings.Repeat("─", 96))
	for _, e := range events {
		result := "ok"
		if !e.Success {
			result = "failed: " + truncate(e.ErrorMessage, 24)
		}
		fmt.Fprintf(w, "%5d  %-8s  %-10s  %-28s  %6d  %5d  %6d  %s\n",
			e.ID, e.Timestamp.Local().Format("15:04:05"), e.Purpose, truncate(e.Model, 28),
			e.InputTokens, e.OutputTokens, e.LatencyMs, result)
	}
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one vision request with the prompt sent and the scores returned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.Events().GetLLMEvent(context.Background(), id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("no vision request with id %d", id)
		}
		printRequest(cmd.OutOrStdout(), e)
		return nil
	},
}

func printRequest(w io.Writer, e *store.LLMRequestRecord) {
	status := "ok"
	if !e.Success {
		status = "failed: " + e.ErrorMessage
	}
	fmt.Fprintf(w, "Request %d, %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  %-9s %s / %s\n", "Model", e.Provider, e.Model)
	fmt.Fprintf(w, "  %-9s %s\n", "Purpose", e.Purpose)
	fmt.Fprintf(w, "  %-9s %d in, %d out, %dms\n", "Usage", e.InputTokens, e.OutputTokens, e.LatencyMs)
	if e.FrameBytes > 0 {
		fmt.Fprintf(w, "  %-9s %d bytes\n", "Frame", e.FrameBytes)
	}
	if e.StopReason != "" {
		fmt.Fprintf(w, "  %-9s %s\n", "Stopped", e.StopReason)
	}
	if rate, ok := llm.LookupRate(e.Model); ok {
		fmt.Fprintf(w, "  %-9s %s\n", "Cost", formatCost(rate.Cost(e.InputTokens, e.OutputTokens)))
	}
	fmt.Fprintf(w, "  %-9s %s\n", "Status", status)

	for _, sec := range []struct{ title, body string }{
		{"Sent", e.RequestBody},
		{"Received", e.ResponseBody},
	} {
		fmt.Fprintf(w, "\n── %s %s\n", sec.title, strings.Repeat("─", 50-len(sec.title)))
		if sec.body == "" {
			fmt.Fprintln(w, "(nothing recorded)")
			continue
		}
		fmt.Fprintln(w, strings.TrimRight(sec.body, "\n"))
	}
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise vision token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return printUsage(context.Background(), cmd.OutOrStdout(), s.Events())
	},
}

func printUsage(ctx context.Context, w io.Writer, events *store.Events) error {
	byPurpose, err := events.LLMUsageByPurpose(ctx)
	if err != nil {
		return err
	}
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "No vision requests recorded.")
		return nil
	}
	byModel, err := events.LLMUsageByModel(ctx)
	if err != nil {
		return err
	}

	rule := strings.Repeat("─", 78)
	fmt.Fprintf(w, "%-28s  %6s  %9s  %7s  %8s  %7s\n", "Purpose", "Calls", "In", "Out", "Avg ms", "Refused")
	fmt.Fprintln(w, rule)
	for _, u := range byPurpose {
		fmt.Fprintf(w, "%-28s  %6d  %9d  %7d  %8d  %7d\n", u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs, u.Refused)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-28s  %6s  %9s  %7s  %8s  %9s\n", "Model", "Calls", "In", "Out", "Cost", "Per round")
	fmt.Fprintln(w, rule)
	var total float64
	var unpriced []string
	for _, u := range byModel {
		cost, perRound := "?", "?"
		if rate, ok := llm.LookupRate(u.Model); ok {
			c := rate.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost, perRound = formatCost(c), formatCost(c/float64(max(u.Calls, 1)))
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(w, "%-28s  %6d  %9d  %7d  %8s  %9s\n",
			truncate(u.Model, 28), u.Calls, u.InputTokens, u.OutputTokens, cost, perRound)
	}
	fmt.Fprintln(w, rule)

	label := "Estimated total"
	if len(unpriced) > 0 {
		label += " (no price for " + strings.Join(unpriced, ", ") + ")"
	}
	fmt.Fprintf(w, "%s: %s\n", label, formatCost(total))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.5f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show requests with this purpose (e.g. classify)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
