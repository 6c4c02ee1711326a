package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past sessions, or the rounds of one session",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		sessionID, _ := cmd.Flags().GetString("session")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		if sessionID != "" {
			return printRounds(ctx, cmd.OutOrStdout(), s.Events(), sessionID, limit)
		}

		sums, err := s.Events().SessionSummaries(ctx, limit)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sums) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No games played yet.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-36s  %-19s  %6s  %4s  %4s  %4s\n",
			"Session", "Last played", "Rounds", "You", "CPU", "Tie")
		fmt.Fprintln(w, strings.Repeat("─", 84))
		for _, sum := range sums {
			fmt.Fprintf(w, "%-36s  %-19s  %6d  %4d  %4d  %4d\n",
				sum.SessionID,
				sum.LastPlayed.Local().Format("2006-01-02 15:04:05"),
				sum.Rounds,
				sum.PlayerWins,
				sum.OpponentWins,
				sum.Ties,
			)
		}
		return nil
	},
}

func printRounds(ctx context.Context, w io.Writer, events *store.Events, sessionID string, limit int) error {
	rounds, err := events.RecentRounds(ctx, store.QueryOpts{SessionID: sessionID, Limit: limit})
	if err != nil {
		return fmt.Errorf("query rounds: %w", err)
	}
	if len(rounds) == 0 {
		fmt.Fprintf(w, "No rounds recorded for session %s.\n", sessionID)
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-12s  %-12s  %-12s  %7s  %6s\n",
		"Round", "Time", "You", "CPU", "Result", "Score", "Ms")
	fmt.Fprintln(w, strings.Repeat("─", 86))
	for _, r := range rounds {
		fmt.Fprintf(w, "%-5d  %-19s  %-12s  %-12s  %-12s  %3d:%-3d  %6d\n",
			r.Round,
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			labelWithGlyph(r.PlayerMove),
			labelWithGlyph(r.OpponentMove),
			r.Outcome,
			r.PlayerWins, r.OpponentWins,
			r.ClassifyMs,
		)
	}
	return nil
}

// labelWithGlyph prefixes a stored move label with its hand, leaving labels
// from an unknown catalog as they are.
func labelWithGlyph(label string) string {
	m, err := move.Parse(label)
	if err != nil {
		return label
	}
	return move.Glyph(m) + " " + label
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions or rounds to show")
	historyCmd.Flags().StringP("session", "s", "", "Show the rounds of this session")
}
