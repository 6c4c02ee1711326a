package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/game"
	"github.com/abhisek/rpscam/internal/metrics"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/round"
	"github.com/abhisek/rpscam/internal/score"
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Play rounds headless and print the results",
	Long: "auto runs the same game as the terminal UI without a display: each round\n" +
		"counts down, grabs the current frame, classifies it and prints the outcome.",
	RunE: runAuto,
}

func init() {
	autoCmd.Flags().IntP("rounds", "n", 5, "Number of rounds to play")
	autoCmd.Flags().Duration("tick", time.Second, "Time between countdown steps")
	autoCmd.Flags().Bool("no-store", false, "Do not record events in the database")
}

// roundWatcher forwards round outcomes out of the event loop.
type roundWatcher struct {
	results chan round.Result
	notices chan round.Notice
}

func newRoundWatcher() *roundWatcher {
	return &roundWatcher{
		results: make(chan round.Result, 1),
		notices: make(chan round.Notice, 4),
	}
}

func (w *roundWatcher) RoundStarted(uint64) {}

func (w *roundWatcher) RoundResolved(r round.Result) {
	select {
	case w.results <- r:
	default:
	}
}

func (w *roundWatcher) Notice(n round.Notice) {
	select {
	case w.notices <- n:
	default:
	}
}

func runAuto(cmd *cobra.Command, args []string) error {
	rounds, _ := cmd.Flags().GetInt("rounds")
	tick, _ := cmd.Flags().GetDuration("tick")
	noStore, _ := cmd.Flags().GetBool("no-store")
	if rounds < 1 {
		return fmt.Errorf("--rounds must be at least 1")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ccfg := classifierConfig(cmd)
	opts := game.Options{
		Round: round.Config{
			CountdownFrom: round.DefaultConfig().CountdownFrom,
			TickInterval:  tick,
			ResultDelay:   round.DefaultConfig().ResultDelay,
		},
		Video:    frame.NewFileSource(frameConfig(cmd)),
		Opponent: move.NewRandomSource(ccfg.Seed),
		Backend:  ccfg.Backend,
		Metrics:  metrics.New(),
		Logger:   slog.Default(),
	}
	stopMetrics := serveMetrics(cmd, opts.Metrics)
	defer stopMetrics()

	loader := classify.LoaderFor(ccfg, nil)
	if !noStore {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Repo = st.Events()
		loader = classify.LoaderFor(ccfg, st.Events())
	}

	watcher := newRoundWatcher()
	opts.Observer = watcher

	loop := game.NewLoop()
	sess, err := game.NewSession(loop, opts)
	if err != nil {
		return err
	}
	loop.Attach(sess)

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	clf, loadErr := loader(ctx)
	if err := loop.Do(ctx, func() { sess.ModelLoaded(clf, loadErr) }); err != nil {
		return err
	}
	if loadErr != nil {
		return fmt.Errorf("load classifier: %w", loadErr)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Playing %d rounds with the %s classifier (session %s)\n", rounds, ccfg.Backend, sess.ID())

	played := 0
	for played < rounds {
		var startErr error
		if err := loop.Do(ctx, func() { startErr = sess.StartRound() }); err != nil {
			return err
		}
		if startErr != nil {
			return fmt.Errorf("start round: %w", startErr)
		}

		select {
		case r := <-watcher.results:
			played++
			fmt.Fprintf(out, "Round %d: you %s %s, CPU %s %s  %s  [%d : %d]\n",
				played,
				move.Glyph(r.Player), r.Player,
				move.Glyph(r.Opponent), r.Opponent,
				r.Outcome.Banner(),
				r.Scores.PlayerWins, r.Scores.OpponentWins,
			)
		case n := <-watcher.notices:
			fmt.Fprintf(out, "Round aborted: %s\n", n.Message())
			if n.Kind == round.NoticeCameraUnavailable || n.Kind == round.NoticeModelLoadFailure {
				return n.Err
			}
			played++
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	snap, err := finishSession(ctx, loop, sess)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	fmt.Fprintf(out, "Final score: you %d, CPU %d\n", snap.PlayerWins, snap.OpponentWins)

	stop()
	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// finishSession records the end of sess on the loop and returns the final
// scores. It fails when the loop can no longer run work.
func finishSession(ctx context.Context, loop *game.Loop, sess *game.Session) (score.Snapshot, error) {
	var snap score.Snapshot
	err := loop.Do(ctx, func() {
		snap = sess.View().Scores
		sess.End()
	})
	return snap, err
}
