package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/rpscam/internal/app"
	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/metrics"
	"github.com/abhisek/rpscam/internal/move"
	"github.com/abhisek/rpscam/internal/round"
	"github.com/abhisek/rpscam/internal/screens/play"
)

var playCmd = &cobra.Command{
	Use:         "play",
	Short:       "Open the terminal game",
	Annotations: map[string]string{tuiAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func runTUI(cmd *cobra.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ccfg := classifierConfig(cmd)
	m := metrics.New()
	stop := serveMetrics(cmd, m)
	defer stop()

	return app.Run(app.Options{
		Play: play.Deps{
			Round:    round.DefaultConfig(),
			Video:    frame.NewFileSource(frameConfig(cmd)),
			Opponent: move.NewRandomSource(ccfg.Seed),
			Loader:   classify.LoaderFor(ccfg, st.Events()),
			Backend:  ccfg.Backend,
			Repo:     st.Events(),
			Metrics:  m,
		},
		History: st.Events(),
	})
}

// serveMetrics starts the exposition endpoint when --metrics-addr is set and
// returns the function that stops it.
func serveMetrics(cmd *cobra.Command, m *metrics.Metrics) func() {
	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := m.Serve(ctx, addr); err != nil {
			slog.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	return cancel
}
