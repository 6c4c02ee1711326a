package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/rpscam/internal/classify"
	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/logger"
	"github.com/abhisek/rpscam/internal/store"
)

// tuiAnnotation marks commands that own the terminal. Their logs go to a
// file instead of stderr.
const tuiAnnotation = "tui"

var rootCmd = &cobra.Command{
	Use:   "rpscam",
	Short: "Rock, paper, scissors against your camera",
	Long: "rpscam plays rock, paper, scissors with a hand gesture read from a camera frame.\n" +
		"Run without a subcommand to open the terminal game.",
	Annotations:       map[string]string{tuiAnnotation: "true"},
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// logCloser is the log file opened by setup, if any.
var logCloser io.Closer

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides RPSCAM_DB env var)")
	pf.String("frames", "", "Directory the camera writes frames into (overrides RPSCAM_FRAMES)")
	pf.String("model", "", "Centroid model file (overrides RPSCAM_MODEL)")
	pf.String("classifier", "", "Classifier backend: centroid, vision or mock (overrides RPSCAM_CLASSIFIER)")
	pf.Uint64("seed", 0, "Seed for the opponent and the mock classifier (0 uses the clock)")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.Bool("log-json", false, "Write logs as JSON")
	pf.String("log-file", "", "Log file (defaults to rpscam.log in the data dir for the game, stderr otherwise)")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(autoCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads .env and installs the default logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	level, _ := cmd.Flags().GetString("log-level")
	json, _ := cmd.Flags().GetBool("log-json")
	path, _ := cmd.Flags().GetString("log-file")

	if path == "" && cmd.Annotations[tuiAnnotation] == "true" {
		dir, err := store.DataDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "rpscam.log")
	}

	var w io.Writer = os.Stderr
	if path != "" {
		f, err := logger.OpenFile(path)
		if err != nil {
			return err
		}
		w, logCloser = f, f
	}
	return logger.Init(level, json, w)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then RPSCAM_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the event log for cmd.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// classifierConfig layers the command-line flags over the environment.
func classifierConfig(cmd *cobra.Command) classify.Config {
	cfg := classify.ConfigFromEnv()
	if b, _ := cmd.Flags().GetString("classifier"); b != "" {
		cfg.Backend = b
	}
	if p, _ := cmd.Flags().GetString("model"); p != "" {
		cfg.ModelPath = p
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	return cfg
}

func frameConfig(cmd *cobra.Command) frame.Config {
	cfg := frame.ConfigFromEnv()
	if d, _ := cmd.Flags().GetString("frames"); d != "" {
		cfg.Dir = d
	}
	return cfg
}
