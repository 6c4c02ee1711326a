package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/rpscam/internal/classify"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Build a centroid model from labelled hand images",
	Long: "train reads images from <data>/rock, <data>/paper and <data>/scissors and\n" +
		"writes a centroid model for the default classifier.",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _ := cmd.Flags().GetString("data")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = classifierConfig(cmd).ModelPath
		}

		cfg := classify.DefaultTrainConfig()
		cfg.InputSize, _ = cmd.Flags().GetInt("size")
		cfg.Grid, _ = cmd.Flags().GetInt("grid")
		cfg.Temperature, _ = cmd.Flags().GetFloat64("temperature")

		asset, err := classify.Train(data, cfg)
		if err != nil {
			return fmt.Errorf("train model: %w", err)
		}
		if err := asset.Save(out); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
		slog.Info("model trained", "path", out, "samples", asset.Samples)

		w := cmd.OutOrStdout()
		for i, label := range asset.Labels {
			fmt.Fprintf(w, "%-9s %d images\n", label, asset.Samples[i])
		}
		fmt.Fprintf(w, "Wrote %s\n", out)
		return nil
	},
}

func init() {
	def := classify.DefaultTrainConfig()
	trainCmd.Flags().String("data", "data", "Directory with rock, paper and scissors subdirectories")
	trainCmd.Flags().StringP("out", "o", "", "Model file to write (defaults to --model)")
	trainCmd.Flags().Int("size", def.InputSize, "Square input size images are resized to")
	trainCmd.Flags().Int("grid", def.Grid, "Feature grid cells per side")
	trainCmd.Flags().Float64("temperature", def.Temperature, "Softmin temperature for scoring")
}
