package classify

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/move"
)

// TrainConfig controls centroid training.
type TrainConfig struct {
	InputSize   int
	Grid        int
	Temperature float64
}

// DefaultTrainConfig matches the 150x150 model input of the camera game.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		InputSize:   150,
		Grid:        10,
		Temperature: 0.01,
	}
}

// Train builds a centroid asset from labelled images laid out as
// root/rock, root/paper and root/scissors. Every label needs at least one
// decodable image.
func Train(root string, cfg TrainConfig) (*Asset, error) {
	asset := &Asset{
		Version:     "v1.0.0",
		Labels:      move.Labels(),
		InputSize:   cfg.InputSize,
		Grid:        cfg.Grid,
		Temperature: cfg.Temperature,
	}

	for _, label := range asset.Labels {
		centroid, n, err := trainLabel(filepath.Join(root, label), cfg)
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", label, err)
		}
		asset.Centroids = append(asset.Centroids, centroid)
		asset.Samples = append(asset.Samples, n)
	}

	if err := asset.Validate(); err != nil {
		return nil, err
	}
	return asset, nil
}

func trainLabel(dir string, cfg TrainConfig) ([]float64, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	sum := make([]float64, cfg.Grid*cfg.Grid)
	n := 0
	for _, e := range entries {
		if e.IsDir() || !frame.IsImageFile(e.Name()) {
			continue
		}
		img, err := frame.Load(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		for i, v := range Features(img, cfg.InputSize, cfg.Grid) {
			sum[i] += v
		}
		n++
	}
	if n == 0 {
		return nil, 0, fmt.Errorf("no decodable images in %s", dir)
	}

	for i := range sum {
		sum[i] /= float64(n)
	}
	return sum, n, nil
}
