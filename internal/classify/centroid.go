package classify

import (
	"context"
	"fmt"
	"image"
	"math"
)

// CentroidClassifier scores a frame by its distance to one mean feature
// vector per move.
type CentroidClassifier struct {
	asset *Asset
}

// NewCentroidClassifier validates asset and wraps it as a Classifier.
func NewCentroidClassifier(asset *Asset) (*CentroidClassifier, error) {
	if asset == nil {
		return nil, fmt.Errorf("nil model asset")
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	return &CentroidClassifier{asset: asset}, nil
}

// Asset returns the model the classifier was built from.
func (c *CentroidClassifier) Asset() *Asset {
	return c.asset
}

func (c *CentroidClassifier) Classify(ctx context.Context, img image.Image) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", ErrPredictionFailed)
	}

	feat := Features(img, c.asset.InputSize, c.asset.Grid)
	dists := make([]float64, len(c.asset.Centroids))
	for i, centroid := range c.asset.Centroids {
		dists[i] = meanSquaredDistance(feat, centroid)
	}
	return Resolve(softmin(dists, c.asset.Temperature))
}

func meanSquaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(len(a))
}

// softmin turns distances into a probability distribution where the nearest
// centroid gets the largest share.
func softmin(dists []float64, temperature float64) []float64 {
	out := make([]float64, len(dists))
	if len(dists) == 0 {
		return out
	}
	lo := dists[0]
	for _, d := range dists[1:] {
		lo = math.Min(lo, d)
	}

	var total float64
	for i, d := range dists {
		out[i] = math.Exp(-(d - lo) / temperature)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
