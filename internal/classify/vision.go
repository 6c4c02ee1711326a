package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/abhisek/rpscam/internal/frame"
	"github.com/abhisek/rpscam/internal/llm"
	"github.com/abhisek/rpscam/internal/move"
)

// VisionConfig tunes the LLM-backed classifier.
type VisionConfig struct {
	// InputSize is the square side the frame is scaled to before upload.
	InputSize int

	MaxTokens int

	// Timeout bounds one classification, retries included. Zero means none.
	Timeout time.Duration
}

// DefaultVisionConfig sends the same 150x150 input the centroid model uses.
func DefaultVisionConfig() VisionConfig {
	return VisionConfig{InputSize: 150, MaxTokens: 128}
}

// VisionClassifier asks a multimodal LLM to score the gesture in a frame.
type VisionClassifier struct {
	provider llm.Provider
	cfg      VisionConfig
}

// NewVisionClassifier wraps provider as a Classifier.
func NewVisionClassifier(provider llm.Provider, cfg VisionConfig) *VisionClassifier {
	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultVisionConfig().InputSize
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultVisionConfig().MaxTokens
	}
	return &VisionClassifier{provider: provider, cfg: cfg}
}

const visionSystemPrompt = `You are the referee of a rock, paper, scissors game played in front of a webcam.
Look at the single hand in the image and rate how likely it shows each gesture:
- rock: a closed fist
- paper: an open flat hand
- scissors: index and middle finger extended
Return one probability in [0, 1] per gesture. The three values should sum to 1.`

// GestureSchema is the structured output the vision model must produce.
var GestureSchema = buildGestureSchema()

func buildGestureSchema() *llm.Schema {
	props := map[string]any{}
	required := []any{}
	for _, l := range move.Labels() {
		props[l] = map[string]any{
			"type":        "number",
			"minimum":     0,
			"maximum":     1,
			"description": "Probability that the hand shows " + l,
		}
		required = append(required, l)
	}
	return &llm.Schema{
		Name:        "gesture-scores",
		Description: "Per-gesture confidence for the hand in the frame",
		Definition: map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		},
	}
}

func (v *VisionClassifier) Classify(ctx context.Context, img image.Image) (*Prediction, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", ErrPredictionFailed)
	}

	data, err := frame.EncodePNG(frame.Preprocess(img, v.cfg.InputSize))
	if err != nil {
		return nil, err
	}

	if v.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
		defer cancel()
	}

	resp, err := v.provider.Generate(llm.WithPurpose(ctx, llm.PurposeClassify), llm.Request{
		System: visionSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "Score the gesture: " + strings.Join(move.Labels(), ", ") + ".",
			Images:  []llm.Image{{MIMEType: "image/png", Data: data}},
		}},
		Schema:    GestureSchema,
		MaxTokens: v.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode scores: %v", ErrPredictionFailed, err)
	}

	scores := make([]float64, 0, len(raw))
	for _, l := range move.Labels() {
		s, ok := raw[l]
		if !ok {
			return nil, fmt.Errorf("%w: missing score for %s", ErrPredictionFailed, l)
		}
		scores = append(scores, s)
	}
	return Resolve(scores)
}
