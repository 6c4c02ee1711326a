package classify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/abhisek/rpscam/internal/llm"
	"github.com/abhisek/rpscam/internal/store"
)

// Backends accepted by Config.Backend.
const (
	BackendCentroid = "centroid"
	BackendVision   = "vision"
	BackendMock     = "mock"
)

// Config selects and configures the classifier backend.
type Config struct {
	// Backend is one of "centroid", "vision" or "mock".
	Backend string

	// ModelPath is the centroid asset file.
	ModelPath string

	// Seed drives the mock backend's random predictions. Zero uses the clock.
	Seed uint64

	Vision VisionConfig
	LLM    llm.Config
}

// DefaultConfig returns the centroid backend reading model.json.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendCentroid,
		ModelPath: "model.json",
		Vision:    DefaultVisionConfig(),
		LLM:       llm.DefaultConfig(),
	}
}

// ConfigFromEnv reads RPSCAM_CLASSIFIER, RPSCAM_MODEL and RPSCAM_SEED on top
// of the defaults, plus the LLM settings. When the configured provider has no
// key, the vendors' standard key variables are checked instead.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if b := os.Getenv("RPSCAM_CLASSIFIER"); b != "" {
		cfg.Backend = b
	}
	if p := os.Getenv("RPSCAM_MODEL"); p != "" {
		cfg.ModelPath = p
	}
	if s, err := strconv.ParseUint(os.Getenv("RPSCAM_SEED"), 10, 64); err == nil {
		cfg.Seed = s
	}
	cfg.LLM = llm.ConfigFromEnv()
	if cfg.LLM.Validate() != nil {
		if discovered, ok := llm.DiscoverConfig(); ok {
			cfg.LLM = discovered
		}
	}
	return cfg
}

// Validate checks the backend selection.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendCentroid:
		if c.ModelPath == "" {
			return fmt.Errorf("model path is required for the centroid classifier")
		}
	case BackendVision:
		return c.LLM.Validate()
	case BackendMock:
	default:
		return fmt.Errorf("unknown classifier backend: %q", c.Backend)
	}
	return nil
}

// Open builds the configured classifier. It may block on disk or network
// and is meant to run off the event loop; every failure is a
// *ModelLoadError. eventRepo may be nil.
func Open(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ModelLoadError{Source: cfg.Backend, Err: err}
	}

	switch cfg.Backend {
	case BackendCentroid:
		asset, err := LoadAsset(cfg.ModelPath)
		if err != nil {
			return nil, &ModelLoadError{Source: cfg.ModelPath, Err: err}
		}
		clf, err := NewCentroidClassifier(asset)
		if err != nil {
			return nil, &ModelLoadError{Source: cfg.ModelPath, Err: err}
		}
		return clf, nil

	case BackendVision:
		provider, err := llm.NewProvider(ctx, cfg.LLM, eventRepo)
		if err != nil {
			return nil, &ModelLoadError{Source: cfg.LLM.Provider, Err: err}
		}
		vcfg := cfg.Vision
		if vcfg.Timeout == 0 {
			vcfg.Timeout = cfg.LLM.Timeout
		}
		if rate, ok := llm.LookupRate(provider.ModelID()); ok {
			slog.Info("vision classifier ready", "model", provider.ModelID(),
				"frame_cost_usd", rate.FrameCost())
		}
		return NewVisionClassifier(provider, vcfg), nil

	default:
		return NewRandomClassifier(cfg.Seed), nil
	}
}

// LoaderFor returns a Loader that opens cfg.
func LoaderFor(cfg Config, eventRepo store.EventRepo) Loader {
	return func(ctx context.Context) (Classifier, error) {
		return Open(ctx, cfg, eventRepo)
	}
}
