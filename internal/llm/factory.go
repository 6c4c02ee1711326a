package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/rpscam/internal/store"
)

// vendors builds the undecorated provider for each Config.Provider value.
var vendors = map[string]func(context.Context, Config) (Provider, error){
	"anthropic": func(_ context.Context, c Config) (Provider, error) { return NewAnthropicProvider(c.Anthropic) },
	"openai":    func(_ context.Context, c Config) (Provider, error) { return NewOpenAIProvider(c.OpenAI) },
	"gemini":    func(ctx context.Context, c Config) (Provider, error) { return NewGeminiProvider(ctx, c.Gemini) },
	"openrouter": func(_ context.Context, c Config) (Provider, error) {
		return NewOpenRouterProvider(c.OpenRouter)
	},
	// The mock scores any frame from its bytes, so a keyless game still plays.
	"mock": func(context.Context, Config) (Provider, error) {
		m := NewMockProvider()
		m.Fallback = FrameDigestScores
		return m, nil
	},
}

// NewProvider builds the configured vision provider with every attempt
// journaled to events, which may be nil, and retried per cfg.Retry.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	build, ok := vendors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	base, err := build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	// Logging sits inside retry so each attempt is its own event.
	return WithRetry(WithLogging(base, cfg.Provider, events), cfg.Retry), nil
}
