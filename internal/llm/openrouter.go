package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterAttribution identifies the game on OpenRouter's usage pages.
var openRouterAttribution = map[string]string{
	"HTTP-Referer": "https://github.com/abhisek/rpscam",
	"X-Title":      "rpscam",
}

// OpenRouterProvider sends frames through OpenRouter's OpenAI-compatible
// API. Model IDs are vendor-qualified ("google/gemini-2.0-flash-001") and
// must name a vision-capable model; they are passed through untouched.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Headers: openRouterAttribution,
	})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
