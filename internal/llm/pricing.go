package llm

import "strings"

// Rate is a vision model's list price. Token prices are USD per million
// tokens. FrameTokens is roughly what one 150px classification frame bills
// as input, before the prompt text.
type Rate struct {
	InputPerMTok  float64
	OutputPerMTok float64
	FrameTokens   int
}

// Cost prices the given token counts.
func (r Rate) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*r.InputPerMTok + float64(outputTokens)*r.OutputPerMTok) / 1e6
}

// FrameCost is the input cost of the frame image alone in one classification.
func (r Rate) FrameCost() float64 {
	return r.Cost(r.FrameTokens, 0)
}

// LookupRate finds the rate for a model ID as reported by a provider.
// OpenRouter's vendor prefix ("google/") and ":variant" suffix are ignored.
func LookupRate(modelID string) (Rate, bool) {
	id := modelID
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[:i]
	}
	if r, ok := visionRates[id]; ok {
		return r, true
	}
	// OpenRouter pins Gemini releases with a "-001" style suffix.
	if i := strings.LastIndexByte(id, '-'); i >= 0 {
		if r, ok := visionRates[id[:i]]; ok && isDigits(id[i+1:]) {
			return r, true
		}
	}
	return Rate{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// visionRates covers image-capable models the providers here can reach.
// Prices from models.dev, 2026-02. Frame tokens follow each vendor's image
// sizing rules: Anthropic bills width*height/750, OpenAI low detail is a flat
// charge per model family, Gemini bills 258 tokens for images under 384px.
var visionRates = map[string]Rate{
	// Anthropic
	"claude-3-5-haiku-20241022":  {0.8, 4, 30},
	"claude-3-5-sonnet-20241022": {3, 15, 30},
	"claude-3-7-sonnet-20250219": {3, 15, 30},
	"claude-3-haiku-20240307":    {0.25, 1.25, 30},
	"claude-haiku-4-5":           {1, 5, 30},
	"claude-haiku-4-5-20251001":  {1, 5, 30},
	"claude-sonnet-4-20250514":   {3, 15, 30},
	"claude-sonnet-4-5":          {3, 15, 30},
	"claude-sonnet-4-5-20250929": {3, 15, 30},
	"claude-opus-4-5":            {5, 25, 30},

	// OpenAI, detail=low
	"gpt-4o":       {2.5, 10, 85},
	"gpt-4o-mini":  {0.15, 0.6, 2833},
	"gpt-4.1":      {2, 8, 85},
	"gpt-4.1-mini": {0.4, 1.6, 40},
	"gpt-4.1-nano": {0.1, 0.4, 40},
	"gpt-5":        {1.25, 10, 70},
	"gpt-5-mini":   {0.25, 2, 40},
	"gpt-5-nano":   {0.05, 0.4, 40},
	"o4-mini":      {1.1, 4.4, 40},

	// Google
	"gemini-1.5-flash":      {0.075, 0.3, 258},
	"gemini-1.5-pro":        {1.25, 5, 258},
	"gemini-2.0-flash":      {0.1, 0.4, 258},
	"gemini-2.0-flash-lite": {0.075, 0.3, 258},
	"gemini-2.5-flash":      {0.3, 2.5, 258},
	"gemini-2.5-flash-lite": {0.1, 0.4, 258},
	"gemini-2.5-pro":        {1.25, 10, 258},
	"gemini-flash-latest":   {0.3, 2.5, 258},
}
