package llm

// ModelCost holds per-million-token pricing for a model in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
// Ollama and other self-hosted models have no entry.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// modelCosts covers the models this tool is configured with by default
// and their common alternatives.
var modelCosts = map[string]ModelCost{
	// OpenAI
	"gpt-4-turbo-preview":    {10, 30},
	"gpt-4-0125-preview":     {10, 30},
	"gpt-4-1106-preview":     {10, 30},
	"gpt-4-turbo":            {10, 30},
	"gpt-4-turbo-2024-04-09": {10, 30},
	"gpt-4.1":                {2, 8},
	"gpt-4.1-mini":           {0.4, 1.6},
	"gpt-4o":                 {2.5, 10},
	"gpt-4o-2024-08-06":      {2.5, 10},
	"gpt-4o-mini":            {0.15, 0.6},
	"gpt-4o-mini-2024-07-18": {0.15, 0.6},
	"gpt-3.5-turbo":          {0.5, 1.5},

	// Anthropic
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-20250514":   {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},

	// Google
	"gemini-2.0-flash": {0.1, 0.4},
	"gemini-2.5-flash": {0.3, 2.5},
	"gemini-2.5-pro":   {1.25, 10},

	// OpenRouter IDs for the same models
	"openai/gpt-4o-mini":        {0.15, 0.6},
	"openai/gpt-4o":             {2.5, 10},
	"anthropic/claude-sonnet-4": {3, 15},
	"google/gemini-2.5-flash":   {0.3, 2.5},
}
