package quizgen

import "time"

// Config controls question generation.
type Config struct {
	// BatchThreshold is the largest count served by a single completion
	// call. Larger counts are generated in batches.
	BatchThreshold int

	// BatchSize is the most questions asked of one batch call.
	BatchSize int

	// ExtraAttempts is added to ceil(count/BatchSize) to bound the batch
	// loop, leaving room for failed calls and duplicates.
	ExtraAttempts int

	// BatchDelay is the pause between batch attempts.
	BatchDelay time.Duration

	// Temperature is the sampling temperature. Batch calls add a random
	// offset in [0, TemperatureJitter) so batches differ.
	Temperature       float64
	TemperatureJitter float64

	// Single-shot calls get TokensPerQuestion*count response tokens,
	// clamped to [MinResponseTokens, MaxResponseTokens].
	TokensPerQuestion int
	MinResponseTokens int
	MaxResponseTokens int

	// BatchResponseTokens is the response cap for every batch call.
	BatchResponseTokens int

	// Request bounds.
	MinCount     int
	MaxCount     int
	DefaultCount int
	MinMenuChars int
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		BatchThreshold:      30,
		BatchSize:           25,
		ExtraAttempts:       5,
		BatchDelay:          800 * time.Millisecond,
		Temperature:         0.7,
		TemperatureJitter:   0.2,
		TokensPerQuestion:   100,
		MinResponseTokens:   2000,
		MaxResponseTokens:   16000,
		BatchResponseTokens: 4000,
		MinCount:            10,
		MaxCount:            200,
		DefaultCount:        20,
		MinMenuChars:        10,
	}
}

// maxAttempts bounds the batch loop for total questions.
func (c Config) maxAttempts(total int) int {
	return (total+c.BatchSize-1)/c.BatchSize + c.ExtraAttempts
}

// responseTokens is the single-shot response cap for count questions.
func (c Config) responseTokens(count int) int {
	return min(max(count*c.TokensPerQuestion, c.MinResponseTokens), c.MaxResponseTokens)
}
