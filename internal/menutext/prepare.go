package menutext

// Prepared is menu text ready to be budgeted into a prompt.
type Prepared struct {
	Text string `json:"text"`

	// Essential is set when the normalized text exceeded
	// EssentialThreshold and was reduced to its essential lines.
	Essential bool `json:"essential"`

	OriginalTokens   int `json:"original_tokens"`
	NormalizedTokens int `json:"normalized_tokens"`
	Tokens           int `json:"tokens"`
}

// Prepare normalizes raw text and, when the result is still larger than
// EssentialThreshold tokens, reduces it with ExtractEssential.
func Prepare(raw string) Prepared {
	p := Prepared{OriginalTokens: EstimateTokens(raw)}

	p.Text = Normalize(raw)
	p.NormalizedTokens = EstimateTokens(p.Text)

	if p.NormalizedTokens > EssentialThreshold {
		p.Text = ExtractEssential(p.Text)
		p.Essential = true
	}
	p.Tokens = EstimateTokens(p.Text)
	return p
}
