package menutext

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxContextTokens is the context window the budget is computed for.
	MaxContextTokens = 100000

	// ResponseReserveTokens is held back for the model's reply.
	ResponseReserveTokens = 4000

	// MenuPlaceholder marks where prompt templates embed the menu text.
	MenuPlaceholder = "{{MENU_TEXT}}"

	// TruncatedMarker ends menu text cut to fit the budget.
	TruncatedMarker = "\n[TRUNCATED]"

	charsPerToken       = 4
	budgetCharsPerToken = 3
)

// EstimateTokens approximates the token count of text as one token per
// four characters, rounded up. It is not a tokenizer and can be off by a
// noticeable margin for any given model.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// Budget describes how the context window is split for one prompt pair.
type Budget struct {
	SystemTokens   int
	TemplateTokens int
	Reserved       int
	Available      int
	MaxChars       int
}

// ComputeBudget reserves room for the system prompt, the user template
// without its menu placeholder and the response, and converts what is left
// to a character allowance at three characters per token.
func ComputeBudget(systemPrompt, userTemplate string) Budget {
	b := Budget{
		SystemTokens:   EstimateTokens(systemPrompt),
		TemplateTokens: EstimateTokens(strings.Replace(userTemplate, MenuPlaceholder, "", 1)),
	}
	b.Reserved = b.SystemTokens + b.TemplateTokens + ResponseReserveTokens
	b.Available = MaxContextTokens - b.Reserved
	b.MaxChars = max(b.Available*budgetCharsPerToken, 0)
	return b
}

// FitToBudget truncates menuText so the full prompt pair stays within the
// context window, appending TruncatedMarker when it cuts.
func FitToBudget(menuText, systemPrompt, userTemplate string) string {
	out, _ := Truncate(menuText, ComputeBudget(systemPrompt, userTemplate).MaxChars, TruncatedMarker)
	return out
}

// Truncate cuts text to at most maxRunes characters and appends marker if
// anything was removed. It reports whether a cut happened.
func Truncate(text string, maxRunes int, marker string) (string, bool) {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text, false
	}
	if maxRunes <= 0 {
		return marker, true
	}
	n := 0
	for i := range text {
		if n == maxRunes {
			return text[:i] + marker, true
		}
		n++
	}
	return text, false
}
