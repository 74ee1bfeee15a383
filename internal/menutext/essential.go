package menutext

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// EssentialThreshold is the estimated token count above which
	// normalized text is reduced to its essential lines.
	EssentialThreshold = 50000

	maxEssentialLines = 1000
	maxEssentialRunes = 30000
	minStrictLines    = 10

	// ContentTruncatedMarker ends essential text that hit the rune cap.
	ContentTruncatedMarker = "\n[CONTENT TRUNCATED...]"

	// NoContentMarker is returned when no line survives extraction.
	NoContentMarker = "[NO USABLE CONTENT EXTRACTED]"
)

var (
	quantityRe   = regexp.MustCompile(`(?i)\d+ *(g|kg|ml|l|cl|dl|°c|°f|min|h|%|cm|mm|pcs?|unités?|pieces?)([^\p{L}\p{N}_]|$)`)
	dishNameRe   = regexp.MustCompile(`^\p{L}[\p{L}\s\-']{2,30}$`)
	dishWordRe   = regexp.MustCompile(`(?i)(pizza|pasta|sauce|fromage|viande|poisson|salade|soupe|dessert|gâteau|tarte|risotto|lasagne)`)
	ingredientRe = regexp.MustCompile(`(?i)(farine|sucre|beurre|oeuf|œuf|lait|crème|huile|sel|poivre|tomate|oignon|ail|basilic|parmesan|mozzarella)`)
	processRe    = regexp.MustCompile(`(?i)(cuisson|four|frire|griller|bouillir|mijoter|réfrigérer|congeler|servir|dresser)`)
	technicalRe  = regexp.MustCompile(`(?i)(température|temps|préparation|ingrédients|étapes|procédure|conservation|portion)`)
	titleCaseRe  = regexp.MustCompile(`^\p{Lu}\p{Ll}+(\s+\p{Lu}\p{Ll}*)*$`)

	looseBlocklist = regexp.MustCompile(`(?i)^(BOOK|SOMMAIRE|PRÉPARATIONS|CONTENANTS|–|POSTE)`)
)

// isEssential reports whether a trimmed line carries a quantity, a dish
// name, an ingredient, a cooking process, a technical term or a title.
func isEssential(line string) bool {
	return quantityRe.MatchString(line) ||
		(dishNameRe.MatchString(line) && dishWordRe.MatchString(line)) ||
		ingredientRe.MatchString(line) ||
		processRe.MatchString(line) ||
		technicalRe.MatchString(line) ||
		titleCaseRe.MatchString(line)
}

// isLooseCandidate is the fallback filter: medium-length lines that are
// not section headers.
func isLooseCandidate(line string) bool {
	n := utf8.RuneCountInString(line)
	return n > 5 && n < 100 && !looseBlocklist.MatchString(line)
}

// ExtractEssential keeps only the lines of text that carry recipe
// information. When fewer than ten lines qualify, medium-length lines are
// kept as well, in document order. The result is capped at 1000 lines and
// 30000 characters. It never returns "": with nothing usable it returns
// NoContentMarker.
func ExtractEssential(text string) string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); utf8.RuneCountInString(l) >= 3 {
			lines = append(lines, l)
		}
	}

	var kept []string
	for _, l := range lines {
		if isEssential(l) {
			kept = append(kept, l)
		}
	}

	if len(kept) < minStrictLines {
		kept = kept[:0]
		for _, l := range lines {
			if isEssential(l) || isLooseCandidate(l) {
				kept = append(kept, l)
			}
		}
	}

	if len(kept) > maxEssentialLines {
		kept = kept[:maxEssentialLines]
	}

	result, _ := Truncate(strings.Join(kept, "\n"), maxEssentialRunes, ContentTruncatedMarker)
	if result == "" {
		return NoContentMarker
	}
	return result
}
