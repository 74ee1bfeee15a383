package pdftext

import "strings"

// DefaultLanguage is reported when no keywords match.
const DefaultLanguage = "en"

var languageKeywords = []struct {
	lang     string
	keywords []string
}{
	{"es", []string{"menú", "carta", "plato", "bebida", "precio", "restaurante", "comida", "postre", "entrada", "principal"}},
	{"en", []string{"menu", "dish", "drink", "price", "restaurant", "food", "dessert", "appetizer", "main"}},
	{"pt", []string{"cardápio", "prato", "bebida", "preço", "restaurante", "comida", "sobremesa", "entrada", "principal"}},
	{"fr", []string{"carte", "plat", "boisson", "prix", "entrée", "fromage", "viande", "poisson", "cuisson"}},
}

// DetectLanguage guesses the language of menu text by counting which
// language's menu vocabulary appears most. Ties go to the language listed
// first.
func DetectLanguage(text string) string {
	text = strings.ToLower(text)

	best, bestHits := DefaultLanguage, 0
	for _, l := range languageKeywords {
		hits := 0
		for _, kw := range l.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = l.lang, hits
		}
	}
	return best
}
