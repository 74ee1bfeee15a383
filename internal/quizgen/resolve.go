package quizgen

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/menuquiz/internal/catalog"
)

// GenerateParams is an unvalidated generation request as it arrives from
// the HTTP API or the command line.
type GenerateParams struct {
	MenuText      string   `json:"menuText"`
	Role          string   `json:"role"`
	Area          string   `json:"area,omitempty"`
	Language      string   `json:"language,omitempty"`
	QuestionCount int      `json:"questionCount,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	QuestionTypes []string `json:"questionTypes,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// ResolveRequest validates p against the catalog and the count bounds in
// cfg and returns a Request ready for Generate. A zero count and an empty
// language take their defaults. Every failure is an *InputError.
func ResolveRequest(cat *catalog.Catalog, cfg Config, p GenerateParams) (Request, error) {
	if utf8.RuneCountInString(strings.TrimSpace(p.MenuText)) < cfg.MinMenuChars {
		return Request{}, inputErrorf("menuText", "must be at least %d characters", cfg.MinMenuChars)
	}

	count := p.QuestionCount
	if count == 0 {
		count = cfg.DefaultCount
	}
	if count < cfg.MinCount || count > cfg.MaxCount {
		return Request{}, inputErrorf("questionCount", "must be between %d and %d, got %d", cfg.MinCount, cfg.MaxCount, count)
	}

	lang := p.Language
	if lang == "" {
		lang = catalog.DefaultLanguage
	}
	if !cat.SupportsLanguage(lang) {
		return Request{}, inputErrorf("language", "unsupported language %q", lang)
	}

	if p.Role == "" {
		return Request{}, inputErrorf("role", "is required")
	}
	sel, err := cat.Resolve(p.Role, p.Area, p.Categories)
	if err != nil {
		return Request{}, &InputError{Field: selectionField(err), Err: err}
	}

	var types []QuestionType
	for _, t := range p.QuestionTypes {
		if !cat.IsQuestionType(t) {
			return Request{}, inputErrorf("questionTypes", "unknown question type %q", t)
		}
		types = append(types, QuestionType(t))
	}

	if p.Difficulty != "" && !cat.IsDifficulty(p.Difficulty) {
		return Request{}, inputErrorf("difficulty", "unknown difficulty %q", p.Difficulty)
	}

	return Request{
		MenuText:      p.MenuText,
		Role:          sel.Role,
		Area:          sel.Area,
		Language:      lang,
		Count:         count,
		Categories:    sel.CategoryIDs(),
		QuestionTypes: types,
		Difficulty:    Difficulty(p.Difficulty),
	}, nil
}

func selectionField(err error) string {
	switch {
	case errors.Is(err, catalog.ErrAreaRequired), errors.Is(err, catalog.ErrUnknownArea):
		return "area"
	case errors.Is(err, catalog.ErrNoCategories):
		return "categories"
	default:
		return "role"
	}
}
