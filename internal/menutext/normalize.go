// Package menutext cleans raw menu and recipe-book text and fits it into
// the model's context budget.
package menutext

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Step is one pure transformation in the normalization pipeline.
type Step struct {
	Name  string
	Apply func(string) string
}

// pipeline order matters: the charset filter and unit joining run before
// the OCR merge so that merged tokens never form new unit patterns, and
// boilerplate is removed after the merge so that markers split by OCR are
// caught. A marker glued to a unit ("1 kgSOMMAIRE") hides the unit until
// the marker is gone, so units are joined once more afterwards.
var pipeline = []Step{
	{"charset", FilterCharset},
	{"units", JoinUnits},
	{"ocr-merge", MergeOCRFragments},
	{"boilerplate", StripBoilerplate},
	{"index-lines", StripIndexLines},
	{"rejoin-units", JoinUnits},
	{"whitespace", CollapseWhitespace},
	{"blank-lines", CollapseBlankLines},
	{"short-lines", DropShortLines},
	{"trim", strings.TrimSpace},
}

// Steps returns the normalization pipeline in execution order.
func Steps() []Step {
	return append([]Step(nil), pipeline...)
}

// Normalize runs every pipeline step over text. It never fails; text with
// no usable content normalizes to "". Normalize is idempotent.
func Normalize(text string) string {
	for _, s := range pipeline {
		text = s.Apply(text)
	}
	return text
}

const allowedPunct = `°%€$£¥.,;:!?()[]{}'"/-`

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// FilterCharset unifies line endings, turns every other whitespace rune
// into a plain space and drops runes that are not letters, digits,
// underscores or common punctuation and currency symbols.
func FilterCharset(text string) string {
	text = lineEndings.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		case strings.ContainsRune(allowedPunct, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

var unitSpacing = regexp.MustCompile(`(\d) +(kg|mg|g|ml|cl|dl|L|l|°C|°F|%)([^\p{L}]|$)`)

// JoinUnits removes the spaces between a number and the unit after it:
// "200 g" becomes "200g".
func JoinUnits(text string) string {
	// A match consumes the rune after the unit, so run until stable to
	// catch adjacent quantities such as "1 l 2 g".
	for {
		next := unitSpacing.ReplaceAllString(text, "${1}${2}${3}")
		if next == text {
			return next
		}
		text = next
	}
}

// MergeOCRFragments rejoins words that OCR split into single lowercase
// letters. A run of two or more single-letter tokens is joined, and a
// single letter directly before a lowercase word is glued onto it, so
// "e speck" becomes "especk" and "s a l t" becomes "salt". Runs that
// follow a number are left alone so units stay separable.
func MergeOCRFragments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = mergeLine(line)
	}
	return strings.Join(lines, "\n")
}

func mergeLine(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return line
	}

	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if !isSingleLower(tokens[i]) {
			out = append(out, tokens[i])
			i++
			continue
		}

		j := i
		for j < len(tokens) && isSingleLower(tokens[j]) {
			j++
		}
		if i > 0 && endsWithDigit(tokens[i-1]) {
			out = append(out, tokens[i:j]...)
			i = j
			continue
		}
		merged := strings.Join(tokens[i:j], "")
		if j < len(tokens) && startsLower(tokens[j]) {
			merged += tokens[j]
			j++
		} else if j-i == 1 {
			out = append(out, tokens[i])
			i++
			continue
		}
		out = append(out, merged)
		i = j
	}
	return strings.Join(out, " ")
}

func isSingleLower(tok string) bool {
	r, size := utf8.DecodeRuneInString(tok)
	return size == len(tok) && unicode.IsLower(r)
}

func startsLower(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsLower(r)
}

func endsWithDigit(tok string) bool {
	r, _ := utf8.DecodeLastRuneInString(tok)
	return unicode.IsDigit(r)
}

var (
	// Section headers: everything from the marker to the end of its line
	// goes, the line break stays.
	boilerplateMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)BOOK +FICHES +RECETTES[^\n]*`),
		regexp.MustCompile(`(?i)SOMMAIRE[^\n]*`),
		regexp.MustCompile(`(?i)PRÉPARATIONS +EN +MISE +EN +PLACE[^\n]*`),
		regexp.MustCompile(`(?i)CONTENANTS/[^\n]*`),
		regexp.MustCompile(`(?i)LISTE +DES +RECETTES[^\n]*`),
		regexp.MustCompile(`(?i)\bPOSTE\b[^\n]*`),
	}

	// Area titles repeated on every page.
	repeatedTitle = regexp.MustCompile(`(?im)^ *(Pizza|Pizzetta|Calzone|Rotolini) *$`)
)

// StripBoilerplate removes recipe-book section headers and repeated area
// titles.
func StripBoilerplate(text string) string {
	for _, re := range boilerplateMarkers {
		text = re.ReplaceAllString(text, "")
	}
	return repeatedTitle.ReplaceAllString(text, "")
}

var (
	numeralLine = regexp.MustCompile(`^ *\d+ *$`)
	romanLine   = regexp.MustCompile(`(?i)^ *[ivxlc]+\. *$`)
)

// StripIndexLines blanks lines that hold only a page number, a roman
// numeral index or punctuation.
func StripIndexLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if numeralLine.MatchString(line) || romanLine.MatchString(line) || symbolsOnly(line) {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

func symbolsOnly(line string) bool {
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return false
		}
	}
	return true
}

var spaceRun = regexp.MustCompile(` {2,}`)

// CollapseWhitespace squeezes space runs to one space and trims each line.
func CollapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

var blankRun = regexp.MustCompile(`\n{3,}`)

// CollapseBlankLines limits consecutive blank lines to one.
func CollapseBlankLines(text string) string {
	return blankRun.ReplaceAllString(text, "\n\n")
}

var lettersOnly = regexp.MustCompile(`^\p{L}+$`)

// DropShortLines removes lines of fewer than three characters unless they
// are purely alphabetic, which keeps short dish-name fragments. Blank
// lines count as short.
func DropShortLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if utf8.RuneCountInString(line) > 2 || lettersOnly.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
