package quizgen

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// repairSyntax applies the textual fixes for the mistakes models make most
// often, in order: unescaped quotes and raw line breaks inside question
// and option text, missing commas between objects, single-quoted values,
// trailing commas, control characters inside strings and capitalized
// booleans. All but the first only touch text outside string literals.
func repairSyntax(s string) (string, error) {
	s = escapeTextValues(s)
	s = insertMissingCommas(s)
	s = quoteSingleQuotedValues(s)
	s = stripTrailingCommas(s)
	s = replaceControlChars(s)
	s = lowercaseBooleans(s)
	return s, nil
}

var textValueStart = regexp.MustCompile(`"(?:question_text|text)"\s*:\s*"`)

// escapeTextValues escapes stray double quotes and replaces raw line
// breaks in question_text and text values. A value ends at the first quote
// followed by '}', ']' or a ',' that leads to another key or object.
func escapeTextValues(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	i := 0
	for i < len(s) {
		loc := textValueStart.FindStringIndex(s[i:])
		if loc == nil {
			b.WriteString(s[i:])
			break
		}
		start := i + loc[1]
		b.WriteString(s[i:start])

		end := textValueEnd(s, start)
		if end < 0 {
			b.WriteString(s[start:])
			break
		}
		writeEscaped(&b, s[start:end])
		i = end
	}
	return b.String()
}

func textValueEnd(s string, start int) int {
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			k := skipSpace(s, j+1)
			if k == len(s) {
				return j
			}
			switch s[k] {
			case '}', ']':
				return j
			case ',':
				m := skipSpace(s, k+1)
				if m == len(s) || s[m] == '"' || s[m] == '{' {
					return j
				}
			}
		}
	}
	return -1
}

func writeEscaped(b *strings.Builder, v string) {
	for j := 0; j < len(v); j++ {
		switch c := v[j]; c {
		case '\\':
			b.WriteByte(c)
			if j+1 < len(v) {
				j++
				b.WriteByte(v[j])
			}
		case '"':
			b.WriteString(`\"`)
		case '\n', '\r', '\t':
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
}

// rewriteOutsideStrings copies s, offering fn every position outside a
// string literal. fn writes its replacement and returns the number of
// bytes consumed, or 0 to copy the byte unchanged.
func rewriteOutsideStrings(s string, fn func(b *strings.Builder, s string, i int) int) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}
		if n := fn(&b, s, i); n > 0 {
			i += n
			continue
		}
		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func insertMissingCommas(s string) string {
	return rewriteOutsideStrings(s, func(b *strings.Builder, s string, i int) int {
		if s[i] != '}' {
			return 0
		}
		j := skipSpace(s, i+1)
		if j < len(s) && s[j] == '{' {
			b.WriteString("},")
			return j - i
		}
		return 0
	})
}

func quoteSingleQuotedValues(s string) string {
	return rewriteOutsideStrings(s, func(b *strings.Builder, s string, i int) int {
		if s[i] != '\'' || !afterColon(s, i) {
			return 0
		}
		for j := i + 1; j < len(s); j++ {
			if s[j] != '\'' {
				continue
			}
			k := skipSpace(s, j+1)
			if k == len(s) || s[k] == ',' || s[k] == '}' || s[k] == ']' {
				b.WriteByte('"')
				b.WriteString(strings.ReplaceAll(s[i+1:j], `"`, `\"`))
				b.WriteByte('"')
				return j + 1 - i
			}
		}
		return 0
	})
}

func afterColon(s string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch s[j] {
		case ' ', '\n', '\r', '\t':
			continue
		case ':':
			return true
		default:
			return false
		}
	}
	return false
}

func stripTrailingCommas(s string) string {
	return rewriteOutsideStrings(s, func(_ *strings.Builder, s string, i int) int {
		if s[i] != ',' {
			return 0
		}
		j := skipSpace(s, i+1)
		if j < len(s) && (s[j] == '}' || s[j] == ']') {
			return 1
		}
		return 0
	})
}

func lowercaseBooleans(s string) string {
	return rewriteOutsideStrings(s, func(b *strings.Builder, s string, i int) int {
		for _, lit := range []string{"True", "False"} {
			if strings.HasPrefix(s[i:], lit) && afterColon(s, i) && !identByte(s, i+len(lit)) {
				b.WriteString(strings.ToLower(lit))
				return len(lit)
			}
		}
		return 0
	})
}

func identByte(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// replaceControlChars turns raw control characters inside string literals
// into spaces.
func replaceControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case !inString:
			if c == '"' {
				inString = true
			}
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = false
		case c < 0x20:
			c = ' '
		}
		b.WriteByte(c)
	}
	return b.String()
}

var errNoCompleteObject = errors.New("no complete object before truncation point")

// truncateToLastObject cuts s after the last array element that closed
// completely and closes the array.
func truncateToLastObject(s string) (string, error) {
	depth := 0
	last := -1
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']':
			depth--
		case '}':
			depth--
			if depth == 1 {
				last = i
			}
		}
	}
	if last <= 0 {
		return "", errNoCompleteObject
	}
	return s[:last+1] + "]", nil
}

var errNoQuestionObjects = errors.New("no complete question objects found")

// extractQuestionObjects collects every well-formed object that carries
// both question_text and question_type, wherever it sits in s.
func extractQuestionObjects(s string) (string, error) {
	var found []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end := matchingClose(s, i)
		if end < 0 {
			continue
		}
		obj := s[i : end+1]
		if strings.Count(obj, `"question_text"`) == 1 && strings.Contains(obj, `"question_type"`) && json.Valid([]byte(obj)) {
			found = append(found, obj)
			i = end
		}
	}
	if len(found) == 0 {
		return "", errNoQuestionObjects
	}
	return "[" + strings.Join(found, ",") + "]", nil
}

var (
	rebuildFields = []string{"question_text", "question_type", "category", "difficulty"}
	rebuildValue  = make(map[string]*regexp.Regexp, len(rebuildFields))

	errNothingToRebuild = errors.New("no question fields found")
)

func init() {
	for _, f := range rebuildFields {
		rebuildValue[f] = regexp.MustCompile(`"` + f + `"\s*:\s*"([^"]*)"`)
	}
}

// rebuildFromLines is the last resort: it reads the four scalar question
// fields line by line and emits a record at every closing brace line that
// follows at least three of them. Options are lost.
func rebuildFromLines(s string) (string, error) {
	var records []map[string]any
	current := map[string]any{}

	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, f := range rebuildFields {
			if m := rebuildValue[f].FindStringSubmatch(trimmed); m != nil {
				current[f] = m[1]
			}
		}
		if (trimmed == "}" || trimmed == "},") && len(current) >= 3 {
			current["options"] = []any{}
			records = append(records, current)
			current = map[string]any{}
		}
	}

	if len(records) == 0 {
		return "", errNothingToRebuild
	}
	out, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
