package quizgen

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var fencedArray = regexp.MustCompile("(?is)```(?:json)?\\s*(\\[.*?\\])\\s*```")

// extractArray locates the question array in a model reply. It tries, in
// order: the first array of objects if it is balanced, a fenced
// code block holding an array, the span from the first '[' to the last
// ']', and finally everything from the first array opening to the end of
// the text, which is what a reply cut off at the token limit looks like.
// An object opening after the last ']' also marks a cut-off reply.
func extractArray(s string) (string, bool) {
	first := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '[' && opensObjectList(s, i) {
			first = i
			break
		}
	}
	// Arrays nested in an unclosed one are option lists, not the answer.
	if first >= 0 {
		if end := matchingClose(s, first); end >= 0 {
			return s[first : end+1], true
		}
	}

	if m := fencedArray.FindStringSubmatch(s); m != nil {
		return m[1], true
	}

	if lo, hi := strings.IndexByte(s, '['), strings.LastIndexByte(s, ']'); lo >= 0 && lo < hi &&
		(first < 0 || !strings.ContainsRune(s[hi:], '{')) {
		return s[lo : hi+1], true
	}

	if first >= 0 {
		return s[first:], true
	}
	return "", false
}

// opensObjectList reports whether the '[' at i is followed by an object,
// ignoring whitespace.
func opensObjectList(s string, i int) bool {
	j := skipSpace(s, i+1)
	return j < len(s) && s[j] == '{'
}

// matchingClose returns the index of the bracket closing the one at start,
// skipping brackets inside string literals, or -1 if it never closes.
func matchingClose(s string, start int) int {
	opener, closer := s[start], byte(']')
	if opener == '{' {
		closer = '}'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\n' || s[i] == '\r' || s[i] == '\t') {
		i++
	}
	return i
}

// preview returns the first n bytes of s, cut on a rune boundary.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
