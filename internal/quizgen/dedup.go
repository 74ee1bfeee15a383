package quizgen

import "strings"

// dedupKey is the identity of a question within a run: its text, trimmed
// and lowercased. Reworded near-duplicates are not caught.
func dedupKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

type seenTexts map[string]struct{}

// appendUnique appends the questions of batch whose text has not been
// seen, marking them seen. It returns the extended slice and the number of
// duplicates dropped.
func appendUnique(dst []Question, seen seenTexts, batch []Question) ([]Question, int) {
	dropped := 0
	for _, q := range batch {
		k := dedupKey(q.Text)
		if _, dup := seen[k]; dup {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, q)
	}
	return dst, dropped
}
