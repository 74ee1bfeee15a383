package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const previewBytes = 300

var (
	errNoArray    = errors.New("no JSON array found in response")
	errEmptyArray = errors.New("repair produced an empty array")
)

// repairStrategy turns the extracted array text, or the whole reply when
// wholeReply is set, into a candidate JSON document. Strategies run in
// order and the first candidate that parses as a non-empty array wins.
type repairStrategy struct {
	name       string
	fn         func(string) (string, error)
	wholeReply bool
}

var strategies = []repairStrategy{
	{name: "direct", fn: func(s string) (string, error) { return s, nil }},
	{name: "syntactic-repair", fn: repairSyntax},
	{name: "truncation-repair", fn: truncateToLastObject},
	{name: "pattern-extraction", fn: extractQuestionObjects, wholeReply: true},
	{name: "line-rebuild", fn: rebuildFromLines, wholeReply: true},
}

// parseArray recovers the array elements of a model reply. It reports the
// name of the strategy that succeeded. Only the direct parse may return an
// empty array.
func parseArray(raw string) ([]json.RawMessage, string, error) {
	span, ok := extractArray(raw)
	var firstErr error
	if !ok {
		span = raw
		firstErr = errNoArray
	}

	for i, st := range strategies {
		input := span
		if st.wholeReply {
			input = raw
		}
		candidate, err := st.fn(input)
		if err == nil {
			var elems []json.RawMessage
			if err = json.Unmarshal([]byte(candidate), &elems); err == nil {
				if i == 0 || len(elems) > 0 {
					return elems, st.name, nil
				}
				err = errEmptyArray
			}
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return nil, "", &UnparsableResponseError{
		Err:     firstErr,
		Preview: preview(strings.TrimSpace(raw), previewBytes),
	}
}

// recordMeta is the call context stamped onto every parsed question.
type recordMeta struct {
	role      string
	language  string
	runMillis int64
}

// Parse extracts the questions from a raw model reply for role and
// language. It fails with *UnparsableResponseError when every repair
// strategy is exhausted.
func Parse(raw, role, language string) ([]Question, error) {
	qs, _, err := parseQuestions(raw, recordMeta{role: role, language: language, runMillis: time.Now().UnixMilli()}, 0)
	return qs, err
}

// parseQuestions parses raw and maps the elements to questions whose ID
// indexes start at offset.
func parseQuestions(raw string, meta recordMeta, offset int) ([]Question, string, error) {
	elems, strategy, err := parseArray(raw)
	if err != nil {
		return nil, "", err
	}
	return mapQuestions(elems, meta, offset), strategy, nil
}

// mapQuestions converts array elements to questions. Elements that are
// not objects are skipped.
func mapQuestions(elems []json.RawMessage, meta recordMeta, offset int) []Question {
	qs := make([]Question, 0, len(elems))
	for _, raw := range elems {
		r := gjson.ParseBytes(raw)
		if !r.IsObject() {
			continue
		}
		qs = append(qs, mapQuestion(r, meta, offset+len(qs)))
	}
	return qs
}

func mapQuestion(r gjson.Result, meta recordMeta, index int) Question {
	return Question{
		ID:         fmt.Sprintf("%s_%d_%d", meta.role, meta.runMillis, index),
		Text:       firstString(r, "No question text", "question_text", "text"),
		Type:       QuestionType(firstString(r, string(TypeMultipleChoice), "question_type", "type")),
		Category:   firstString(r, "general", "category"),
		Difficulty: Difficulty(firstString(r, string(DifficultyMedium), "difficulty")),
		TargetRole: meta.role,
		Language:   meta.language,
		Options:    mapOptions(r.Get("options")),
	}
}

// firstString returns the first non-empty value among keys, or def.
func firstString(r gjson.Result, def string, keys ...string) string {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return def
}

// mapOptions accepts {text, correct} objects, with correct as a boolean
// or the string "true", and bare strings. It never returns nil.
func mapOptions(r gjson.Result) []Option {
	opts := []Option{}
	if !r.IsArray() {
		return opts
	}
	for _, o := range r.Array() {
		switch {
		case o.IsObject():
			c := o.Get("correct")
			opts = append(opts, Option{
				Text:    o.Get("text").String(),
				Correct: c.Type == gjson.True || (c.Type == gjson.String && strings.EqualFold(strings.TrimSpace(c.Str), "true")),
			})
		case o.Type == gjson.String:
			opts = append(opts, Option{Text: o.Str})
		}
	}
	return opts
}
