package quizgen

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEscapeTextValues(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"inner quotes",
			`{"question_text": "What does "al dente" mean?", "category": "x"}`,
			`{"question_text": "What does \"al dente\" mean?", "category": "x"}`,
		},
		{
			"raw newline",
			"{\"text\": \"line one\nline two\"}",
			`{"text": "line one line two"}`,
		},
		{
			"already escaped",
			`{"text": "say \"hi\""}`,
			`{"text": "say \"hi\""}`,
		},
		{
			"other keys untouched",
			`{"category": "a "b" c"}`,
			`{"category": "a "b" c"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeTextValues(tt.in); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestSyntaxFixes(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"missing comma", insertMissingCommas, `[{"a":1} {"b":2}]`, `[{"a":1},{"b":2}]`},
		{"missing comma inside string", insertMissingCommas, `["} {"]`, `["} {"]`},
		{"single quotes", quoteSingleQuotedValues, `{"category": 'menu', "x": 1}`, `{"category": "menu", "x": 1}`},
		{"single quotes with double inside", quoteSingleQuotedValues, `{"a": 'say "hi"'}`, `{"a": "say \"hi\""}`},
		{"apostrophe in string", quoteSingleQuotedValues, `{"a": "it's"}`, `{"a": "it's"}`},
		{"trailing comma", stripTrailingCommas, `[1, 2, ]`, `[1, 2 ]`},
		{"trailing comma in string", stripTrailingCommas, `{"a": "x, }"}`, `{"a": "x, }"}`},
		{"control chars", replaceControlChars, "{\"a\": \"x\ty\"}", `{"a": "x y"}`},
		{"control chars outside strings", replaceControlChars, "{\t\"a\": 1}", "{\t\"a\": 1}"},
		{"booleans", lowercaseBooleans, `{"correct": True, "x": "True"}`, `{"correct": true, "x": "True"}`},
		{"boolean prefix", lowercaseBooleans, `{"a": Falsey}`, `{"a": Falsey}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestRepairSyntax_ProducesValidJSON(t *testing.T) {
	in := `[
  {"question_text": "Is the "Margherita" baked at 300°C?", "question_type": "yes_no", "options": [{"text": "Sí", "correct": True}, {"text": 'No', "correct": False},],}
  {"question_text": "Second", "question_type": "yes_no", "options": []}
]`
	out, err := repairSyntax(in)
	if err != nil {
		t.Fatalf("repairSyntax: %v", err)
	}
	var v []map[string]any
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("repaired output is not valid JSON: %v\n%s", err, out)
	}
	if len(v) != 2 {
		t.Fatalf("got %d elements, want 2", len(v))
	}
	if v[0]["question_text"] != `Is the "Margherita" baked at 300°C?` {
		t.Errorf("question_text = %v", v[0]["question_text"])
	}
}

func TestTruncateToLastObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[{"a":1},{"b":2},{"c":`, `[{"a":1},{"b":2}]`},
		{`[{"a":{"x":1}},{"b"`, `[{"a":{"x":1}}]`},
		{`[{"a":"}"},{"b":`, `[{"a":"}"}]`},
	}
	for _, tt := range tests {
		got, err := truncateToLastObject(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("truncateToLastObject(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	for _, in := range []string{`[{"a":`, `{"a":1}`, ``} {
		if _, err := truncateToLastObject(in); !errors.Is(err, errNoCompleteObject) {
			t.Errorf("truncateToLastObject(%q) err = %v, want errNoCompleteObject", in, err)
		}
	}
}

func TestExtractQuestionObjects(t *testing.T) {
	in := `Question 1: {"question_text":"A","question_type":"yes_no","options":[]}
noise {"unrelated": true}
Question 2: {"question_text":"B","question_type":"multiple_choice","options":[{"text":"x","correct":true}]}
Question 3: {"question_text":"C","question_type": broken}`

	out, err := extractQuestionObjects(in)
	if err != nil {
		t.Fatalf("extractQuestionObjects: %v", err)
	}
	var v []map[string]any
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid output: %v", err)
	}
	if len(v) != 2 || v[0]["question_text"] != "A" || v[1]["question_text"] != "B" {
		t.Errorf("got %v", v)
	}

	if _, err := extractQuestionObjects(`{"a":1}`); !errors.Is(err, errNoQuestionObjects) {
		t.Errorf("err = %v, want errNoQuestionObjects", err)
	}
}

func TestRebuildFromLines(t *testing.T) {
	in := `[
  {
    "question_text": "What is on the Margherita?",
    "question_type": "multiple_choice",
    "category": "ingredientes_pizza",
    "options": [ broken
  },
  {
    "question_text": "Only two fields",
    "question_type": "yes_no",
  },
  {
    "question_text": "Is burrata served warm?",
    "question_type": "yes_no",
    "difficulty": "facil",
    "options": [ "Sí" "No"
  }
]`
	out, err := rebuildFromLines(in)
	if err != nil {
		t.Fatalf("rebuildFromLines: %v", err)
	}
	var v []map[string]any
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid output: %v", err)
	}
	// The second object carries its two fields into the third, which then
	// overwrites them.
	if len(v) != 2 {
		t.Fatalf("got %d records, want 2: %s", len(v), out)
	}
	if v[0]["category"] != "ingredientes_pizza" || v[1]["difficulty"] != "facil" {
		t.Errorf("got %v", v)
	}
	if v[1]["question_text"] != "Is burrata served warm?" {
		t.Errorf("question_text = %v", v[1]["question_text"])
	}
	if opts, ok := v[0]["options"].([]any); !ok || len(opts) != 0 {
		t.Errorf("options = %v, want []", v[0]["options"])
	}

	if _, err := rebuildFromLines("no fields here"); !errors.Is(err, errNothingToRebuild) {
		t.Errorf("err = %v, want errNothingToRebuild", err)
	}
}
