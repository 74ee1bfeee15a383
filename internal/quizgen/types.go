package quizgen

import (
	"github.com/abhisek/menuquiz/internal/catalog"
	"github.com/abhisek/menuquiz/internal/menutext"
)

// Question is one generated quiz question. Questions are built only from
// model output and are never mutated after parsing.
type Question struct {
	// ID is unique within a generation run: role, run timestamp and a
	// running index.
	ID string `json:"id"`

	// Text is the question prompt shown to the staff member.
	Text string `json:"question_text"`

	// Type is normally "multiple_choice" or "yes_no". The model's value is
	// kept as is.
	Type QuestionType `json:"question_type"`

	// Category should be one of the requested categories but is not
	// checked against them.
	Category string `json:"category"`

	Difficulty Difficulty `json:"difficulty"`

	// TargetRole and Language always come from the request, never from the
	// model.
	TargetRole string `json:"target_role"`
	Language   string `json:"language"`

	// Options holds 4 entries for multiple choice and 2 for yes/no, with
	// one correct. The cardinality is asked of the model, not enforced.
	Options []Option `json:"options"`
}

// Option is one answer choice.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// QuestionType describes how a question is answered.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeYesNo          QuestionType = "yes_no"
)

// Difficulty is the question's difficulty code.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "facil"
	DifficultyMedium Difficulty = "medio"
	DifficultyHard   Difficulty = "dificil"
)

// Request holds everything needed to generate one set of questions. Build
// it with ResolveRequest to get validated role, area and categories.
type Request struct {
	// MenuText is the raw source text. It is normalized and budgeted
	// before it reaches the prompt.
	MenuText string

	Role catalog.Role

	// Area is set only for roles split into areas.
	Area *catalog.Area

	Language string

	// Count is the number of questions wanted.
	Count int

	// Categories are category IDs, in prompt order.
	Categories []string

	// QuestionTypes and Difficulty narrow the prompt when set.
	QuestionTypes []QuestionType
	Difficulty    Difficulty
}

// Result is the outcome of a generation run.
type Result struct {
	// RunID identifies the run; every LLM call made for it is recorded
	// under this ID.
	RunID string `json:"run_id"`

	Questions []Question `json:"questions"`

	// Requested is the count asked for. len(Questions) is lower only when
	// a batch run ran out of attempts.
	Requested int `json:"requested"`

	// Attempts is the number of completion calls made.
	Attempts int `json:"attempts"`

	// Batched is set when the count exceeded the batch threshold.
	Batched bool `json:"batched"`

	// Source describes how the menu text was reduced for the prompt.
	Source SourceStats `json:"source"`
}

// SourceStats reports what preparation did to the menu text.
type SourceStats struct {
	OriginalTokens int  `json:"original_tokens"`
	PromptTokens   int  `json:"prompt_tokens"`
	Essential      bool `json:"essential_only"`
	Truncated      bool `json:"truncated"`
}

func sourceStats(p menutext.Prepared, budgeted string) SourceStats {
	return SourceStats{
		OriginalTokens: p.OriginalTokens,
		PromptTokens:   menutext.EstimateTokens(budgeted),
		Essential:      p.Essential,
		Truncated:      budgeted != p.Text,
	}
}
