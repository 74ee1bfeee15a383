package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abhisek/menuquiz/internal/llm"
	"github.com/abhisek/menuquiz/internal/quizgen"
	"github.com/abhisek/menuquiz/internal/store"
)

type generateMetadata struct {
	TotalQuestions int                 `json:"total_questions"`
	Requested      int                 `json:"requested"`
	Role           string              `json:"role"`
	Area           *string             `json:"area"`
	Language       string              `json:"language"`
	CategoriesUsed []string            `json:"categories_used"`
	RunID          string              `json:"run_id"`
	Attempts       int                 `json:"attempts"`
	Batched        bool                `json:"batched"`
	Source         quizgen.SourceStats `json:"source"`
}

type generateResponse struct {
	Questions []quizgen.Question `json:"questions"`
	Metadata  generateMetadata   `json:"metadata"`
}

func (s *Server) generate(c *fiber.Ctx) error {
	var params quizgen.GenerateParams
	if err := c.BodyParser(&params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req, err := quizgen.ResolveRequest(s.catalog, s.gen.Config(), params)
	if err != nil {
		return err
	}

	res, err := s.gen.Generate(c.UserContext(), req)
	if err != nil {
		return err
	}
	if len(res.Questions) != req.Count {
		s.log.Warn("question count differs from request",
			zap.String("run_id", res.RunID),
			zap.Int("requested", req.Count),
			zap.Int("generated", len(res.Questions)))
	}

	meta := generateMetadata{
		TotalQuestions: len(res.Questions),
		Requested:      req.Count,
		Role:           req.Role.ID,
		Language:       req.Language,
		CategoriesUsed: req.Categories,
		RunID:          res.RunID,
		Attempts:       res.Attempts,
		Batched:        res.Batched,
		Source:         res.Source,
	}
	if req.Area != nil {
		meta.Area = &req.Area.ID
	}
	questions := res.Questions
	if questions == nil {
		questions = []quizgen.Question{}
	}
	return c.JSON(success(generateResponse{Questions: questions, Metadata: meta}))
}

type usageRow struct {
	store.UsageStat
	CostUSD *float64 `json:"cost_usd,omitempty"`
}

type usageStats struct {
	ByPurpose []usageRow `json:"by_purpose"`
	ByModel   []usageRow `json:"by_model"`
}

type statsResponse struct {
	BatchThreshold         int         `json:"batch_threshold"`
	BatchSize              int         `json:"batch_size"`
	MaxQuestionsPerRequest int         `json:"max_questions_per_request"`
	SupportedQuestionTypes []string    `json:"supported_question_types"`
	Recommendations        []string    `json:"recommendations"`
	Usage                  *usageStats `json:"usage,omitempty"`
}

func (s *Server) stats(c *fiber.Ctx) error {
	cfg := s.gen.Config()

	types := make([]string, len(s.catalog.QuestionTypes))
	for i, t := range s.catalog.QuestionTypes {
		types[i] = t.ID
	}

	resp := statsResponse{
		BatchThreshold:         cfg.BatchThreshold,
		BatchSize:              cfg.BatchSize,
		MaxQuestionsPerRequest: cfg.MaxCount,
		SupportedQuestionTypes: types,
		Recommendations:        recommendations(cfg),
	}

	if s.usage != nil {
		ctx := c.UserContext()
		byPurpose, err := s.usage.LLMUsageByPurpose(ctx)
		if err != nil {
			return err
		}
		byModel, err := s.usage.LLMUsageByModel(ctx)
		if err != nil {
			return err
		}
		resp.Usage = &usageStats{ByPurpose: usageRows(byPurpose, false), ByModel: usageRows(byModel, true)}
	}
	return c.JSON(success(resp))
}

func recommendations(cfg quizgen.Config) []string {
	return []string{
		fmt.Sprintf("Request up to %d questions per call for the fastest response", cfg.BatchThreshold),
		fmt.Sprintf("Larger counts are generated automatically in batches of %d", cfg.BatchSize),
		"Duplicate questions are filtered automatically",
	}
}

// usageRows attaches a cost estimate when the rows are keyed by model.
func usageRows(stats []store.UsageStat, priced bool) []usageRow {
	rows := make([]usageRow, len(stats))
	for i, st := range stats {
		rows[i].UsageStat = st
		if !priced {
			continue
		}
		if mc := llm.LookupCost(st.Key); mc != nil {
			cost := mc.Cost(st.InputTokens, st.OutputTokens)
			rows[i].CostUSD = &cost
		}
	}
	return rows
}
