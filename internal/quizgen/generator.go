package quizgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/abhisek/menuquiz/internal/llm"
	"github.com/abhisek/menuquiz/internal/logger"
	"github.com/abhisek/menuquiz/internal/menutext"
)

const (
	purposeSingle = "question-gen"
	purposeBatch  = "question-batch"
)

// Preparer turns raw menu text into prompt-ready text.
type Preparer interface {
	Prepare(ctx context.Context, raw string) (menutext.Prepared, error)
}

// PrepareFunc adapts a function to Preparer.
type PrepareFunc func(ctx context.Context, raw string) (menutext.Prepared, error)

func (f PrepareFunc) Prepare(ctx context.Context, raw string) (menutext.Prepared, error) {
	return f(ctx, raw)
}

// LocalPreparer runs menutext.Prepare in process with no caching.
var LocalPreparer Preparer = PrepareFunc(func(_ context.Context, raw string) (menutext.Prepared, error) {
	return menutext.Prepare(raw), nil
})

// Generator produces quiz questions from menu text using an LLM provider.
// It holds no per-request state and is safe for concurrent use.
type Generator struct {
	provider llm.Provider
	config   Config
	preparer Preparer
	log      *zap.Logger

	// Seams for tests.
	jitter func() float64
	sleep  func(context.Context, time.Duration) error
	now    func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithPreparer replaces the menu text preparation step, e.g. with a
// caching one.
func WithPreparer(p Preparer) Option {
	return func(g *Generator) { g.preparer = p }
}

// WithLogger sets the logger. The default is logger.Get().
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New creates a Generator.
func New(provider llm.Provider, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		provider: provider,
		config:   cfg,
		preparer: LocalPreparer,
		log:      logger.Get(),
		jitter:   rand.Float64,
		sleep:    sleepWithCtx,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the generator's settings.
func (g *Generator) Config() Config {
	return g.config
}

// Generate prepares the menu text, fits it to the context budget and
// generates req.Count questions. Counts above the batch threshold are
// generated in batches and never fail outright; smaller counts use a
// single call and return its error.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	runID := ulid.Make().String()
	ctx = llm.WithRun(ctx, runID)
	log := g.log.With(zap.String("run_id", runID), zap.String("role", req.Role.ID), zap.String("language", req.Language))

	prepared, err := g.preparer.Prepare(ctx, req.MenuText)
	if err != nil {
		return nil, fmt.Errorf("prepare menu text: %w", err)
	}
	if prepared.Text == "" {
		return nil, inputErrorf("menuText", "no usable content after cleaning")
	}

	in := req.promptInput()
	system := SystemPrompt(req.Language)
	menu := menutext.FitToBudget(prepared.Text, system, BuildUserPrompt(menutext.MenuPlaceholder, in))

	res := &Result{
		RunID:     runID,
		Requested: req.Count,
		Source:    sourceStats(prepared, menu),
	}
	log.Info("generating questions",
		zap.Int("count", req.Count),
		zap.Strings("categories", req.Categories),
		zap.Int("original_tokens", res.Source.OriginalTokens),
		zap.Int("prompt_tokens", res.Source.PromptTokens),
		zap.Bool("essential_only", res.Source.Essential),
		zap.Bool("truncated", res.Source.Truncated))

	meta := recordMeta{role: req.Role.ID, language: req.Language, runMillis: g.now().UnixMilli()}

	if req.Count > g.config.BatchThreshold {
		res.Batched = true
		res.Questions, res.Attempts = g.generateBatch(ctx, log, system, menu, in, meta)
		return res, nil
	}

	res.Attempts = 1
	res.Questions, err = g.generateSingle(ctx, log, system, menu, in, meta)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (g *Generator) generateSingle(ctx context.Context, log *zap.Logger, system, menu string, in PromptInput, meta recordMeta) ([]Question, error) {
	ctx = llm.WithPurpose(ctx, purposeSingle)

	req := llm.UserRequest(system, BuildUserPrompt(menu, in), g.config.responseTokens(in.Count), g.config.Temperature)
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	parsed, strategy, err := parseQuestions(resp.Content, meta, 0)
	if err != nil {
		return nil, err
	}

	questions, dropped := appendUnique(nil, seenTexts{}, parsed)
	log.Info("questions generated",
		zap.Int("questions", len(questions)),
		zap.Int("duplicates", dropped),
		zap.String("parse_strategy", strategy))
	if len(questions) != in.Count {
		log.Warn("question count differs from request", zap.Int("requested", in.Count), zap.Int("generated", len(questions)))
	}
	return questions, nil
}

// generateBatch asks for at most BatchSize questions per call until the
// target is reached or attempts run out. Failed calls and unparsable
// replies use up an attempt and the loop moves on. Batches run in sequence
// because each deduplicates against everything collected before it.
func (g *Generator) generateBatch(ctx context.Context, log *zap.Logger, system, menu string, in PromptInput, meta recordMeta) ([]Question, int) {
	ctx = llm.WithPurpose(ctx, purposeBatch)

	total := in.Count
	maxAttempts := g.config.maxAttempts(total)
	seen := seenTexts{}
	var collected []Question
	parsedSoFar := 0
	attempts := 0

	log.Info("batch generation", zap.Int("batch_size", g.config.BatchSize), zap.Int("max_attempts", maxAttempts))

	for len(collected) < total && attempts < maxAttempts {
		attempts++
		batchCount := min(g.config.BatchSize, total-len(collected))
		alog := log.With(zap.Int("attempt", attempts), zap.Int("batch_count", batchCount), zap.Int("collected", len(collected)))

		temperature := g.config.Temperature + g.jitter()*g.config.TemperatureJitter
		req := llm.UserRequest(system, BuildUserPrompt(menu, in.withCount(batchCount)), g.config.BatchResponseTokens, temperature)

		resp, err := g.provider.Generate(ctx, req)
		if err == nil {
			var parsed []Question
			var strategy string
			parsed, strategy, err = parseQuestions(resp.Content, meta, parsedSoFar)
			if err == nil {
				parsedSoFar += len(parsed)
				var dropped int
				collected, dropped = appendUnique(collected, seen, parsed)
				alog.Info("batch completed",
					zap.Int("added", len(parsed)-dropped),
					zap.Int("duplicates", dropped),
					zap.String("parse_strategy", strategy))
			}
		}
		if err != nil {
			if !IsRetryable(err) {
				alog.Error("batch attempt failed, giving up", zap.Error(err))
				break
			}
			alog.Warn("batch attempt failed", zap.Error(err))
		}

		if ctx.Err() != nil {
			log.Warn("batch generation canceled", zap.Error(ctx.Err()))
			break
		}
		if len(collected) < total && attempts < maxAttempts {
			if err := g.sleep(ctx, g.batchDelay(err)); err != nil {
				log.Warn("batch generation canceled", zap.Error(err))
				break
			}
		}
	}

	if len(collected) < total {
		log.Warn("batch generation fell short",
			zap.Int("requested", total),
			zap.Int("generated", len(collected)),
			zap.Int("attempts", attempts))
	} else {
		log.Info("batch generation complete", zap.Int("questions", total), zap.Int("attempts", attempts))
	}

	if len(collected) > total {
		collected = collected[:total]
	}
	return collected, attempts
}

func sleepWithCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// maxRetryAfter caps how long a rate-limit hint may stall a batch run.
const maxRetryAfter = time.Minute

// batchDelay is the pause before the next attempt: the configured delay,
// stretched to the provider's Retry-After hint when one came back.
func (g *Generator) batchDelay(err error) time.Duration {
	var ue *llm.UpstreamError
	if errors.As(err, &ue) && ue.RetryAfter > g.config.BatchDelay {
		return min(ue.RetryAfter, maxRetryAfter)
	}
	return g.config.BatchDelay
}

// IsRetryable reports whether err came from the provider or the parser,
// the failures a batch run absorbs. Anything else ends the run with what
// has been collected so far.
func IsRetryable(err error) bool {
	var ue *llm.UpstreamError
	var pe *UnparsableResponseError
	return errors.As(err, &ue) || errors.As(err, &pe)
}
