package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/menuquiz/internal/llm"
	"github.com/abhisek/menuquiz/internal/logger"
	"github.com/abhisek/menuquiz/internal/quizgen"
	"github.com/abhisek/menuquiz/internal/store"
	"github.com/abhisek/menuquiz/internal/textcache"
)

// services holds what the generate and serve commands share.
type services struct {
	store     *store.Store
	redis     *redis.Client
	preparer  quizgen.Preparer
	generator *quizgen.Generator
}

// newServices opens the event store, connects the text cache when Redis
// is configured and builds the generator. The LLM provider is only built
// when withLLM is set.
func newServices(ctx context.Context, cmd *cobra.Command, withLLM bool) (*services, error) {
	log := logger.Get()
	svc := &services{preparer: quizgen.LocalPreparer}

	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	svc.store = st

	if cfg.Redis.Addr != "" {
		client, err := textcache.Dial(ctx, cfg.Redis)
		if err != nil {
			// The cache is optional; run without it.
			log.Warn("text cache unavailable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			svc.redis = client
			svc.preparer = textcache.NewPreparer(textcache.NewRedis(client), cfg.CacheTTL)
			log.Info("text cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	if withLLM {
		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("LLM provider not configured: %w", err)
		}
		svc.generator = quizgen.New(provider, cfg.Generation,
			quizgen.WithPreparer(svc.preparer),
			quizgen.WithLogger(log))
		log.Info("llm provider ready", zap.String("provider", cfg.LLM.Provider), zap.String("model", provider.ModelID()))
	}
	return svc, nil
}

func (s *services) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
}
