package textcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/menuquiz/internal/logger"
	"github.com/abhisek/menuquiz/internal/menutext"
)

const keyPrefix = "menuquiz:normalized:"

// Key is the cache key for raw source text.
func Key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Preparer runs menutext.Prepare behind a cache. Concurrent requests for
// the same text share one preparation. Cache failures are logged and never
// fail a request.
type Preparer struct {
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
	group singleflight.Group
}

// NewPreparer creates a Preparer. A nil cache disables caching but keeps
// in-process request collapsing.
func NewPreparer(cache Cache, ttl time.Duration) *Preparer {
	if cache == nil {
		cache = Nop{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Preparer{cache: cache, ttl: ttl, log: logger.Get()}
}

// Prepare returns the prepared form of raw, from the cache when present.
func (p *Preparer) Prepare(ctx context.Context, raw string) (menutext.Prepared, error) {
	key := Key(raw)
	v, err, shared := p.group.Do(key, func() (any, error) {
		return p.load(ctx, key, raw), nil
	})
	if err != nil {
		return menutext.Prepared{}, err
	}
	if shared {
		p.log.Debug("menu text preparation shared", zap.String("key", key))
	}
	return v.(menutext.Prepared), nil
}

func (p *Preparer) load(ctx context.Context, key, raw string) menutext.Prepared {
	cached, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		var prepared menutext.Prepared
		if err := json.Unmarshal([]byte(cached), &prepared); err == nil {
			p.log.Debug("menu text cache hit", zap.String("key", key))
			return prepared
		}
		p.log.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, ErrMiss):
		p.log.Warn("menu text cache unavailable", zap.Error(err))
	}

	prepared := menutext.Prepare(raw)

	data, err := json.Marshal(prepared)
	if err != nil {
		return prepared
	}
	if err := p.cache.Set(ctx, key, string(data), p.ttl); err != nil {
		p.log.Warn("menu text cache write failed", zap.Error(err))
	}
	return prepared
}
