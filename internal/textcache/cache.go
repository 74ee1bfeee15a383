// Package textcache caches normalized menu text so identical documents
// are cleaned once.
package textcache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("textcache: miss")

// DefaultTTL is how long normalized text stays cached.
const DefaultTTL = 24 * time.Hour

// Cache is a string key-value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Nop is a Cache that stores nothing. It is used when no Redis address is
// configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, error) { return "", ErrMiss }

func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }
