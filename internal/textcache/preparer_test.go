package textcache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/menuquiz/internal/menutext"
)

const rawMenu = "PIZZAS\r\nMargherita   tomate, mozzarella 120 g\r\n\r\n\r\n\r\nDiavola  salame 60 g\r\n"

type mapCache struct {
	mu     sync.Mutex
	data   map[string]string
	gets   int
	sets   int
	getErr error
	setErr error
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string]string{}}
}

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return "", c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func TestKey(t *testing.T) {
	k := Key("menu")
	assert.True(t, strings.HasPrefix(k, "menuquiz:normalized:"))
	assert.Len(t, k, len("menuquiz:normalized:")+64)
	assert.Equal(t, k, Key("menu"))
	assert.NotEqual(t, k, Key("menu "))
}

func TestPreparer_CachesResult(t *testing.T) {
	cache := newMapCache()
	p := NewPreparer(cache, time.Hour)
	ctx := context.Background()

	first, err := p.Prepare(ctx, rawMenu)
	require.NoError(t, err)
	assert.Equal(t, menutext.Prepare(rawMenu), first)
	assert.Equal(t, 1, cache.sets)

	second, err := p.Prepare(ctx, rawMenu)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets, "second call should be served from the cache")
	assert.Equal(t, 2, cache.gets)
}

func TestPreparer_CacheFailuresFallThrough(t *testing.T) {
	cache := newMapCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	p := NewPreparer(cache, time.Hour)

	got, err := p.Prepare(context.Background(), rawMenu)
	require.NoError(t, err)
	assert.Equal(t, menutext.Prepare(rawMenu), got)
}

func TestPreparer_CorruptEntry(t *testing.T) {
	cache := newMapCache()
	cache.data[Key(rawMenu)] = "{not json"
	p := NewPreparer(cache, time.Hour)

	got, err := p.Prepare(context.Background(), rawMenu)
	require.NoError(t, err)
	assert.Equal(t, menutext.Prepare(rawMenu), got)
	assert.Equal(t, 1, cache.sets, "corrupt entry should be replaced")
}

func TestPreparer_NilCache(t *testing.T) {
	p := NewPreparer(nil, 0)
	got, err := p.Prepare(context.Background(), rawMenu)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Text)
	assert.Equal(t, DefaultTTL, p.ttl)
}

func TestPreparer_Redis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p := NewPreparer(NewRedis(db), DefaultTTL)
	ctx := context.Background()

	want := menutext.Prepare(rawMenu)
	data, err := json.Marshal(want)
	require.NoError(t, err)
	key := Key(rawMenu)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, string(data), DefaultTTL).SetVal("OK")
	got, err := p.Prepare(ctx, rawMenu)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	mock.ExpectGet(key).SetVal(string(data))
	got, err = p.Prepare(ctx, rawMenu)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}
