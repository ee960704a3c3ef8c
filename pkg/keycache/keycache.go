// Package keycache caches provider responses in Redis, keyed by the exact
// request that produced them.
package keycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrMiss is returned by a Backend when a key is absent.
var ErrMiss = errors.New("keycache: miss")

// DefaultTTL keeps entries for a day; monthly volumes rarely change faster.
const DefaultTTL = 24 * time.Hour

// Backend stores raw values.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// RedisBackend is a Backend over go-redis.
type RedisBackend struct {
	rdb *goredis.Client
}

// Dial connects to the Redis URL (redis://host:port/db) and pings it.
func Dial(ctx context.Context, url string) (*RedisBackend, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBackend{rdb: rdb}, nil
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(rdb *goredis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrMiss
	}
	return v, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, key, val, ttl).Err()
}

// Close closes the client.
func (b *RedisBackend) Close() error { return b.rdb.Close() }

// Cache stores JSON-encoded values of type T.
type Cache[T any] struct {
	backend Backend
	ttl     time.Duration
}

// New creates a Cache. A non-positive ttl uses DefaultTTL.
func New[T any](backend Backend, ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{backend: backend, ttl: ttl}
}

// Get returns the cached value and whether it was found. A miss is not an error.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	raw, err := c.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores v under key.
func (c *Cache[T]) Set(ctx context.Context, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, key, raw, c.ttl)
}

// Key builds demandscope:kw:{mode}:{location}:{lang}:{from}:{to}:{sha256}.
// mode separates sandbox and live data. Keywords are hashed
// order-independently so reordered batches share an entry.
func Key(mode string, location int, lang, from, to string, keywords []string) string {
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return strings.Join([]string{
		"demandscope", "kw", mode, strconv.Itoa(location), lang, from, to,
		hex.EncodeToString(sum[:]),
	}, ":")
}
