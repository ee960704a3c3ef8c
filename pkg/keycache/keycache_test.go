package keycache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMem() *memBackend {
	return &memBackend{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (m *memBackend) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	m.ttls[key] = ttl
	return m.err
}

type entry struct {
	Keyword string `json:"keyword"`
	Volume  int64  `json:"volume"`
}

func TestCacheRoundTrip(t *testing.T) {
	be := newMem()
	c := New[[]entry](be, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	want := []entry{{"pedri shirt", 1900}}
	require.NoError(t, c.Set(ctx, "k", want))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, time.Hour, be.ttls["k"])
}

func TestCacheDefaultTTL(t *testing.T) {
	be := newMem()
	c := New[int](be, 0)
	require.NoError(t, c.Set(context.Background(), "n", 1))
	assert.Equal(t, DefaultTTL, be.ttls["n"])
}

func TestCacheBackendError(t *testing.T) {
	be := newMem()
	be.err = errors.New("connection refused")
	c := New[int](be, 0)
	_, ok, err := c.Get(context.Background(), "n")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCacheCorruptEntry(t *testing.T) {
	be := newMem()
	be.data["bad"] = []byte("{")
	c := New[[]entry](be, 0)
	_, ok, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	a := Key("live", 2840, "en", "2025-01-01", "2025-06-30", []string{"b", "a"})
	b := Key("live", 2840, "en", "2025-01-01", "2025-06-30", []string{"a", "b"})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "demandscope:kw:live:2840:en:2025-01-01:2025-06-30:"))

	assert.NotEqual(t, a, Key("live", 2826, "en", "2025-01-01", "2025-06-30", []string{"a", "b"}))
	assert.NotEqual(t, a, Key("live", 2840, "en", "", "", []string{"a", "b"}))
}

func TestKeySeparatesSandboxFromLive(t *testing.T) {
	kw := []string{"erling haaland shirt"}
	sandbox := Key("sandbox", 2840, "en", "", "", kw)
	live := Key("live", 2840, "en", "", "", kw)
	assert.NotEqual(t, sandbox, live)
	assert.Contains(t, sandbox, ":sandbox:")
	assert.Contains(t, live, ":live:")
}

func TestDialBadURL(t *testing.T) {
	_, err := Dial(context.Background(), "not-a-url")
	assert.Error(t, err)
}
