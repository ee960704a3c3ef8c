//go:build integration

package keycache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisURL() string {
	if v := os.Getenv("REDIS_URL"); v != "" {
		return v
	}
	return "redis://localhost:6379/0"
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	be, err := Dial(ctx, redisURL())
	require.NoError(t, err)
	defer be.Close()

	c := New[map[string]int64](be, time.Minute)
	key := Key("sandbox", 2840, "en", "", "", []string{"integration test"})

	require.NoError(t, c.Set(ctx, key, map[string]int64{"integration test": 10}))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 10, got["integration test"])

	_, ok, err = c.Get(ctx, key+":absent")
	require.NoError(t, err)
	assert.False(t, ok)
}
