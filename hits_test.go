package shigure

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteHits(t *testing.T) {
	s := setupTestStore(t)
	h := SQLiteHits{Store: s}
	ctx := context.Background()

	n, err := h.Get(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = h.Increment(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = h.Increment(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = h.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNewRedisHitsRejectsBadURL(t *testing.T) {
	_, err := NewRedisHits("not a url")
	assert.Error(t, err)
}

// TestRedisHits runs against a live server named by SHIGURE_TEST_REDIS_URL.
func TestRedisHits(t *testing.T) {
	url := os.Getenv("SHIGURE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SHIGURE_TEST_REDIS_URL not set")
	}
	h, err := NewRedisHits(url)
	require.NoError(t, err)
	defer h.Close()
	h.Prefix = "shigure:test:" + time.Now().Format("150405.000000") + ":"

	ctx := context.Background()
	n, err := h.Get(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = h.Increment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = h.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	h.Client.Del(ctx, h.key(1))
}
