package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestLockIsExclusiveAndOwned(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	ok, err := c.AcquireLock(ctx, "lock:a", "holder-1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireLock(ctx, "lock:a", "holder-2", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	released, err := c.ReleaseLock(ctx, "lock:a", "holder-2")
	require.NoError(t, err)
	assert.False(t, released)
	assert.True(t, mr.Exists("lock:a"))

	released, err = c.ReleaseLock(ctx, "lock:a", "holder-1")
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, mr.Exists("lock:a"))
}

func TestLockExpires(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, err := c.AcquireLock(ctx, "lock:b", "holder-1", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	ok, err := c.AcquireLock(ctx, "lock:b", "holder-2", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeletePattern(t *testing.T) {
	c, mr := newTestClient(t)
	for _, k := range []string{"products:list:org-1:a", "products:list:org-1:b", "products:list:org-2:a"} {
		require.NoError(t, mr.Set(k, "x"))
	}

	require.NoError(t, c.DeletePattern(context.Background(), "products:list:org-1:*"))
	assert.Equal(t, []string{"products:list:org-2:a"}, mr.Keys())

	assert.NoError(t, c.DeletePattern(context.Background(), "nothing:*"))
}
