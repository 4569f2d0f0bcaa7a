package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/cookease/api/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		c := cache.NewLocalCache()
		require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

		got, err := c.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)
	})

	t.Run("missing key", func(t *testing.T) {
		c := cache.NewLocalCache()
		_, err := c.Get(ctx, "absent")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("expired key", func(t *testing.T) {
		c := cache.NewLocalCache()
		require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Nanosecond))
		time.Sleep(5 * time.Millisecond)

		_, err := c.Get(ctx, "key")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("delete", func(t *testing.T) {
		c := cache.NewLocalCache()
		require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))
		require.NoError(t, c.Delete(ctx, "key"))

		_, err := c.Get(ctx, "key")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})
}
