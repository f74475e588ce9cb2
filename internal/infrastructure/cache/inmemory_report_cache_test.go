package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryReportCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get returns the report", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		report := map[string]any{"period": "monthly"}
		c.Set(ctx, "analytics:report:a", report, time.Minute)

		got, ok := c.Get(ctx, "analytics:report:a")
		require.True(t, ok)
		assert.Equal(t, report, got)
	})

	t.Run("miss for unknown key", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		_, ok := c.Get(ctx, "analytics:report:missing")
		assert.False(t, ok)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		c.Set(ctx, "analytics:report:b", map[string]any{}, -time.Second)

		_, ok := c.Get(ctx, "analytics:report:b")
		assert.False(t, ok)
	})

	t.Run("invalidate drops all entries", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		c.Set(ctx, "analytics:report:a", map[string]any{}, time.Minute)
		c.Set(ctx, "analytics:report:b", map[string]any{}, time.Minute)

		c.Invalidate(ctx)

		_, okA := c.Get(ctx, "analytics:report:a")
		_, okB := c.Get(ctx, "analytics:report:b")
		assert.False(t, okA)
		assert.False(t, okB)
	})

	t.Run("evictExpired removes only stale entries", func(t *testing.T) {
		c := NewInMemoryReportCache()
		defer c.Close()

		c.Set(ctx, "fresh", map[string]any{}, time.Minute)
		c.Set(ctx, "stale", map[string]any{}, -time.Second)

		c.evictExpired()

		_, okFresh := c.Get(ctx, "fresh")
		_, okStale := c.Get(ctx, "stale")
		assert.True(t, okFresh)
		assert.False(t, okStale)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		c := NewInMemoryReportCache()
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
	})
}
