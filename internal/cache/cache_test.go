package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natalia11920/pairpay/internal/models"
)

func sheetFor(userID int64, total int64) *models.BalanceSheet {
	return &models.BalanceSheet{UserID: userID, Totals: map[string]int64{"USD": total}}
}

// exerciseCache checks the behaviour every BalanceCache must share.
func exerciseCache(t *testing.T, c BalanceCache, userID int64) {
	ctx := context.Background()

	v, err := c.Version(ctx, userID)
	require.NoError(t, err)

	_, ok, err := c.Get(ctx, userID, v)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, c.Set(ctx, userID, v, sheetFor(userID, 100)))
	got, ok, err := c.Get(ctx, userID, v)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), got.Totals["USD"])

	require.NoError(t, c.Invalidate(ctx, userID))
	next, err := c.Version(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, v+1, next)

	_, ok, err = c.Get(ctx, userID, next)
	require.NoError(t, err)
	assert.False(t, ok, "invalidated entry must miss")

	// A reader that started before the invalidation stores under the old version.
	require.NoError(t, c.Set(ctx, userID, v, sheetFor(userID, 50)))
	_, ok, err = c.Get(ctx, userID, next)
	require.NoError(t, err)
	assert.False(t, ok, "stale write must not be visible at the new version")
}

func TestMemory(t *testing.T) {
	exerciseCache(t, NewMemory(time.Minute), 1)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, 7, 0, sheetFor(7, 1)))
	_, ok, _ := c.Get(ctx, 7, 0)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.Get(ctx, 7, 0)
	assert.False(t, ok)
}

func TestMemoryInvalidateIsPerUser(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	require.NoError(t, c.Set(ctx, 1, 0, sheetFor(1, 1)))
	require.NoError(t, c.Set(ctx, 2, 0, sheetFor(2, 2)))

	require.NoError(t, c.Invalidate(ctx, 1))

	_, ok, _ := c.Get(ctx, 2, 0)
	assert.True(t, ok)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	c, err := NewRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c, time.Now().UnixNano())
}
