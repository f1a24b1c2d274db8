package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ClaimCompleteRelease(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR no definido")
	}
	c, err := NewClient(addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	key := "test:" + uuid.NewString()
	t.Cleanup(func() { _ = c.Release(ctx, key) })

	claimed, _, err := c.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, val, err := c.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Empty(t, val)

	require.NoError(t, c.Complete(ctx, key, "sale-1", time.Minute))
	_, val, err = c.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "sale-1", val)

	require.NoError(t, c.Release(ctx, key))
	claimed, _, err = c.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestNoExpiry(t *testing.T) {
	assert.Equal(t, time.Duration(0), noExpiry(-time.Second))
	assert.Equal(t, time.Duration(0), noExpiry(0))
	assert.Equal(t, time.Minute, noExpiry(time.Minute))
}
