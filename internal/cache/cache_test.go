package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	c := New(redis.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "stats", map[string]int{"parcels": 3}, time.Minute))

	var got map[string]int
	assert.True(t, c.GetJSON(ctx, "stats", &got))
	assert.Equal(t, 3, got["parcels"])

	redis.FastForward(2 * time.Minute)
	assert.False(t, c.GetJSON(ctx, "stats", &got))
}

func TestClientDelete(t *testing.T) {
	redis := miniredis.RunT(t)
	c := New(redis.Addr(), "", 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, c.Delete(ctx, "a", "b"))

	data, err := c.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.False(t, redis.Exists("b"))
}

func TestClientFailsSafeWhenRedisIsDown(t *testing.T) {
	redis := miniredis.RunT(t)
	c := New(redis.Addr(), "", 0)
	redis.Close()
	ctx := context.Background()

	data, err := c.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Error(t, c.Ping(ctx))
}

func TestNilClientIsAMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	var v int
	assert.False(t, c.GetJSON(ctx, "k", &v))
	assert.NoError(t, c.SetJSON(ctx, "k", 1, time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}
