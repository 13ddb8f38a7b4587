package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeteria/backend/internal/domain"
)

func newRedisCache(t *testing.T) (*RedisSaleReplayCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c := NewRedisSaleReplayCache(srv.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func TestRedisSaleReplayCacheRoundTrip(t *testing.T) {
	c, srv := newRedisCache(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	sale := &domain.Sale{
		ID:        7,
		ProductID: 2,
		Quantity:  3,
		UnitPrice: decimal.NewFromInt(2500),
		Total:     decimal.NewFromInt(7500),
		SaleDate:  "2024-03-01",
		SaleTime:  "09:30:00",
	}
	require.NoError(t, c.Set(ctx, "abc", sale, time.Minute))

	got, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), got.ID)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(7500)))

	assert.True(t, srv.Exists(keyPrefix+"abc"))
	srv.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSaleReplayCacheReserve(t *testing.T) {
	c, srv := newRedisCache(t)
	ctx := context.Background()

	ok, err := c.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrPending)

	require.NoError(t, c.Set(ctx, "k", &domain.Sale{ID: 1}, time.Minute))
	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), got.ID)

	ok, err = c.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	srv.FastForward(2 * time.Minute)
	ok, err = c.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSaleReplayCacheRelease(t *testing.T) {
	c, srv := newRedisCache(t)
	ctx := context.Background()

	ok, err := c.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, c.Release(ctx, "k"))
	assert.False(t, srv.Exists(keyPrefix+"k"))

	ok, err = c.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Set(ctx, "nil", nil, time.Minute))
	_, found, err := c.Get(ctx, "nil")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSaleReplayCacheCorruptPayload(t *testing.T) {
	c, srv := newRedisCache(t)
	require.NoError(t, srv.Set(keyPrefix+"bad", "{not json"))

	_, _, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
}

func TestNoopSaleReplayCache(t *testing.T) {
	var c SaleReplayCache = NoopSaleReplayCache{}
	ok, err := c.Reserve(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, c.Release(context.Background(), "k"))
	require.NoError(t, c.Set(context.Background(), "k", &domain.Sale{ID: 1}, time.Minute))
	_, ok, err = c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
