package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/cache"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*cache.BalanceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewBalanceCache(client, time.Minute, nil), mr
}

func balance() *entity.StockBalance {
	return &entity.StockBalance{
		CompanyID:   "c1",
		ProductID:   "p1",
		WarehouseID: "w1",
		Quantity:    decimal.RequireFromString("12.5"),
		AverageCost: decimal.RequireFromString("4.1234"),
		TotalCost:   decimal.RequireFromString("51.54"),
		Version:     3,
		UpdatedAt:   time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestBalanceCache_SetGet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	b := balance()

	c.Set(ctx, b)
	got, ok := c.Get(ctx, b.Key())
	require.True(t, ok)
	assert.True(t, got.Quantity.Equal(b.Quantity))
	assert.True(t, got.AverageCost.Equal(b.AverageCost))
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, "w1", got.WarehouseID)

	assert.Equal(t, time.Minute, mr.TTL(cache.Key(b.Key())))
}

func TestBalanceCache_ExpiraConTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	b := balance()

	c.Set(ctx, b)
	mr.FastForward(2 * time.Minute)
	_, ok := c.Get(ctx, b.Key())
	assert.False(t, ok)
}

func TestBalanceCache_Invalidate(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	b := balance()
	other := balance()
	other.WarehouseID = "w2"

	c.Set(ctx, b)
	c.Set(ctx, other)
	c.Invalidate(ctx, b.Key())

	_, ok := c.Get(ctx, b.Key())
	assert.False(t, ok)
	_, ok = c.Get(ctx, other.Key())
	assert.True(t, ok)
}

func TestBalanceCache_ErrorDeRedisEsMiss(t *testing.T) {
	c, mr := newCache(t)
	mr.SetError("LOADING redis no disponible")

	_, ok := c.Get(context.Background(), balance().Key())
	assert.False(t, ok)
	c.Set(context.Background(), balance())
	c.Invalidate(context.Background(), balance().Key())
}
