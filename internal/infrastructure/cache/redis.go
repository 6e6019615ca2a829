package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/pkg/config"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var _ inventory.BalanceCache = (*BalanceCache)(nil)

const keyPrefix = "inv:balance"

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// BalanceCache cache de saldos en Redis. Los fallos de Redis se registran y se tratan como miss:
// la fuente de verdad sigue siendo la base de datos.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewBalanceCache construye la cache. ttl <= 0 usa 5 minutos.
func NewBalanceCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *BalanceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BalanceCache{client: client, ttl: ttl, log: log}
}

type cachedBalance struct {
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Version     int64           `json:"version"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Key inv:balance:{empresa}:{producto}:{bodega}
func Key(k entity.BalanceKey) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, k.CompanyID, k.ProductID, k.WarehouseID)
}

// Get devuelve el saldo cacheado; false si no está o Redis falla.
func (c *BalanceCache) Get(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, bool) {
	raw, err := c.client.Get(ctx, Key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx, c.log).Warn().Err(err).Str("key", Key(key)).Msg("cache de saldos no disponible")
		}
		return nil, false
	}
	var cb cachedBalance
	if err := json.Unmarshal(raw, &cb); err != nil {
		c.log.Warn().Err(err).Str("key", Key(key)).Msg("entrada de cache corrupta")
		return nil, false
	}
	return &entity.StockBalance{
		CompanyID:   key.CompanyID,
		ProductID:   key.ProductID,
		WarehouseID: key.WarehouseID,
		Quantity:    cb.Quantity,
		AverageCost: cb.AverageCost,
		TotalCost:   cb.TotalCost,
		Version:     cb.Version,
		UpdatedAt:   cb.UpdatedAt,
	}, true
}

// Set guarda el saldo con el TTL configurado.
func (c *BalanceCache) Set(ctx context.Context, b *entity.StockBalance) {
	raw, err := json.Marshal(cachedBalance{
		Quantity:    b.Quantity,
		AverageCost: b.AverageCost,
		TotalCost:   b.TotalCost,
		Version:     b.Version,
		UpdatedAt:   b.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, Key(b.Key()), raw, c.ttl).Err(); err != nil {
		logger.FromContext(ctx, c.log).Warn().Err(err).Msg("no se pudo cachear el saldo")
	}
}

// Invalidate elimina las claves; se llama después del commit.
func (c *BalanceCache) Invalidate(ctx context.Context, keys ...entity.BalanceKey) {
	if len(keys) == 0 {
		return
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, Key(k))
	}
	if err := c.client.Del(ctx, names...).Err(); err != nil {
		logger.FromContext(ctx, c.log).Warn().Err(err).Int("keys", len(names)).Msg("no se pudo invalidar la cache de saldos")
	}
}
