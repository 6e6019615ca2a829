package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: saldo, kardex, lotes y documento confirman juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// Store TxRunner más repositorios para lecturas sin transacción (kardex, consultas de saldo).
type Store interface {
	TxRunner
	Repos() repository.Repos
}

// BalanceCache cache de lectura de saldos. Se invalida después del commit.
type BalanceCache interface {
	Get(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, bool)
	Set(ctx context.Context, balance *entity.StockBalance)
	Invalidate(ctx context.Context, keys ...entity.BalanceKey)
}

// Metrics contadores del libro de existencias.
type Metrics interface {
	MovementRecorded(direction string)
	MovementVoided()
	Rejected(reason string)
	ConflictRetried()
	SequenceCollision()
}

// NopMetrics implementación vacía de Metrics.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(string) {}
func (NopMetrics) MovementVoided()         {}
func (NopMetrics) Rejected(string)         {}
func (NopMetrics) ConflictRetried()        {}
func (NopMetrics) SequenceCollision()      {}

type nopCache struct{}

func (nopCache) Get(context.Context, entity.BalanceKey) (*entity.StockBalance, bool) { return nil, false }
func (nopCache) Set(context.Context, *entity.StockBalance)                           {}
func (nopCache) Invalidate(context.Context, ...entity.BalanceKey)                    {}
