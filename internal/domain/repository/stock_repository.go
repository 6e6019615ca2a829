package repository

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar saldos por (empresa, producto, bodega).
type StockRepository interface {
	// Get lectura sin bloqueo; devuelve un saldo vacío si la clave no tiene movimientos.
	Get(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error)
	// GetForUpdate crea la fila si no existe y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error)
	// Save persiste el saldo si Version no cambió desde la lectura (ErrConcurrencyConflict si cambió)
	// e incrementa Version.
	Save(ctx context.Context, balance *entity.StockBalance) error
}
