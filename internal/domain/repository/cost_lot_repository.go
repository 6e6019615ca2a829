package repository

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// CostLotRepository cola de lotes PEPS. Solo se usa con el saldo ya bloqueado.
type CostLotRepository interface {
	Create(ctx context.Context, lot *entity.CostLot) error
	// ListOpen lotes con saldo, del más antiguo al más reciente (ReceivedAt, Seq).
	ListOpen(ctx context.Context, key entity.BalanceKey) ([]*entity.CostLot, error)
	GetByKardexEntry(ctx context.Context, companyID, kardexEntryID string) (*entity.CostLot, error)
	UpdateRemaining(ctx context.Context, lot *entity.CostLot) error
}
