package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// KardexCursor posición de paginación por keyset (OccurredAt, Seq).
type KardexCursor struct {
	OccurredAt time.Time
	Seq        int64
}

// KardexFilter filtro de lectura del kardex de una empresa.
type KardexFilter struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	From        *time.Time
	To          *time.Time
	After       *KardexCursor
	Limit       int
}

// KardexRepository libro de valorización append-only.
type KardexRepository interface {
	// Append asigna Seq y persiste el asiento.
	Append(ctx context.Context, entry *entity.KardexEntry) error
	GetByID(ctx context.Context, companyID, id string) (*entity.KardexEntry, error)
	ListByMovement(ctx context.Context, companyID, movementID string) ([]*entity.KardexEntry, error)
	// List asientos ordenados por (OccurredAt, Seq) posteriores a After.
	List(ctx context.Context, filter KardexFilter) ([]*entity.KardexEntry, error)
}
