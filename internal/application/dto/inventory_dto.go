package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementLineRequest línea de un movimiento. Para TRANSFER se usan origin/dest; para el resto warehouse_id.
type MovementLineRequest struct {
	ProductID         string           `json:"product_id" validate:"required"`
	WarehouseID       string           `json:"warehouse_id,omitempty"`
	OriginWarehouseID string           `json:"origin_warehouse_id,omitempty"`
	DestWarehouseID   string           `json:"dest_warehouse_id,omitempty"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
}

// CreateMovementRequest body para POST /api/inventory/movements.
type CreateMovementRequest struct {
	Direction string                `json:"direction" validate:"required,oneof=RECEIPT ISSUE TRANSFER POSITIVE_ADJUSTMENT NEGATIVE_ADJUSTMENT OPENING_BALANCE"`
	Reason    string                `json:"reason" validate:"max=50"`
	Lines     []MovementLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// MovementLineResponse línea valorizada de un movimiento.
type MovementLineResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	OriginWarehouseID string          `json:"origin_warehouse_id,omitempty"`
	DestWarehouseID   string          `json:"dest_warehouse_id,omitempty"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID        string                 `json:"id"`
	Number    string                 `json:"number"`
	Direction string                 `json:"direction"`
	Status    string                 `json:"status"`
	Source    DocumentRefDTO         `json:"source"`
	Reason    string                 `json:"reason,omitempty"`
	Lines     []MovementLineResponse `json:"lines"`
	CreatedBy string                 `json:"created_by"`
	CreatedAt time.Time              `json:"created_at"`
	VoidedBy  string                 `json:"voided_by,omitempty"`
	VoidedAt  *time.Time             `json:"voided_at,omitempty"`
}

// BalanceResponse saldo de un producto en una bodega.
type BalanceResponse struct {
	ProductID    string          `json:"product_id"`
	WarehouseID  string          `json:"warehouse_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	BelowMinimum bool            `json:"below_minimum"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// KardexEntryResponse asiento del kardex con saldo corrido.
type KardexEntryResponse struct {
	ID               string          `json:"id"`
	Seq              int64           `json:"seq"`
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id"`
	OccurredAt       time.Time       `json:"occurred_at"`
	Operation        string          `json:"operation"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	RunningQuantity  decimal.Decimal `json:"running_quantity"`
	RunningTotalCost decimal.Decimal `json:"running_total_cost"`
	MovementID       string          `json:"movement_id"`
	Source           DocumentRefDTO  `json:"source"`
	ReversalOf       string          `json:"reversal_of,omitempty"`
}

// KardexPageResponse página del kardex; next_cursor vacío en la última.
type KardexPageResponse struct {
	Items      []KardexEntryResponse `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// ReplenishmentSuggestionDTO producto bajo mínimo con la reposición sugerida.
type ReplenishmentSuggestionDTO struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	IdealStock    decimal.Decimal `json:"ideal_stock"`
	SuggestedQty  decimal.Decimal `json:"suggested_order_qty"`
	AverageCost   decimal.Decimal `json:"average_cost"`
	EstimatedCost decimal.Decimal `json:"estimated_order_cost"`
	Priority      int             `json:"priority"`
}
