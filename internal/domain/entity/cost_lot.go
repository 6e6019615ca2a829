package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostLot lote de recepción abierto para costeo PEPS por (empresa, producto, bodega).
type CostLot struct {
	ID                string
	Seq               int64
	CompanyID         string
	ProductID         string
	WarehouseID       string
	ReceivedAt        time.Time
	OriginalQuantity  decimal.Decimal
	RemainingQuantity decimal.Decimal
	UnitCost          decimal.Decimal
	KardexEntryID     string
}

// IsOpen un lote se cierra cuando su saldo llega a cero.
func (l *CostLot) IsOpen() bool {
	return l.RemainingQuantity.GreaterThan(decimal.Zero)
}
