package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance saldo actual de un producto en una bodega.
// Solo lo modifica el libro de existencias dentro de una transacción con la fila bloqueada.
type StockBalance struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal // 4 decimales
	TotalCost   decimal.Decimal // valorización acumulada, 2 decimales
	Version     int64
	UpdatedAt   time.Time
}

// NewStockBalance saldo vacío para una clave aún sin movimientos.
func NewStockBalance(companyID, productID, warehouseID string) *StockBalance {
	return &StockBalance{
		CompanyID:   companyID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    decimal.Zero,
		AverageCost: decimal.Zero,
		TotalCost:   decimal.Zero,
	}
}

// BalanceKey identifica un saldo.
type BalanceKey struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
}

// Key devuelve la clave del saldo.
func (b *StockBalance) Key() BalanceKey {
	return BalanceKey{CompanyID: b.CompanyID, ProductID: b.ProductID, WarehouseID: b.WarehouseID}
}
