package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EppStatus estados de una entrega de EPP.
type EppStatus string

const (
	EppVigente    EppStatus = "VIGENTE"
	EppPorVencer  EppStatus = "POR_VENCER"
	EppVencido    EppStatus = "VENCIDO"
	EppDevuelto   EppStatus = "DEVUELTO"
	EppExtraviado EppStatus = "EXTRAVIADO"
	EppDanado     EppStatus = "DAÑADO"
)

// IsOpen estados en los que el EPP sigue en manos del receptor.
func (s EppStatus) IsOpen() bool {
	return s == EppVigente || s == EppPorVencer || s == EppVencido
}

// EppAssignment entrega de equipo de protección personal a un receptor.
type EppAssignment struct {
	ID               string
	CompanyID        string
	Number           string
	ProductID        string
	WarehouseID      string
	Recipient        Recipient
	Quantity         decimal.Decimal
	IssuedAt         time.Time
	ExpiresAt        *time.Time
	Status           EppStatus // estado almacenado (terminal o VIGENTE)
	PersistedStatus  EppStatus // cache de reportes
	IssueMovementID  string
	ReturnMovementID string
	UnitCost         decimal.Decimal
	ClosedAt         *time.Time
	CreatedBy        string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewEppAssignment entrega VIGENTE emitida en issuedAt; el vencimiento sale de la vida útil del producto.
func NewEppAssignment(id, companyID string, product *Product, warehouseID string, recipient Recipient, qty decimal.Decimal, issuedAt time.Time) *EppAssignment {
	return &EppAssignment{
		ID:              id,
		CompanyID:       companyID,
		ProductID:       product.ID,
		WarehouseID:     warehouseID,
		Recipient:       recipient,
		Quantity:        qty,
		IssuedAt:        issuedAt,
		ExpiresAt:       product.ExpiresAt(issuedAt),
		Status:          EppVigente,
		PersistedStatus: EppVigente,
		CreatedAt:       issuedAt,
		UpdatedAt:       issuedAt,
	}
}
