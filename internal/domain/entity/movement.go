package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction sentido de un movimiento de existencias.
type Direction string

const (
	DirectionReceipt            Direction = "RECEIPT"
	DirectionIssue              Direction = "ISSUE"
	DirectionTransfer           Direction = "TRANSFER"
	DirectionPositiveAdjustment Direction = "POSITIVE_ADJUSTMENT"
	DirectionNegativeAdjustment Direction = "NEGATIVE_ADJUSTMENT"
	DirectionOpeningBalance     Direction = "OPENING_BALANCE"
)

// IsValid verifica la dirección.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionReceipt, DirectionIssue, DirectionTransfer,
		DirectionPositiveAdjustment, DirectionNegativeAdjustment, DirectionOpeningBalance:
		return true
	}
	return false
}

// Operation tipo de asiento para direcciones de una sola bodega. TRANSFER genera ISSUE + RECEIPT.
func (d Direction) Operation() OperationType {
	switch d {
	case DirectionReceipt:
		return OperationReceipt
	case DirectionIssue:
		return OperationIssue
	case DirectionPositiveAdjustment:
		return OperationPositiveAdjustment
	case DirectionNegativeAdjustment:
		return OperationNegativeAdjustment
	case DirectionOpeningBalance:
		return OperationOpeningBalance
	}
	return ""
}

// MovementStatus estado de un movimiento.
type MovementStatus string

const (
	MovementCompleted MovementStatus = "COMPLETED"
	MovementVoided    MovementStatus = "VOIDED"
)

// Códigos de motivo de ajuste. FORCED_NEGATIVE es la única vía para dejar un saldo
// negativo; exige rol elevado y queda auditado.
const (
	ReasonPhysicalCount  = "PHYSICAL_COUNT"
	ReasonDamage         = "DAMAGE"
	ReasonForcedNegative = "FORCED_NEGATIVE"
)

// Movement cabecera que agrupa las líneas que mueven stock en una sola transacción.
type Movement struct {
	ID        string
	CompanyID string
	Number    string
	Direction Direction
	Status    MovementStatus
	Source    DocumentRef
	Reason    string
	Lines     []MovementLine
	CreatedBy string
	CreatedAt time.Time
	VoidedBy  string
	VoidedAt  *time.Time
}

// MovementLine línea de un movimiento. Quantity siempre positiva; el signo lo da la dirección.
type MovementLine struct {
	ID                string
	MovementID        string
	ProductID         string
	Quantity          decimal.Decimal
	UnitCost          decimal.Decimal
	TotalCost         decimal.Decimal
	OriginWarehouseID string
	DestWarehouseID   string
}

// IsVoided indica si el movimiento ya fue anulado.
func (m *Movement) IsVoided() bool {
	return m.Status == MovementVoided
}
