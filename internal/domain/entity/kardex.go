package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType tipo de asiento del kardex.
type OperationType string

const (
	OperationReceipt            OperationType = "RECEIPT"
	OperationIssue              OperationType = "ISSUE"
	OperationPositiveAdjustment OperationType = "POSITIVE_ADJUSTMENT"
	OperationNegativeAdjustment OperationType = "NEGATIVE_ADJUSTMENT"
	OperationOpeningBalance     OperationType = "OPENING_BALANCE"
)

// IsInbound operaciones que suman existencias.
func (o OperationType) IsInbound() bool {
	return o == OperationReceipt || o == OperationPositiveAdjustment || o == OperationOpeningBalance
}

// IsValid verifica el tipo.
func (o OperationType) IsValid() bool {
	switch o {
	case OperationReceipt, OperationIssue, OperationPositiveAdjustment,
		OperationNegativeAdjustment, OperationOpeningBalance:
		return true
	}
	return false
}

// Inverse tipo del asiento compensatorio.
func (o OperationType) Inverse() OperationType {
	switch o {
	case OperationReceipt, OperationOpeningBalance:
		return OperationIssue
	case OperationIssue:
		return OperationReceipt
	case OperationPositiveAdjustment:
		return OperationNegativeAdjustment
	case OperationNegativeAdjustment:
		return OperationPositiveAdjustment
	}
	return o
}

// KardexEntry asiento inmutable del libro de valorización. Nunca se actualiza ni se borra;
// las correcciones son contra-asientos (ReversalOf).
type KardexEntry struct {
	ID               string
	Seq              int64
	CompanyID        string
	ProductID        string
	WarehouseID      string
	OccurredAt       time.Time
	Operation        OperationType
	Quantity         decimal.Decimal // con signo
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal // con signo
	RunningQuantity  decimal.Decimal
	RunningTotalCost decimal.Decimal
	MovementID       string
	Source           DocumentRef
	ReversalOf       string
	CreatedBy        string
}
