package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequisitionStatus estados de una requisición interna.
type RequisitionStatus string

const (
	RequisitionDraft     RequisitionStatus = "DRAFT"
	RequisitionPending   RequisitionStatus = "PENDING"
	RequisitionApproved  RequisitionStatus = "APPROVED"
	RequisitionRejected  RequisitionStatus = "REJECTED"
	RequisitionPartial   RequisitionStatus = "PARTIAL"
	RequisitionCompleted RequisitionStatus = "COMPLETED"
	RequisitionVoided    RequisitionStatus = "VOIDED"
)

// Requisition solicitud interna de materiales; se satisface con vales de salida.
type Requisition struct {
	ID           string
	CompanyID    string
	Number       string
	WarehouseID  string
	CostCenterID string
	RequestedBy  string
	ApprovedBy   string
	Status       RequisitionStatus
	Notes        string
	Lines        []RequisitionLine
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RequisitionLine cantidades solicitada, aprobada y entregada.
type RequisitionLine struct {
	ID                string
	ProductID         string
	RequestedQuantity decimal.Decimal
	ApprovedQuantity  *decimal.Decimal // nil = se aprueba lo solicitado
	DeliveredQuantity decimal.Decimal
}

// Authorized cantidad autorizada a entregar.
func (l *RequisitionLine) Authorized() decimal.Decimal {
	if l.ApprovedQuantity != nil {
		return *l.ApprovedQuantity
	}
	return l.RequestedQuantity
}

// Pending cantidad_pendiente = autorizada - entregada (nunca negativa).
func (l *RequisitionLine) Pending() decimal.Decimal {
	p := l.Authorized().Sub(l.DeliveredQuantity)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// FulfillmentStatus estado derivado de las entregas: APPROVED, PARTIAL o COMPLETED.
func (r *Requisition) FulfillmentStatus() RequisitionStatus {
	anyDelivered := false
	allDelivered := true
	for i := range r.Lines {
		l := &r.Lines[i]
		if l.DeliveredQuantity.GreaterThan(decimal.Zero) {
			anyDelivered = true
		}
		if l.Pending().GreaterThan(decimal.Zero) {
			allDelivered = false
		}
	}
	switch {
	case allDelivered && anyDelivered:
		return RequisitionCompleted
	case anyDelivered:
		return RequisitionPartial
	default:
		return RequisitionApproved
	}
}

// Line busca una línea por id.
func (r *Requisition) Line(id string) *RequisitionLine {
	for i := range r.Lines {
		if r.Lines[i].ID == id {
			return &r.Lines[i]
		}
	}
	return nil
}
