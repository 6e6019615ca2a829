package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estados de una orden de compra.
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft    PurchaseOrderStatus = "DRAFT"
	PurchaseOrderPending  PurchaseOrderStatus = "PENDING"
	PurchaseOrderApproved PurchaseOrderStatus = "APPROVED"
	PurchaseOrderSent     PurchaseOrderStatus = "SENT"
	PurchaseOrderPartial  PurchaseOrderStatus = "PARTIAL"
	PurchaseOrderReceived PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderVoided   PurchaseOrderStatus = "VOIDED"
)

// PurchaseOrder orden de compra; cada recepción registra un movimiento RECEIPT.
type PurchaseOrder struct {
	ID          string
	CompanyID   string
	Number      string
	SupplierID  string
	QuotationID string
	WarehouseID string // bodega de recepción por defecto
	RequestedBy string
	ApprovedBy  string
	Status      PurchaseOrderStatus
	Notes       string
	Lines       []PurchaseOrderLine
	Receipts    []PurchaseReceipt
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PurchaseOrderLine línea pedida con su cantidad recibida acumulada.
type PurchaseOrderLine struct {
	ID                string
	ProductID         string
	RequestedQuantity decimal.Decimal
	ReceivedQuantity  decimal.Decimal
	UnitPrice         decimal.Decimal
}

// Pending cantidad aún no recibida (nunca negativa).
func (l *PurchaseOrderLine) Pending() decimal.Decimal {
	p := l.RequestedQuantity.Sub(l.ReceivedQuantity)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// PurchaseReceipt evento de recepción ligado a su movimiento.
type PurchaseReceipt struct {
	ID          string
	MovementID  string
	WarehouseID string
	ReceivedBy  string
	ReceivedAt  time.Time
	Voided      bool
	Lines       []PurchaseReceiptLine
}

// PurchaseReceiptLine cantidad recibida por línea en un evento.
type PurchaseReceiptLine struct {
	OrderLineID string
	ProductID   string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// FullyReceived toda línea recibida >= pedida.
func (o *PurchaseOrder) FullyReceived() bool {
	for i := range o.Lines {
		if o.Lines[i].ReceivedQuantity.LessThan(o.Lines[i].RequestedQuantity) {
			return false
		}
	}
	return len(o.Lines) > 0
}

// ActiveMovementIDs movimientos de recepción no anulados.
func (o *PurchaseOrder) ActiveMovementIDs() []string {
	var ids []string
	for _, r := range o.Receipts {
		if !r.Voided && r.MovementID != "" {
			ids = append(ids, r.MovementID)
		}
	}
	return ids
}

// Line busca una línea por id.
func (o *PurchaseOrder) Line(id string) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == id {
			return &o.Lines[i]
		}
	}
	return nil
}
