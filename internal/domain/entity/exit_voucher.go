package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitVoucherStatus estados de un vale de salida.
type ExitVoucherStatus string

const (
	ExitVoucherPending   ExitVoucherStatus = "PENDING"
	ExitVoucherDelivered ExitVoucherStatus = "ENTREGADO"
	ExitVoucherPartial   ExitVoucherStatus = "PARCIAL"
	ExitVoucherVoided    ExitVoucherStatus = "ANULADO"
)

// ExitVoucher vale de salida; cada entrega registra un movimiento ISSUE.
type ExitVoucher struct {
	ID            string
	CompanyID     string
	Number        string
	RequisitionID string
	WarehouseID   string
	Recipient     Recipient
	CreatedBy     string
	Status        ExitVoucherStatus
	Notes         string
	Lines         []ExitVoucherLine
	Deliveries    []VoucherDelivery
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExitVoucherLine línea a entregar; RequisitionLineID enlaza con la requisición de origen.
type ExitVoucherLine struct {
	ID                string
	RequisitionLineID string
	ProductID         string
	Quantity          decimal.Decimal
	DeliveredQuantity decimal.Decimal
}

// Pending cantidad aún no entregada.
func (l *ExitVoucherLine) Pending() decimal.Decimal {
	p := l.Quantity.Sub(l.DeliveredQuantity)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// VoucherDelivery evento de entrega ligado a su movimiento.
type VoucherDelivery struct {
	ID          string
	MovementID  string
	DeliveredBy string
	DeliveredAt time.Time
	Voided      bool
	Lines       []VoucherDeliveryLine
}

// VoucherDeliveryLine cantidad entregada por línea en un evento.
type VoucherDeliveryLine struct {
	VoucherLineID string
	ProductID     string
	Quantity      decimal.Decimal
}

// FullyDelivered todas las líneas entregadas.
func (v *ExitVoucher) FullyDelivered() bool {
	for i := range v.Lines {
		if v.Lines[i].Pending().GreaterThan(decimal.Zero) {
			return false
		}
	}
	return len(v.Lines) > 0
}

// Line busca una línea por id.
func (v *ExitVoucher) Line(id string) *ExitVoucherLine {
	for i := range v.Lines {
		if v.Lines[i].ID == id {
			return &v.Lines[i]
		}
	}
	return nil
}
