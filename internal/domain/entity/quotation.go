package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotationStatus estados de una cotización a proveedor.
type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "DRAFT"
	QuotationSent     QuotationStatus = "SENT"
	QuotationReceived QuotationStatus = "RECEIVED"
	QuotationApproved QuotationStatus = "APPROVED"
	QuotationRejected QuotationStatus = "REJECTED"
	QuotationExpired  QuotationStatus = "EXPIRED"
	QuotationVoided   QuotationStatus = "VOIDED"
)

// Quotation cotización solicitada a un proveedor. No afecta stock.
type Quotation struct {
	ID              string
	CompanyID       string
	Number          string
	SupplierID      string
	RequestedBy     string
	Status          QuotationStatus
	PersistedStatus QuotationStatus // cache de reportes; no decide transiciones
	ValidUntil      *time.Time
	PurchaseOrderID string
	Notes           string
	Lines           []QuotationLine
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// QuotationLine línea cotizada.
type QuotationLine struct {
	ID        string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}
