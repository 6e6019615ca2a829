package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLineRequest línea de cotización, orden de compra o requisición.
type DocumentLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdateLinesRequest reemplazo de líneas de un documento en DRAFT.
type UpdateLinesRequest struct {
	Lines []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateQuotationRequest body para POST /api/quotations.
type CreateQuotationRequest struct {
	SupplierID string                `json:"supplier_id" validate:"required,max=100"`
	ValidUntil *time.Time            `json:"valid_until,omitempty"`
	Notes      string                `json:"notes" validate:"max=1000"`
	Lines      []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ConvertQuotationRequest body para POST /api/quotations/:id/purchase-order.
type ConvertQuotationRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID  string                `json:"supplier_id" validate:"required,max=100"`
	WarehouseID string                `json:"warehouse_id" validate:"required"`
	Notes       string                `json:"notes" validate:"max=1000"`
	Lines       []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateRequisitionRequest body para POST /api/requisitions.
type CreateRequisitionRequest struct {
	WarehouseID  string                `json:"warehouse_id" validate:"required"`
	CostCenterID string                `json:"cost_center_id" validate:"max=100"`
	Notes        string                `json:"notes" validate:"max=1000"`
	Lines        []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// VoucherLineRequest línea de vale; con requisición se indica requisition_line_id.
type VoucherLineRequest struct {
	RequisitionLineID string          `json:"requisition_line_id,omitempty"`
	ProductID         string          `json:"product_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// CreateExitVoucherRequest body para POST /api/exit-vouchers. Sin líneas y con requisición
// se genera el vale por todo lo pendiente.
type CreateExitVoucherRequest struct {
	RequisitionID string               `json:"requisition_id,omitempty"`
	WarehouseID   string               `json:"warehouse_id,omitempty"`
	Recipient     RecipientDTO         `json:"recipient" validate:"required"`
	Notes         string               `json:"notes" validate:"max=1000"`
	Lines         []VoucherLineRequest `json:"lines" validate:"omitempty,dive"`
}

// CreateEppAssignmentRequest body para POST /api/epp-assignments.
type CreateEppAssignmentRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	Recipient   RecipientDTO    `json:"recipient" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes" validate:"max=1000"`
}

// RegisterEquipmentRequest body para POST /api/equipment.
type RegisterEquipmentRequest struct {
	WarehouseID   string          `json:"warehouse_id" validate:"required"`
	Code          string          `json:"code" validate:"required,max=100"`
	Name          string          `json:"name" validate:"required,max=200"`
	SerialNumber  string          `json:"serial_number" validate:"max=100"`
	ControlType   string          `json:"control_type" validate:"required,oneof=BULK INDIVIDUAL"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// CreateEquipmentLoanRequest body para POST /api/equipment-loans.
type CreateEquipmentLoanRequest struct {
	EquipmentID      string          `json:"equipment_id" validate:"required"`
	Recipient        RecipientDTO    `json:"recipient" validate:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
	ExpectedReturnAt time.Time       `json:"expected_return_at" validate:"required"`
	Notes            string          `json:"notes" validate:"max=1000"`
}

// TransitionLineRequest cantidad por línea en recepciones, aprobaciones parciales o entregas.
type TransitionLineRequest struct {
	LineID   string           `json:"line_id" validate:"required"`
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// TransitionRequest body opcional de POST /api/documents/:family/:id/transitions/:transition.
type TransitionRequest struct {
	WarehouseID      string                  `json:"warehouse_id,omitempty"`
	Lines            []TransitionLineRequest `json:"lines" validate:"omitempty,dive"`
	ExpectedReturnAt *time.Time              `json:"expected_return_at,omitempty"`
	Notes            string                  `json:"notes" validate:"max=1000"`
}

// DocumentStateResponse estado efectivo de un documento y sus transiciones disponibles.
type DocumentStateResponse struct {
	Family          string           `json:"family"`
	ID              string           `json:"id"`
	Number          string           `json:"number"`
	Status          string           `json:"status"`
	PersistedStatus string           `json:"persisted_status"`
	Available       []string         `json:"available_transitions"`
	DueSoon         bool             `json:"due_soon,omitempty"`
	Related         []DocumentRefDTO `json:"related,omitempty"`
	Document        any              `json:"document"`
}

// LineResponse línea de cualquier documento; cada familia llena las cantidades que le aplican.
type LineResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	PendingQuantity   decimal.Decimal `json:"pending_quantity"`
	ApprovedQuantity  decimal.Decimal `json:"approved_quantity"`
	DeliveredQuantity decimal.Decimal `json:"delivered_quantity"`
}

// QuotationResponse cotización.
type QuotationResponse struct {
	ID              string         `json:"id"`
	Number          string         `json:"number"`
	SupplierID      string         `json:"supplier_id"`
	RequestedBy     string         `json:"requested_by"`
	ValidUntil      *time.Time     `json:"valid_until,omitempty"`
	PurchaseOrderID string         `json:"purchase_order_id,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Lines           []LineResponse `json:"lines"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ReceiptResponse evento de recepción o entrega ligado a su movimiento.
type ReceiptResponse struct {
	ID          string                `json:"id"`
	MovementID  string                `json:"movement_id"`
	WarehouseID string                `json:"warehouse_id,omitempty"`
	ActorID     string                `json:"actor_id"`
	OccurredAt  time.Time             `json:"occurred_at"`
	Voided      bool                  `json:"voided"`
	Lines       []ReceiptLineResponse `json:"lines"`
}

// ReceiptLineResponse cantidad recibida por línea.
type ReceiptLineResponse struct {
	LineID    string          `json:"line_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// PurchaseOrderResponse orden de compra.
type PurchaseOrderResponse struct {
	ID          string            `json:"id"`
	Number      string            `json:"number"`
	SupplierID  string            `json:"supplier_id"`
	QuotationID string            `json:"quotation_id,omitempty"`
	WarehouseID string            `json:"warehouse_id"`
	RequestedBy string            `json:"requested_by"`
	ApprovedBy  string            `json:"approved_by,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Lines       []LineResponse    `json:"lines"`
	Receipts    []ReceiptResponse `json:"receipts"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// RequisitionResponse requisición interna.
type RequisitionResponse struct {
	ID           string         `json:"id"`
	Number       string         `json:"number"`
	WarehouseID  string         `json:"warehouse_id"`
	CostCenterID string         `json:"cost_center_id,omitempty"`
	RequestedBy  string         `json:"requested_by"`
	ApprovedBy   string         `json:"approved_by,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	Lines        []LineResponse `json:"lines"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ExitVoucherResponse vale de salida.
type ExitVoucherResponse struct {
	ID            string            `json:"id"`
	Number        string            `json:"number"`
	RequisitionID string            `json:"requisition_id,omitempty"`
	WarehouseID   string            `json:"warehouse_id"`
	Recipient     RecipientDTO      `json:"recipient"`
	CreatedBy     string            `json:"created_by"`
	Notes         string            `json:"notes,omitempty"`
	Lines         []LineResponse    `json:"lines"`
	Deliveries    []ReceiptResponse `json:"deliveries"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// EppAssignmentResponse entrega de EPP.
type EppAssignmentResponse struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id"`
	Recipient        RecipientDTO    `json:"recipient"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	IssuedAt         time.Time       `json:"issued_at"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty"`
	ClosedAt         *time.Time      `json:"closed_at,omitempty"`
	IssueMovementID  string          `json:"issue_movement_id"`
	ReturnMovementID string          `json:"return_movement_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// EquipmentResponse equipo prestable con su disponibilidad.
type EquipmentResponse struct {
	ID                string          `json:"id"`
	WarehouseID       string          `json:"warehouse_id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	SerialNumber      string          `json:"serial_number,omitempty"`
	ControlType       string          `json:"control_type"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Available         bool            `json:"available"`
	Retired           bool            `json:"retired"`
}

// EquipmentLoanResponse préstamo de equipo.
type EquipmentLoanResponse struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	EquipmentID      string          `json:"equipment_id"`
	Recipient        RecipientDTO    `json:"recipient"`
	Quantity         decimal.Decimal `json:"quantity"`
	LoanedAt         time.Time       `json:"loaned_at"`
	ExpectedReturnAt time.Time       `json:"expected_return_at"`
	ReturnedAt       *time.Time      `json:"returned_at,omitempty"`
	RenewedFromID    string          `json:"renewed_from_id,omitempty"`
	RenewedToID      string          `json:"renewed_to_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}
