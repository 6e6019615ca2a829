package repository

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// QuotationRepository cotizaciones.
type QuotationRepository interface {
	Create(ctx context.Context, q *entity.Quotation) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Quotation, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Quotation, error)
	Update(ctx context.Context, q *entity.Quotation) error
	// ListOpen cotizaciones en DRAFT, SENT o RECEIVED de todas las empresas (job de conciliación).
	ListOpen(ctx context.Context) ([]*entity.Quotation, error)
	SetPersistedStatus(ctx context.Context, id string, status entity.QuotationStatus) error
}

// PurchaseOrderRepository órdenes de compra con líneas y recepciones.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, o *entity.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	Update(ctx context.Context, o *entity.PurchaseOrder) error
}

// RequisitionRepository requisiciones internas.
type RequisitionRepository interface {
	Create(ctx context.Context, r *entity.Requisition) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Requisition, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Requisition, error)
	Update(ctx context.Context, r *entity.Requisition) error
}

// ExitVoucherRepository vales de salida con entregas.
type ExitVoucherRepository interface {
	Create(ctx context.Context, v *entity.ExitVoucher) error
	GetByID(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error)
	Update(ctx context.Context, v *entity.ExitVoucher) error
	ListByRequisition(ctx context.Context, companyID, requisitionID string) ([]*entity.ExitVoucher, error)
}

// EppAssignmentRepository entregas de EPP.
type EppAssignmentRepository interface {
	Create(ctx context.Context, a *entity.EppAssignment) error
	GetByID(ctx context.Context, companyID, id string) (*entity.EppAssignment, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.EppAssignment, error)
	Update(ctx context.Context, a *entity.EppAssignment) error
	// ListOpen entregas aún en manos del receptor, de todas las empresas.
	ListOpen(ctx context.Context) ([]*entity.EppAssignment, error)
	SetPersistedStatus(ctx context.Context, id string, status entity.EppStatus) error
}

// EquipmentRepository equipos prestables. GetForUpdate bloquea la fila igual que un saldo.
type EquipmentRepository interface {
	Create(ctx context.Context, e *entity.EquipmentPrestable) error
	GetByID(ctx context.Context, companyID, id string) (*entity.EquipmentPrestable, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.EquipmentPrestable, error)
	Update(ctx context.Context, e *entity.EquipmentPrestable) error
}

// EquipmentLoanRepository préstamos.
type EquipmentLoanRepository interface {
	Create(ctx context.Context, l *entity.EquipmentLoan) error
	GetByID(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error)
	Update(ctx context.Context, l *entity.EquipmentLoan) error
	// ListOpen préstamos ACTIVO o VENCIDO de todas las empresas.
	ListOpen(ctx context.Context) ([]*entity.EquipmentLoan, error)
	SetPersistedStatus(ctx context.Context, id string, status entity.LoanStatus) error
}
