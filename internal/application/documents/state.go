package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
)

// DocumentState estado efectivo de un documento tras una transición o consulta.
type DocumentState struct {
	Ref             entity.DocumentRef
	Status          string // estado efectivo (incluye los perezosos)
	PersistedStatus string
	Available       []string // transiciones legales desde Status
	DueSoon         bool     // préstamos próximos a vencer
	Related         []entity.DocumentRef
	Document        any
}

func (s *Service) quotationState(q *entity.Quotation, now time.Time) *DocumentState {
	status := string(workflow.QuotationStatus(q, now))
	st := &DocumentState{
		Ref:             entity.DocumentRef{Family: entity.FamilyQuotation, ID: q.ID, Number: q.Number},
		Status:          status,
		PersistedStatus: string(q.PersistedStatus),
		Available:       workflow.Quotation.Available(status),
		Document:        q,
	}
	if q.PurchaseOrderID != "" {
		st.Related = append(st.Related, entity.DocumentRef{Family: entity.FamilyPurchaseOrder, ID: q.PurchaseOrderID})
	}
	return st
}

func (s *Service) purchaseOrderState(o *entity.PurchaseOrder) *DocumentState {
	st := &DocumentState{
		Ref:             entity.DocumentRef{Family: entity.FamilyPurchaseOrder, ID: o.ID, Number: o.Number},
		Status:          string(o.Status),
		PersistedStatus: string(o.Status),
		Available:       workflow.PurchaseOrder.Available(string(o.Status)),
		Document:        o,
	}
	if o.QuotationID != "" {
		st.Related = append(st.Related, entity.DocumentRef{Family: entity.FamilyQuotation, ID: o.QuotationID})
	}
	return st
}

func (s *Service) requisitionState(r *entity.Requisition, vouchers []*entity.ExitVoucher) *DocumentState {
	var available []string
	for _, t := range workflow.Requisition.Available(string(r.Status)) {
		if t != workflow.Fulfill {
			available = append(available, t)
		}
	}
	st := &DocumentState{
		Ref:             entity.DocumentRef{Family: entity.FamilyRequisition, ID: r.ID, Number: r.Number},
		Status:          string(r.Status),
		PersistedStatus: string(r.Status),
		Available:       available,
		Document:        r,
	}
	for _, v := range vouchers {
		st.Related = append(st.Related, entity.DocumentRef{Family: entity.FamilyExitVoucher, ID: v.ID, Number: v.Number})
	}
	return st
}

func (s *Service) exitVoucherState(v *entity.ExitVoucher) *DocumentState {
	st := &DocumentState{
		Ref:             entity.DocumentRef{Family: entity.FamilyExitVoucher, ID: v.ID, Number: v.Number},
		Status:          string(v.Status),
		PersistedStatus: string(v.Status),
		Available:       workflow.ExitVoucher.Available(string(v.Status)),
		Document:        v,
	}
	if v.RequisitionID != "" {
		st.Related = append(st.Related, entity.DocumentRef{Family: entity.FamilyRequisition, ID: v.RequisitionID})
	}
	return st
}

func (s *Service) eppState(a *entity.EppAssignment, now time.Time) *DocumentState {
	status := string(s.policy.EppStatus(a, now))
	return &DocumentState{
		Ref:             entity.DocumentRef{Family: entity.FamilyEppAssignment, ID: a.ID, Number: a.Number},
		Status:          status,
		PersistedStatus: string(a.PersistedStatus),
		Available:       workflow.EppAssignment.Available(status),
		Document:        a,
	}
}

func (s *Service) loanState(l *entity.EquipmentLoan, now time.Time) *DocumentState {
	status := string(workflow.LoanStatus(l, now))
	st := &DocumentState{
		Ref:             entity.DocumentRef{Family: entity.FamilyEquipmentLoan, ID: l.ID, Number: l.Number},
		Status:          status,
		PersistedStatus: string(l.PersistedStatus),
		Available:       workflow.EquipmentLoan.Available(status),
		DueSoon:         s.policy.LoanDueSoon(l, now),
		Document:        l,
	}
	if l.RenewedFromID != "" {
		st.Related = append(st.Related, entity.DocumentRef{Family: entity.FamilyEquipmentLoan, ID: l.RenewedFromID})
	}
	if l.RenewedToID != "" {
		st.Related = append(st.Related, entity.DocumentRef{Family: entity.FamilyEquipmentLoan, ID: l.RenewedToID})
	}
	return st
}

// GetDocument lee un documento con su estado efectivo calculado a la hora actual.
func (s *Service) GetDocument(ctx context.Context, tenant domain.TenantContext, family entity.DocumentFamily, id string) (*DocumentState, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	now := s.now()
	scope := func(warehouseID string) error {
		if !tenant.CanAccessWarehouse(warehouseID) {
			return fmt.Errorf("%w: bodega %s fuera del alcance del usuario", domain.ErrForbidden, warehouseID)
		}
		return nil
	}

	switch family {
	case entity.FamilyQuotation:
		q, err := repos.Quotations.GetByID(ctx, tenant.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if q == nil {
			return nil, notFound(family, id)
		}
		return s.quotationState(q, now), nil
	case entity.FamilyPurchaseOrder:
		o, err := repos.PurchaseOrders.GetByID(ctx, tenant.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, notFound(family, id)
		}
		if err := scope(o.WarehouseID); err != nil {
			return nil, err
		}
		return s.purchaseOrderState(o), nil
	case entity.FamilyRequisition:
		r, err := repos.Requisitions.GetByID(ctx, tenant.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, notFound(family, id)
		}
		if err := scope(r.WarehouseID); err != nil {
			return nil, err
		}
		vouchers, err := repos.ExitVouchers.ListByRequisition(ctx, tenant.CompanyID, r.ID)
		if err != nil {
			return nil, err
		}
		return s.requisitionState(r, vouchers), nil
	case entity.FamilyExitVoucher:
		v, err := repos.ExitVouchers.GetByID(ctx, tenant.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, notFound(family, id)
		}
		if err := scope(v.WarehouseID); err != nil {
			return nil, err
		}
		return s.exitVoucherState(v), nil
	case entity.FamilyEppAssignment:
		a, err := repos.EppAssignments.GetByID(ctx, tenant.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, notFound(family, id)
		}
		if err := scope(a.WarehouseID); err != nil {
			return nil, err
		}
		return s.eppState(a, now), nil
	case entity.FamilyEquipmentLoan:
		l, err := repos.Loans.GetByID(ctx, tenant.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, notFound(family, id)
		}
		return s.loanState(l, now), nil
	}
	return nil, domain.NewValidationError("family", fmt.Sprintf("familia documental desconocida: %q", family))
}
