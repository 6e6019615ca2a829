package documents

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
)

// CreateRequisitionInput datos de una requisición nueva.
type CreateRequisitionInput struct {
	WarehouseID  string
	CostCenterID string
	Notes        string
	Lines        []LineInput
}

// CreateRequisition crea la requisición en DRAFT con número REQ.
func (s *Service) CreateRequisition(ctx context.Context, tenant domain.TenantContext, in CreateRequisitionInput) (*entity.Requisition, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyRequisition}, OpCreate); err != nil {
		return nil, err
	}
	var r *entity.Requisition
	err := s.transact(ctx, "crear requisición", func(repos repository.Repos) error {
		if _, err := warehouse(ctx, repos, tenant, in.WarehouseID); err != nil {
			return err
		}
		if err := checkProducts(ctx, repos, tenant, in.Lines); err != nil {
			return err
		}
		number, err := s.seq.NextInTx(ctx, repos, tenant, inventory.PrefixRequisition)
		if err != nil {
			return err
		}
		now := s.now()
		r = &entity.Requisition{
			ID:           newID(),
			CompanyID:    tenant.CompanyID,
			Number:       number,
			WarehouseID:  in.WarehouseID,
			CostCenterID: in.CostCenterID,
			RequestedBy:  tenant.UserID,
			Status:       entity.RequisitionDraft,
			Notes:        in.Notes,
			Lines:        requisitionLines(in.Lines),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return repos.Requisitions.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateRequisitionLines reemplaza las líneas; solo en DRAFT.
func (s *Service) UpdateRequisitionLines(ctx context.Context, tenant domain.TenantContext, id string, lines []LineInput) (*entity.Requisition, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyRequisition, ID: id}, OpUpdateLines); err != nil {
		return nil, err
	}
	var r *entity.Requisition
	err := s.transact(ctx, "editar requisición", func(repos repository.Repos) error {
		var err error
		r, err = lockRequisition(ctx, repos, tenant, id)
		if err != nil {
			return err
		}
		if err := draftOnly(entity.FamilyRequisition, string(r.Status), string(entity.RequisitionDraft)); err != nil {
			return err
		}
		if err := checkProducts(ctx, repos, tenant, lines); err != nil {
			return err
		}
		r.Lines = requisitionLines(lines)
		r.UpdatedAt = s.now()
		return repos.Requisitions.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) transitionRequisition(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id, transition string, payload TransitionPayload) (*DocumentState, error) {
	// Al anular se bloquean primero los vales: mismo orden (vale, requisición) que la entrega.
	var vouchers []*entity.ExitVoucher
	if transition == workflow.Void {
		var err error
		if vouchers, err = lockVouchersOf(ctx, repos, tenant, id); err != nil {
			return nil, err
		}
	}
	r, err := lockRequisition(ctx, repos, tenant, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Requisition.Check(string(r.Status), transition); err != nil {
		return nil, err
	}
	now := s.now()
	switch transition {
	case workflow.Submit:
		r.Status = entity.RequisitionPending
	case workflow.Approve:
		if err := segregate(r.RequestedBy, tenant); err != nil {
			return nil, err
		}
		if err := approveQuantities(r, payload.Lines); err != nil {
			return nil, err
		}
		r.ApprovedBy = tenant.UserID
		r.Status = entity.RequisitionApproved
	case workflow.Reject:
		r.Status = entity.RequisitionRejected
	case workflow.Void:
		if err := s.voidPendingVouchers(ctx, repos, r, vouchers); err != nil {
			return nil, err
		}
		r.Status = entity.RequisitionVoided
	}
	if payload.Notes != "" {
		r.Notes = payload.Notes
	}
	r.UpdatedAt = now
	if err := repos.Requisitions.Update(ctx, r); err != nil {
		return nil, err
	}
	return s.requisitionState(r, vouchers), nil
}

// approveQuantities fija la cantidad aprobada por línea; sin líneas se aprueba lo solicitado.
func approveQuantities(r *entity.Requisition, lines []TransitionLine) error {
	for i, tl := range lines {
		field := fmt.Sprintf("lines[%d]", i)
		line := r.Line(tl.LineID)
		if line == nil {
			return domain.NewValidationError(field+".line_id", "no pertenece a la requisición")
		}
		if tl.Quantity.IsNegative() {
			return domain.NewValidationError(field+".quantity", "no puede ser negativa")
		}
		if tl.Quantity.GreaterThan(line.RequestedQuantity) {
			return domain.NewValidationError(field+".quantity", "no puede exceder lo solicitado")
		}
		q := tl.Quantity
		line.ApprovedQuantity = &q
	}
	return nil
}

// voidPendingVouchers una requisición solo se anula sin entregas vigentes; los vales que aún no
// entregaron nada se anulan con ella.
func (s *Service) voidPendingVouchers(ctx context.Context, repos repository.Repos, r *entity.Requisition, vouchers []*entity.ExitVoucher) error {
	for _, v := range vouchers {
		if v.Status == entity.ExitVoucherVoided {
			continue
		}
		if hasActiveDeliveries(v) {
			return &domain.IllegalTransitionError{
				Family:     string(entity.FamilyRequisition),
				Transition: workflow.Void,
				Current:    fmt.Sprintf("%s (vale %s en %s)", r.Status, v.Number, v.Status),
				Allowed:    []string{"todos los vales de salida anulados"},
			}
		}
	}
	now := s.now()
	for _, v := range vouchers {
		if v.Status == entity.ExitVoucherVoided {
			continue
		}
		v.Status = entity.ExitVoucherVoided
		v.UpdatedAt = now
		if err := repos.ExitVouchers.Update(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func hasActiveDeliveries(v *entity.ExitVoucher) bool {
	for _, d := range v.Deliveries {
		if !d.Voided {
			return true
		}
	}
	return false
}

func lockVouchersOf(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, requisitionID string) ([]*entity.ExitVoucher, error) {
	listed, err := repos.ExitVouchers.ListByRequisition(ctx, tenant.CompanyID, requisitionID)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.ExitVoucher, 0, len(listed))
	for _, v := range listed {
		locked, err := repos.ExitVouchers.GetForUpdate(ctx, tenant.CompanyID, v.ID)
		if err != nil {
			return nil, err
		}
		if locked != nil {
			out = append(out, locked)
		}
	}
	return out, nil
}

func lockRequisition(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id string) (*entity.Requisition, error) {
	r, err := repos.Requisitions.GetForUpdate(ctx, tenant.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound(entity.FamilyRequisition, id)
	}
	if err := tenant.Owns(string(entity.FamilyRequisition), r.ID, r.CompanyID); err != nil {
		return nil, err
	}
	return r, nil
}

func requisitionLines(in []LineInput) []entity.RequisitionLine {
	out := make([]entity.RequisitionLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.RequisitionLine{
			ID:                newID(),
			ProductID:         l.ProductID,
			RequestedQuantity: l.Quantity,
		})
	}
	return out
}
