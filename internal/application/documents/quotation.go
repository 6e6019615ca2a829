package documents

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
)

// CreateQuotationInput datos de una cotización nueva. ValidUntil nil usa la vigencia por defecto.
type CreateQuotationInput struct {
	SupplierID string
	ValidUntil *time.Time
	Notes      string
	Lines      []LineInput
}

// CreateQuotation crea la cotización en DRAFT con número COT.
func (s *Service) CreateQuotation(ctx context.Context, tenant domain.TenantContext, in CreateQuotationInput) (*entity.Quotation, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if in.SupplierID == "" {
		return nil, domain.NewValidationError("supplier_id", "es obligatorio")
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyQuotation}, OpCreate); err != nil {
		return nil, err
	}
	now := s.now()
	validUntil := in.ValidUntil
	if validUntil == nil {
		v := now.AddDate(0, 0, s.validity)
		validUntil = &v
	}
	if !validUntil.After(now) {
		return nil, domain.NewValidationError("valid_until", "debe ser posterior a la fecha actual")
	}

	var q *entity.Quotation
	err := s.transact(ctx, "crear cotización", func(repos repository.Repos) error {
		if err := checkProducts(ctx, repos, tenant, in.Lines); err != nil {
			return err
		}
		number, err := s.seq.NextInTx(ctx, repos, tenant, inventory.PrefixQuotation)
		if err != nil {
			return err
		}
		q = &entity.Quotation{
			ID:              newID(),
			CompanyID:       tenant.CompanyID,
			Number:          number,
			SupplierID:      in.SupplierID,
			RequestedBy:     tenant.UserID,
			Status:          entity.QuotationDraft,
			PersistedStatus: entity.QuotationDraft,
			ValidUntil:      validUntil,
			Notes:           in.Notes,
			Lines:           quotationLines(in.Lines),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return repos.Quotations.Create(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateQuotationLines reemplaza las líneas; solo en DRAFT.
func (s *Service) UpdateQuotationLines(ctx context.Context, tenant domain.TenantContext, id string, lines []LineInput) (*entity.Quotation, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyQuotation, ID: id}, OpUpdateLines); err != nil {
		return nil, err
	}
	var q *entity.Quotation
	err := s.transact(ctx, "editar cotización", func(repos repository.Repos) error {
		var err error
		q, err = lockQuotation(ctx, repos, tenant, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := draftOnly(entity.FamilyQuotation, string(workflow.QuotationStatus(q, now)), string(entity.QuotationDraft)); err != nil {
			return err
		}
		if err := checkProducts(ctx, repos, tenant, lines); err != nil {
			return err
		}
		q.Lines = quotationLines(lines)
		q.UpdatedAt = now
		return repos.Quotations.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ConvertToPurchaseOrder genera una orden de compra DRAFT desde una cotización aprobada.
// Una cotización se convierte una sola vez.
func (s *Service) ConvertToPurchaseOrder(ctx context.Context, tenant domain.TenantContext, quotationID, warehouseID string) (*entity.PurchaseOrder, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	ref := entity.DocumentRef{Family: entity.FamilyQuotation, ID: quotationID}
	if err := s.authorize(ctx, tenant, ref, OpConvert); err != nil {
		return nil, err
	}
	var o *entity.PurchaseOrder
	err := s.transact(ctx, "convertir cotización", func(repos repository.Repos) error {
		q, err := lockQuotation(ctx, repos, tenant, quotationID)
		if err != nil {
			return err
		}
		now := s.now()
		current := workflow.QuotationStatus(q, now)
		if current != entity.QuotationApproved {
			return &domain.IllegalTransitionError{
				Family:     string(entity.FamilyQuotation),
				Transition: OpConvert,
				Current:    string(current),
				Allowed:    []string{string(entity.QuotationApproved)},
			}
		}
		if q.PurchaseOrderID != "" {
			return domain.NewValidationError("quotation_id", "la cotización ya fue convertida en orden de compra")
		}
		if _, err := warehouse(ctx, repos, tenant, warehouseID); err != nil {
			return err
		}
		number, err := s.seq.NextInTx(ctx, repos, tenant, inventory.PrefixPurchaseOrder)
		if err != nil {
			return err
		}
		o = &entity.PurchaseOrder{
			ID:          newID(),
			CompanyID:   tenant.CompanyID,
			Number:      number,
			SupplierID:  q.SupplierID,
			QuotationID: q.ID,
			WarehouseID: warehouseID,
			RequestedBy: tenant.UserID,
			Status:      entity.PurchaseOrderDraft,
			Notes:       q.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for _, l := range q.Lines {
			o.Lines = append(o.Lines, entity.PurchaseOrderLine{
				ID:                newID(),
				ProductID:         l.ProductID,
				RequestedQuantity: l.Quantity,
				UnitPrice:         l.UnitPrice,
			})
		}
		if err := repos.PurchaseOrders.Create(ctx, o); err != nil {
			return err
		}
		q.PurchaseOrderID = o.ID
		q.UpdatedAt = now
		return repos.Quotations.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) transitionQuotation(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id, transition string) (*DocumentState, error) {
	q, err := lockQuotation(ctx, repos, tenant, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := workflow.Quotation.Check(string(workflow.QuotationStatus(q, now)), transition); err != nil {
		return nil, err
	}
	switch transition {
	case workflow.Send:
		q.Status = entity.QuotationSent
	case workflow.Receive:
		q.Status = entity.QuotationReceived
	case workflow.Approve:
		q.Status = entity.QuotationApproved
	case workflow.Reject:
		q.Status = entity.QuotationRejected
	case workflow.Void:
		q.Status = entity.QuotationVoided
	}
	q.PersistedStatus = q.Status
	q.UpdatedAt = now
	if err := repos.Quotations.Update(ctx, q); err != nil {
		return nil, err
	}
	return s.quotationState(q, now), nil
}

func lockQuotation(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id string) (*entity.Quotation, error) {
	q, err := repos.Quotations.GetForUpdate(ctx, tenant.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, notFound(entity.FamilyQuotation, id)
	}
	if err := tenant.Owns(string(entity.FamilyQuotation), q.ID, q.CompanyID); err != nil {
		return nil, err
	}
	return q, nil
}

func quotationLines(in []LineInput) []entity.QuotationLine {
	out := make([]entity.QuotationLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.QuotationLine{
			ID:        newID(),
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return out
}
