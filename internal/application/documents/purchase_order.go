package documents

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderInput datos de una orden de compra nueva.
type CreatePurchaseOrderInput struct {
	SupplierID  string
	WarehouseID string
	Notes       string
	Lines       []LineInput
}

// CreatePurchaseOrder crea la orden en DRAFT con número OC.
func (s *Service) CreatePurchaseOrder(ctx context.Context, tenant domain.TenantContext, in CreatePurchaseOrderInput) (*entity.PurchaseOrder, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if in.SupplierID == "" {
		return nil, domain.NewValidationError("supplier_id", "es obligatorio")
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyPurchaseOrder}, OpCreate); err != nil {
		return nil, err
	}
	var o *entity.PurchaseOrder
	err := s.transact(ctx, "crear orden de compra", func(repos repository.Repos) error {
		if _, err := warehouse(ctx, repos, tenant, in.WarehouseID); err != nil {
			return err
		}
		if err := checkProducts(ctx, repos, tenant, in.Lines); err != nil {
			return err
		}
		number, err := s.seq.NextInTx(ctx, repos, tenant, inventory.PrefixPurchaseOrder)
		if err != nil {
			return err
		}
		now := s.now()
		o = &entity.PurchaseOrder{
			ID:          newID(),
			CompanyID:   tenant.CompanyID,
			Number:      number,
			SupplierID:  in.SupplierID,
			WarehouseID: in.WarehouseID,
			RequestedBy: tenant.UserID,
			Status:      entity.PurchaseOrderDraft,
			Notes:       in.Notes,
			Lines:       orderLines(in.Lines),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return repos.PurchaseOrders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdatePurchaseOrderLines reemplaza las líneas; solo en DRAFT.
func (s *Service) UpdatePurchaseOrderLines(ctx context.Context, tenant domain.TenantContext, id string, lines []LineInput) (*entity.PurchaseOrder, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyPurchaseOrder, ID: id}, OpUpdateLines); err != nil {
		return nil, err
	}
	var o *entity.PurchaseOrder
	err := s.transact(ctx, "editar orden de compra", func(repos repository.Repos) error {
		var err error
		o, err = lockPurchaseOrder(ctx, repos, tenant, id)
		if err != nil {
			return err
		}
		if err := draftOnly(entity.FamilyPurchaseOrder, string(o.Status), string(entity.PurchaseOrderDraft)); err != nil {
			return err
		}
		if err := checkProducts(ctx, repos, tenant, lines); err != nil {
			return err
		}
		o.Lines = orderLines(lines)
		o.UpdatedAt = s.now()
		return repos.PurchaseOrders.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) transitionPurchaseOrder(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id, transition string, payload TransitionPayload) (*DocumentState, error) {
	o, err := lockPurchaseOrder(ctx, repos, tenant, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.PurchaseOrder.Check(string(o.Status), transition); err != nil {
		return nil, err
	}
	switch transition {
	case workflow.Submit:
		o.Status = entity.PurchaseOrderPending
	case workflow.Approve:
		if err := segregate(o.RequestedBy, tenant); err != nil {
			return nil, err
		}
		o.ApprovedBy = tenant.UserID
		o.Status = entity.PurchaseOrderApproved
	case workflow.Send:
		o.Status = entity.PurchaseOrderSent
	case workflow.Receive:
		if err := s.receive(ctx, repos, tenant, o, payload); err != nil {
			return nil, err
		}
	case workflow.Void:
		if err := s.voidReceipts(ctx, repos, tenant, o); err != nil {
			return nil, err
		}
		o.Status = entity.PurchaseOrderVoided
	}
	if payload.Notes != "" {
		o.Notes = payload.Notes
	}
	o.UpdatedAt = s.now()
	if err := repos.PurchaseOrders.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.purchaseOrderState(o), nil
}

// receive registra un evento de recepción como un RECEIPT. Se admite recibir más de lo pedido;
// la orden queda RECEIVED cuando toda línea alcanza lo pedido.
func (s *Service) receive(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, o *entity.PurchaseOrder, payload TransitionPayload) error {
	if len(payload.Lines) == 0 {
		return domain.NewValidationError("lines", "indique las líneas recibidas")
	}
	warehouseID := payload.WarehouseID
	if warehouseID == "" {
		warehouseID = o.WarehouseID
	}
	var (
		movLines     []inventory.LineInput
		receiptLines []entity.PurchaseReceiptLine
	)
	for i, pl := range payload.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		line := o.Line(pl.LineID)
		if line == nil {
			return domain.NewValidationError(field+".line_id", "no pertenece a la orden")
		}
		if !pl.Quantity.IsPositive() {
			return domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		}
		cost := line.UnitPrice
		if pl.UnitCost != nil {
			if pl.UnitCost.IsNegative() {
				return domain.NewValidationError(field+".unit_cost", "no puede ser negativo")
			}
			cost = *pl.UnitCost
		}
		movLines = append(movLines, inventory.LineInput{
			ProductID:   line.ProductID,
			WarehouseID: warehouseID,
			Quantity:    pl.Quantity,
			UnitCost:    &cost,
		})
		receiptLines = append(receiptLines, entity.PurchaseReceiptLine{
			OrderLineID: line.ID,
			ProductID:   line.ProductID,
			Quantity:    pl.Quantity,
			UnitCost:    cost,
		})
	}

	mov, err := s.recorder.RecordInTx(ctx, repos, tenant, inventory.RecordInput{
		Source:    entity.DocumentRef{Family: entity.FamilyPurchaseOrder, ID: o.ID, Number: o.Number},
		Direction: entity.DirectionReceipt,
		Lines:     movLines,
	})
	if err != nil {
		return err
	}
	for _, rl := range receiptLines {
		line := o.Line(rl.OrderLineID)
		line.ReceivedQuantity = line.ReceivedQuantity.Add(rl.Quantity)
	}
	o.Receipts = append(o.Receipts, entity.PurchaseReceipt{
		ID:          newID(),
		MovementID:  mov.ID,
		WarehouseID: warehouseID,
		ReceivedBy:  tenant.UserID,
		ReceivedAt:  mov.CreatedAt,
		Lines:       receiptLines,
	})
	if o.FullyReceived() {
		o.Status = entity.PurchaseOrderReceived
	} else {
		o.Status = entity.PurchaseOrderPartial
	}
	return nil
}

// voidReceipts anula el movimiento de cada recepción vigente y descuenta lo recibido.
func (s *Service) voidReceipts(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, o *entity.PurchaseOrder) error {
	owner := entity.DocumentRef{Family: entity.FamilyPurchaseOrder, ID: o.ID, Number: o.Number}
	for i := range o.Receipts {
		r := &o.Receipts[i]
		if r.Voided {
			continue
		}
		if _, err := s.recorder.VoidInTx(ctx, repos, tenant, r.MovementID, owner); err != nil {
			return err
		}
		r.Voided = true
		for _, rl := range r.Lines {
			if line := o.Line(rl.OrderLineID); line != nil {
				line.ReceivedQuantity = decimal.Max(line.ReceivedQuantity.Sub(rl.Quantity), decimal.Zero)
			}
		}
	}
	return nil
}

func lockPurchaseOrder(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id string) (*entity.PurchaseOrder, error) {
	o, err := repos.PurchaseOrders.GetForUpdate(ctx, tenant.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, notFound(entity.FamilyPurchaseOrder, id)
	}
	if err := tenant.Owns(string(entity.FamilyPurchaseOrder), o.ID, o.CompanyID); err != nil {
		return nil, err
	}
	return o, nil
}

func orderLines(in []LineInput) []entity.PurchaseOrderLine {
	out := make([]entity.PurchaseOrderLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.PurchaseOrderLine{
			ID:                newID(),
			ProductID:         l.ProductID,
			RequestedQuantity: l.Quantity,
			UnitPrice:         l.UnitPrice,
		})
	}
	return out
}
