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

// VoucherLineInput línea de un vale. Con requisición, RequisitionLineID es obligatorio y el producto
// se toma de la línea de origen.
type VoucherLineInput struct {
	RequisitionLineID string
	ProductID         string
	Quantity          decimal.Decimal
}

// CreateExitVoucherInput datos de un vale de salida nuevo.
type CreateExitVoucherInput struct {
	RequisitionID string
	WarehouseID   string // por defecto la bodega de la requisición
	Recipient     entity.Recipient
	Notes         string
	Lines         []VoucherLineInput
}

// CreateExitVoucher crea el vale en PENDING con número VS. No mueve stock hasta la entrega.
func (s *Service) CreateExitVoucher(ctx context.Context, tenant domain.TenantContext, in CreateExitVoucherInput) (*entity.ExitVoucher, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "el vale no tiene líneas")
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyExitVoucher}, OpCreate); err != nil {
		return nil, err
	}
	var v *entity.ExitVoucher
	err := s.transact(ctx, "crear vale de salida", func(repos repository.Repos) error {
		var err error
		v, err = s.createVoucherInTx(ctx, repos, tenant, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// CreateFromRequisition genera un vale con todo lo pendiente de la requisición que no esté ya
// comprometido en otros vales abiertos.
func (s *Service) CreateFromRequisition(ctx context.Context, tenant domain.TenantContext, requisitionID string, recipient entity.Recipient) (*entity.ExitVoucher, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyExitVoucher}, OpCreate); err != nil {
		return nil, err
	}
	var v *entity.ExitVoucher
	err := s.transact(ctx, "generar vale desde requisición", func(repos repository.Repos) error {
		r, err := lockRequisition(ctx, repos, tenant, requisitionID)
		if err != nil {
			return err
		}
		reserved, err := reservedByVouchers(ctx, repos, tenant, requisitionID)
		if err != nil {
			return err
		}
		in := CreateExitVoucherInput{RequisitionID: r.ID, WarehouseID: r.WarehouseID, Recipient: recipient}
		for _, l := range r.Lines {
			free := l.Pending().Sub(reserved[l.ID])
			if free.IsPositive() {
				in.Lines = append(in.Lines, VoucherLineInput{RequisitionLineID: l.ID, ProductID: l.ProductID, Quantity: free})
			}
		}
		if len(in.Lines) == 0 {
			return domain.NewValidationError("requisition_id", "la requisición no tiene cantidades pendientes")
		}
		v, err = s.createVoucherInTx(ctx, repos, tenant, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) createVoucherInTx(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, in CreateExitVoucherInput) (*entity.ExitVoucher, error) {
	if err := in.Recipient.Validate(); err != nil {
		return nil, domain.NewValidationError("recipient", err.Error())
	}
	now := s.now()
	v := &entity.ExitVoucher{
		ID:            newID(),
		CompanyID:     tenant.CompanyID,
		RequisitionID: in.RequisitionID,
		WarehouseID:   in.WarehouseID,
		Recipient:     in.Recipient,
		CreatedBy:     tenant.UserID,
		Status:        entity.ExitVoucherPending,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var req *entity.Requisition
	var reserved map[string]decimal.Decimal
	if in.RequisitionID != "" {
		var err error
		if req, err = lockRequisition(ctx, repos, tenant, in.RequisitionID); err != nil {
			return nil, err
		}
		if err := workflow.Requisition.Check(string(req.Status), workflow.Fulfill); err != nil {
			return nil, err
		}
		if v.WarehouseID == "" {
			v.WarehouseID = req.WarehouseID
		}
		if reserved, err = reservedByVouchers(ctx, repos, tenant, req.ID); err != nil {
			return nil, err
		}
	}
	if _, err := warehouse(ctx, repos, tenant, v.WarehouseID); err != nil {
		return nil, err
	}

	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if !l.Quantity.IsPositive() {
			return nil, domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		}
		productID := l.ProductID
		if req != nil {
			rl := req.Line(l.RequisitionLineID)
			if rl == nil {
				return nil, domain.NewValidationError(field+".requisition_line_id", "no pertenece a la requisición")
			}
			if productID != "" && productID != rl.ProductID {
				return nil, domain.NewValidationError(field+".product_id", "no coincide con la línea de la requisición")
			}
			productID = rl.ProductID
			free := rl.Pending().Sub(reserved[rl.ID])
			if l.Quantity.GreaterThan(free) {
				return nil, domain.NewValidationError(field+".quantity", "excede lo pendiente de la requisición ("+free.String()+")")
			}
			reserved[rl.ID] = reserved[rl.ID].Add(l.Quantity)
		}
		if productID == "" {
			return nil, domain.NewValidationError(field+".product_id", "es obligatorio")
		}
		if _, err := product(ctx, repos, tenant, productID); err != nil {
			return nil, err
		}
		v.Lines = append(v.Lines, entity.ExitVoucherLine{
			ID:                newID(),
			RequisitionLineID: l.RequisitionLineID,
			ProductID:         productID,
			Quantity:          l.Quantity,
		})
	}

	number, err := s.seq.NextInTx(ctx, repos, tenant, inventory.PrefixExitVoucher)
	if err != nil {
		return nil, err
	}
	v.Number = number
	if err := repos.ExitVouchers.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// reservedByVouchers cantidad por línea de requisición aún por entregar en vales abiertos.
func reservedByVouchers(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, requisitionID string) (map[string]decimal.Decimal, error) {
	vouchers, err := repos.ExitVouchers.ListByRequisition(ctx, tenant.CompanyID, requisitionID)
	if err != nil {
		return nil, err
	}
	reserved := make(map[string]decimal.Decimal)
	for _, v := range vouchers {
		if v.Status == entity.ExitVoucherVoided {
			continue
		}
		for i := range v.Lines {
			l := &v.Lines[i]
			if l.RequisitionLineID != "" {
				reserved[l.RequisitionLineID] = reserved[l.RequisitionLineID].Add(l.Pending())
			}
		}
	}
	return reserved, nil
}

func (s *Service) transitionExitVoucher(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id, transition string, payload TransitionPayload) (*DocumentState, error) {
	v, err := lockExitVoucher(ctx, repos, tenant, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.ExitVoucher.Check(string(v.Status), transition); err != nil {
		return nil, err
	}
	var req *entity.Requisition
	if v.RequisitionID != "" {
		if req, err = lockRequisition(ctx, repos, tenant, v.RequisitionID); err != nil {
			return nil, err
		}
	}

	switch transition {
	case workflow.Deliver:
		err = s.deliver(ctx, repos, tenant, v, req, payload.Lines)
	case workflow.Void:
		err = s.voidDeliveries(ctx, repos, tenant, v, req)
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	if payload.Notes != "" {
		v.Notes = payload.Notes
	}
	v.UpdatedAt = now
	if err := repos.ExitVouchers.Update(ctx, v); err != nil {
		return nil, err
	}
	if req != nil {
		req.UpdatedAt = now
		if err := repos.Requisitions.Update(ctx, req); err != nil {
			return nil, err
		}
	}
	return s.exitVoucherState(v), nil
}

type deliveryPick struct {
	line *entity.ExitVoucherLine
	qty  decimal.Decimal
}

// deliver registra una entrega como ISSUE y avanza la requisición de origen. Sin líneas se entrega
// todo lo pendiente del vale.
func (s *Service) deliver(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, v *entity.ExitVoucher, req *entity.Requisition, lines []TransitionLine) error {
	var picks []deliveryPick
	if len(lines) == 0 {
		for i := range v.Lines {
			if p := v.Lines[i].Pending(); p.IsPositive() {
				picks = append(picks, deliveryPick{line: &v.Lines[i], qty: p})
			}
		}
	} else {
		asked := make(map[string]decimal.Decimal)
		for i, tl := range lines {
			field := fmt.Sprintf("lines[%d]", i)
			line := v.Line(tl.LineID)
			if line == nil {
				return domain.NewValidationError(field+".line_id", "no pertenece al vale")
			}
			if !tl.Quantity.IsPositive() {
				return domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
			}
			asked[line.ID] = asked[line.ID].Add(tl.Quantity)
			if asked[line.ID].GreaterThan(line.Pending()) {
				return domain.NewValidationError(field+".quantity", "excede lo pendiente del vale ("+line.Pending().String()+")")
			}
			picks = append(picks, deliveryPick{line: line, qty: tl.Quantity})
		}
	}
	if len(picks) == 0 {
		return domain.NewValidationError("lines", "el vale no tiene cantidades pendientes")
	}

	if req != nil {
		if err := workflow.Requisition.Check(string(req.Status), workflow.Fulfill); err != nil {
			return err
		}
		asked := make(map[string]decimal.Decimal)
		for _, p := range picks {
			rl := req.Line(p.line.RequisitionLineID)
			if rl == nil {
				return domain.NewValidationError("lines", "la línea "+p.line.ID+" no corresponde a la requisición")
			}
			asked[rl.ID] = asked[rl.ID].Add(p.qty)
			if asked[rl.ID].GreaterThan(rl.Pending()) {
				return domain.NewValidationError("lines", "la entrega excede lo pendiente de la requisición ("+rl.Pending().String()+")")
			}
		}
	}

	movLines := make([]inventory.LineInput, 0, len(picks))
	for _, p := range picks {
		movLines = append(movLines, inventory.LineInput{
			ProductID:   p.line.ProductID,
			WarehouseID: v.WarehouseID,
			Quantity:    p.qty,
		})
	}
	mov, err := s.recorder.RecordInTx(ctx, repos, tenant, inventory.RecordInput{
		Source:    entity.DocumentRef{Family: entity.FamilyExitVoucher, ID: v.ID, Number: v.Number},
		Direction: entity.DirectionIssue,
		Lines:     movLines,
	})
	if err != nil {
		return err
	}

	delivery := entity.VoucherDelivery{
		ID:          newID(),
		MovementID:  mov.ID,
		DeliveredBy: tenant.UserID,
		DeliveredAt: mov.CreatedAt,
	}
	for _, p := range picks {
		p.line.DeliveredQuantity = p.line.DeliveredQuantity.Add(p.qty)
		delivery.Lines = append(delivery.Lines, entity.VoucherDeliveryLine{
			VoucherLineID: p.line.ID,
			ProductID:     p.line.ProductID,
			Quantity:      p.qty,
		})
		if req != nil {
			rl := req.Line(p.line.RequisitionLineID)
			rl.DeliveredQuantity = rl.DeliveredQuantity.Add(p.qty)
		}
	}
	v.Deliveries = append(v.Deliveries, delivery)
	if v.FullyDelivered() {
		v.Status = entity.ExitVoucherDelivered
	} else {
		v.Status = entity.ExitVoucherPartial
	}
	if req != nil {
		req.Status = req.FulfillmentStatus()
	}
	return nil
}

// voidDeliveries anula el movimiento de cada entrega vigente y devuelve a la requisición lo entregado.
func (s *Service) voidDeliveries(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, v *entity.ExitVoucher, req *entity.Requisition) error {
	owner := entity.DocumentRef{Family: entity.FamilyExitVoucher, ID: v.ID, Number: v.Number}
	for i := range v.Deliveries {
		d := &v.Deliveries[i]
		if d.Voided {
			continue
		}
		if _, err := s.recorder.VoidInTx(ctx, repos, tenant, d.MovementID, owner); err != nil {
			return err
		}
		d.Voided = true
		if req == nil {
			continue
		}
		for _, dl := range d.Lines {
			line := v.Line(dl.VoucherLineID)
			if line == nil {
				continue
			}
			if rl := req.Line(line.RequisitionLineID); rl != nil {
				rl.DeliveredQuantity = decimal.Max(rl.DeliveredQuantity.Sub(dl.Quantity), decimal.Zero)
			}
		}
	}
	v.Status = entity.ExitVoucherVoided
	if req != nil {
		switch req.Status {
		case entity.RequisitionApproved, entity.RequisitionPartial, entity.RequisitionCompleted:
			req.Status = req.FulfillmentStatus()
		}
	}
	return nil
}

func lockExitVoucher(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id string) (*entity.ExitVoucher, error) {
	v, err := repos.ExitVouchers.GetForUpdate(ctx, tenant.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(entity.FamilyExitVoucher, id)
	}
	if err := tenant.Owns(string(entity.FamilyExitVoucher), v.ID, v.CompanyID); err != nil {
		return nil, err
	}
	return v, nil
}
