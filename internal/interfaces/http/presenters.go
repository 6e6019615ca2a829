package http

import (
	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/application/dto"
	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

func toRefDTO(r entity.DocumentRef) dto.DocumentRefDTO {
	return dto.DocumentRefDTO{Family: string(r.Family), ID: r.ID, Number: r.Number}
}

func toRecipientDTO(r entity.Recipient) dto.RecipientDTO {
	return dto.RecipientDTO{Kind: string(r.Kind), ID: r.ID, Name: r.Name}
}

func fromRecipientDTO(r dto.RecipientDTO) entity.Recipient {
	return entity.Recipient{Kind: entity.RecipientKind(r.Kind), ID: r.ID, Name: r.Name}
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	lines := make([]dto.MovementLineResponse, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, dto.MovementLineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			Quantity:          l.Quantity,
			UnitCost:          l.UnitCost,
			TotalCost:         l.TotalCost,
			OriginWarehouseID: l.OriginWarehouseID,
			DestWarehouseID:   l.DestWarehouseID,
		})
	}
	return dto.MovementResponse{
		ID:        m.ID,
		Number:    m.Number,
		Direction: string(m.Direction),
		Status:    string(m.Status),
		Source:    toRefDTO(m.Source),
		Reason:    m.Reason,
		Lines:     lines,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		VoidedBy:  m.VoidedBy,
		VoidedAt:  m.VoidedAt,
	}
}

func toBalanceResponse(b *inventory.BalanceView) dto.BalanceResponse {
	return dto.BalanceResponse{
		ProductID:    b.ProductID,
		WarehouseID:  b.WarehouseID,
		Quantity:     b.Quantity,
		AverageCost:  b.AverageCost,
		TotalCost:    b.TotalCost,
		MinimumStock: b.MinimumStock,
		BelowMinimum: b.BelowMinimum,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toKardexPageResponse(p *inventory.KardexPage) dto.KardexPageResponse {
	items := make([]dto.KardexEntryResponse, 0, len(p.Entries))
	for _, e := range p.Entries {
		items = append(items, dto.KardexEntryResponse{
			ID:               e.ID,
			Seq:              e.Seq,
			ProductID:        e.ProductID,
			WarehouseID:      e.WarehouseID,
			OccurredAt:       e.OccurredAt,
			Operation:        string(e.Operation),
			Quantity:         e.Quantity,
			UnitCost:         e.UnitCost,
			TotalCost:        e.TotalCost,
			RunningQuantity:  e.RunningQuantity,
			RunningTotalCost: e.RunningTotalCost,
			MovementID:       e.MovementID,
			Source:           toRefDTO(e.Source),
			ReversalOf:       e.ReversalOf,
		})
	}
	return dto.KardexPageResponse{Items: items, NextCursor: p.NextCursor}
}

func toStateResponse(st *documents.DocumentState) dto.DocumentStateResponse {
	related := make([]dto.DocumentRefDTO, 0, len(st.Related))
	for _, r := range st.Related {
		related = append(related, toRefDTO(r))
	}
	return dto.DocumentStateResponse{
		Family:          string(st.Ref.Family),
		ID:              st.Ref.ID,
		Number:          st.Ref.Number,
		Status:          st.Status,
		PersistedStatus: st.PersistedStatus,
		Available:       st.Available,
		DueSoon:         st.DueSoon,
		Related:         related,
		Document:        toDocumentResponse(st.Document),
	}
}

// toDocumentResponse cuerpo propio de cada familia.
func toDocumentResponse(doc any) any {
	switch d := doc.(type) {
	case *entity.Quotation:
		return toQuotationResponse(d)
	case *entity.PurchaseOrder:
		return toPurchaseOrderResponse(d)
	case *entity.Requisition:
		return toRequisitionResponse(d)
	case *entity.ExitVoucher:
		return toExitVoucherResponse(d)
	case *entity.EppAssignment:
		return toEppResponse(d)
	case *entity.EquipmentLoan:
		return toLoanResponse(d)
	default:
		return doc
	}
}

func toQuotationResponse(q *entity.Quotation) dto.QuotationResponse {
	lines := make([]dto.LineResponse, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, dto.LineResponse{ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return dto.QuotationResponse{
		ID:              q.ID,
		Number:          q.Number,
		SupplierID:      q.SupplierID,
		RequestedBy:     q.RequestedBy,
		ValidUntil:      q.ValidUntil,
		PurchaseOrderID: q.PurchaseOrderID,
		Notes:           q.Notes,
		Lines:           lines,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}

func toPurchaseOrderResponse(o *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	lines := make([]dto.LineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		lines = append(lines, dto.LineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			Quantity:         l.RequestedQuantity,
			UnitPrice:        l.UnitPrice,
			ReceivedQuantity: l.ReceivedQuantity,
			PendingQuantity:  l.Pending(),
		})
	}
	receipts := make([]dto.ReceiptResponse, 0, len(o.Receipts))
	for _, r := range o.Receipts {
		rl := make([]dto.ReceiptLineResponse, 0, len(r.Lines))
		for _, l := range r.Lines {
			rl = append(rl, dto.ReceiptLineResponse{LineID: l.OrderLineID, ProductID: l.ProductID, Quantity: l.Quantity, UnitCost: l.UnitCost})
		}
		receipts = append(receipts, dto.ReceiptResponse{
			ID:          r.ID,
			MovementID:  r.MovementID,
			WarehouseID: r.WarehouseID,
			ActorID:     r.ReceivedBy,
			OccurredAt:  r.ReceivedAt,
			Voided:      r.Voided,
			Lines:       rl,
		})
	}
	return dto.PurchaseOrderResponse{
		ID:          o.ID,
		Number:      o.Number,
		SupplierID:  o.SupplierID,
		QuotationID: o.QuotationID,
		WarehouseID: o.WarehouseID,
		RequestedBy: o.RequestedBy,
		ApprovedBy:  o.ApprovedBy,
		Notes:       o.Notes,
		Lines:       lines,
		Receipts:    receipts,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toRequisitionResponse(r *entity.Requisition) dto.RequisitionResponse {
	lines := make([]dto.LineResponse, 0, len(r.Lines))
	for i := range r.Lines {
		l := &r.Lines[i]
		lines = append(lines, dto.LineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			Quantity:          l.RequestedQuantity,
			ApprovedQuantity:  l.Authorized(),
			DeliveredQuantity: l.DeliveredQuantity,
			PendingQuantity:   l.Pending(),
		})
	}
	return dto.RequisitionResponse{
		ID:           r.ID,
		Number:       r.Number,
		WarehouseID:  r.WarehouseID,
		CostCenterID: r.CostCenterID,
		RequestedBy:  r.RequestedBy,
		ApprovedBy:   r.ApprovedBy,
		Notes:        r.Notes,
		Lines:        lines,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toExitVoucherResponse(v *entity.ExitVoucher) dto.ExitVoucherResponse {
	lines := make([]dto.LineResponse, 0, len(v.Lines))
	for i := range v.Lines {
		l := &v.Lines[i]
		lines = append(lines, dto.LineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			Quantity:          l.Quantity,
			DeliveredQuantity: l.DeliveredQuantity,
			PendingQuantity:   l.Pending(),
		})
	}
	deliveries := make([]dto.ReceiptResponse, 0, len(v.Deliveries))
	for _, d := range v.Deliveries {
		dl := make([]dto.ReceiptLineResponse, 0, len(d.Lines))
		for _, l := range d.Lines {
			dl = append(dl, dto.ReceiptLineResponse{LineID: l.VoucherLineID, ProductID: l.ProductID, Quantity: l.Quantity})
		}
		deliveries = append(deliveries, dto.ReceiptResponse{
			ID:         d.ID,
			MovementID: d.MovementID,
			ActorID:    d.DeliveredBy,
			OccurredAt: d.DeliveredAt,
			Voided:     d.Voided,
			Lines:      dl,
		})
	}
	return dto.ExitVoucherResponse{
		ID:            v.ID,
		Number:        v.Number,
		RequisitionID: v.RequisitionID,
		WarehouseID:   v.WarehouseID,
		Recipient:     toRecipientDTO(v.Recipient),
		CreatedBy:     v.CreatedBy,
		Notes:         v.Notes,
		Lines:         lines,
		Deliveries:    deliveries,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func toEppResponse(a *entity.EppAssignment) dto.EppAssignmentResponse {
	return dto.EppAssignmentResponse{
		ID:               a.ID,
		Number:           a.Number,
		ProductID:        a.ProductID,
		WarehouseID:      a.WarehouseID,
		Recipient:        toRecipientDTO(a.Recipient),
		Quantity:         a.Quantity,
		UnitCost:         a.UnitCost,
		IssuedAt:         a.IssuedAt,
		ExpiresAt:        a.ExpiresAt,
		ClosedAt:         a.ClosedAt,
		IssueMovementID:  a.IssueMovementID,
		ReturnMovementID: a.ReturnMovementID,
		Notes:            a.Notes,
	}
}

func toEquipmentResponse(e *entity.EquipmentPrestable) dto.EquipmentResponse {
	return dto.EquipmentResponse{
		ID:                e.ID,
		WarehouseID:       e.WarehouseID,
		Code:              e.Code,
		Name:              e.Name,
		SerialNumber:      e.SerialNumber,
		ControlType:       string(e.ControlType),
		TotalQuantity:     e.TotalQuantity,
		AvailableQuantity: e.AvailableQuantity,
		Available:         e.Available,
		Retired:           e.Retired,
	}
}

func toLoanResponse(l *entity.EquipmentLoan) dto.EquipmentLoanResponse {
	return dto.EquipmentLoanResponse{
		ID:               l.ID,
		Number:           l.Number,
		EquipmentID:      l.EquipmentID,
		Recipient:        toRecipientDTO(l.Recipient),
		Quantity:         l.Quantity,
		LoanedAt:         l.LoanedAt,
		ExpectedReturnAt: l.ExpectedReturnAt,
		ReturnedAt:       l.ReturnedAt,
		RenewedFromID:    l.RenewedFromID,
		RenewedToID:      l.RenewedToID,
		Notes:            l.Notes,
	}
}
