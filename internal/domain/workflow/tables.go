package workflow

import "github.com/jhoicas/Inventario-minero/internal/domain/entity"

func states[S ~string](ss ...S) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

// Quotation cotización a proveedor. EXPIRED se calcula en lectura (ver QuotationStatus).
var Quotation = NewMachine(entity.FamilyQuotation, map[string][]string{
	Send:    states(entity.QuotationDraft),
	Receive: states(entity.QuotationSent),
	Approve: states(entity.QuotationDraft, entity.QuotationSent, entity.QuotationReceived),
	Reject:  states(entity.QuotationReceived),
	Void: states(entity.QuotationDraft, entity.QuotationSent, entity.QuotationReceived,
		entity.QuotationRejected, entity.QuotationExpired),
})

// PurchaseOrder orden de compra. receive termina en PARTIAL o RECEIVED según lo recibido.
var PurchaseOrder = NewMachine(entity.FamilyPurchaseOrder, map[string][]string{
	Submit:  states(entity.PurchaseOrderDraft),
	Approve: states(entity.PurchaseOrderPending),
	Send:    states(entity.PurchaseOrderApproved),
	Receive: states(entity.PurchaseOrderSent, entity.PurchaseOrderPartial),
	Void: states(entity.PurchaseOrderDraft, entity.PurchaseOrderPending, entity.PurchaseOrderApproved,
		entity.PurchaseOrderSent, entity.PurchaseOrderPartial, entity.PurchaseOrderReceived),
})

// Requisition requisición interna. fulfill solo lo dispara la entrega de un vale de salida;
// void desde PARTIAL exige además que todos sus vales estén anulados.
var Requisition = NewMachine(entity.FamilyRequisition, map[string][]string{
	Submit:  states(entity.RequisitionDraft),
	Approve: states(entity.RequisitionPending),
	Reject:  states(entity.RequisitionPending),
	Fulfill: states(entity.RequisitionApproved, entity.RequisitionPartial),
	Void: states(entity.RequisitionDraft, entity.RequisitionPending, entity.RequisitionApproved,
		entity.RequisitionRejected, entity.RequisitionPartial),
})

// ExitVoucher vale de salida.
var ExitVoucher = NewMachine(entity.FamilyExitVoucher, map[string][]string{
	Deliver: states(entity.ExitVoucherPending, entity.ExitVoucherPartial),
	Void:    states(entity.ExitVoucherPending, entity.ExitVoucherPartial, entity.ExitVoucherDelivered),
})

// EppAssignment entrega de EPP. Los orígenes incluyen los estados perezosos.
var EppAssignment = NewMachine(entity.FamilyEppAssignment, map[string][]string{
	Return: states(entity.EppVigente, entity.EppPorVencer, entity.EppVencido),
	Lose:   states(entity.EppVigente, entity.EppPorVencer, entity.EppVencido),
	Damage: states(entity.EppVigente, entity.EppPorVencer, entity.EppVencido),
})

// EquipmentLoan préstamo de equipo.
var EquipmentLoan = NewMachine(entity.FamilyEquipmentLoan, map[string][]string{
	Return: states(entity.LoanActivo, entity.LoanVencido),
	Renew:  states(entity.LoanActivo, entity.LoanVencido),
	Lose:   states(entity.LoanActivo, entity.LoanVencido),
	Damage: states(entity.LoanActivo, entity.LoanVencido),
})

// ForFamily tabla de la familia; nil si no tiene flujo.
func ForFamily(f entity.DocumentFamily) *Machine {
	switch f {
	case entity.FamilyQuotation:
		return Quotation
	case entity.FamilyPurchaseOrder:
		return PurchaseOrder
	case entity.FamilyRequisition:
		return Requisition
	case entity.FamilyExitVoucher:
		return ExitVoucher
	case entity.FamilyEppAssignment:
		return EppAssignment
	case entity.FamilyEquipmentLoan:
		return EquipmentLoan
	}
	return nil
}
