package entity

// DocumentFamily familia documental que puede originar movimientos.
type DocumentFamily string

const (
	FamilyQuotation     DocumentFamily = "quotation"
	FamilyPurchaseOrder DocumentFamily = "purchase_order"
	FamilyRequisition   DocumentFamily = "requisition"
	FamilyExitVoucher   DocumentFamily = "exit_voucher"
	FamilyEppAssignment DocumentFamily = "epp_assignment"
	FamilyEquipmentLoan DocumentFamily = "equipment_loan"
	// FamilyManual movimientos registrados directamente (ajustes, traspasos, saldos iniciales).
	FamilyManual DocumentFamily = "manual"
)

// ParseDocumentFamily valida el nombre de familia recibido por la API.
func ParseDocumentFamily(s string) (DocumentFamily, bool) {
	switch f := DocumentFamily(s); f {
	case FamilyQuotation, FamilyPurchaseOrder, FamilyRequisition,
		FamilyExitVoucher, FamilyEppAssignment, FamilyEquipmentLoan:
		return f, true
	}
	return "", false
}

// DocumentRef referencia al documento de origen de un movimiento o asiento.
type DocumentRef struct {
	Family DocumentFamily
	ID     string
	Number string
}

// IsDocument indica si la referencia apunta a un documento de flujo (no a un movimiento manual).
func (r DocumentRef) IsDocument() bool {
	return r.Family != "" && r.Family != FamilyManual
}
