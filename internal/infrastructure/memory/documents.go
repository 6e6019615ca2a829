package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

var (
	_ repository.QuotationRepository     = quotationRepo{}
	_ repository.PurchaseOrderRepository = purchaseOrderRepo{}
	_ repository.RequisitionRepository   = requisitionRepo{}
	_ repository.ExitVoucherRepository   = exitVoucherRepo{}
	_ repository.EppAssignmentRepository = eppRepo{}
	_ repository.EquipmentRepository     = equipmentRepo{}
	_ repository.EquipmentLoanRepository = loanRepo{}
)

func cloneQuotation(q entity.Quotation) entity.Quotation {
	q.Lines = append([]entity.QuotationLine(nil), q.Lines...)
	return q
}

func clonePurchaseOrder(o entity.PurchaseOrder) entity.PurchaseOrder {
	o.Lines = append([]entity.PurchaseOrderLine(nil), o.Lines...)
	receipts := make([]entity.PurchaseReceipt, len(o.Receipts))
	for i, r := range o.Receipts {
		r.Lines = append([]entity.PurchaseReceiptLine(nil), r.Lines...)
		receipts[i] = r
	}
	o.Receipts = receipts
	return o
}

func cloneRequisition(r entity.Requisition) entity.Requisition {
	r.Lines = append([]entity.RequisitionLine(nil), r.Lines...)
	return r
}

func cloneExitVoucher(v entity.ExitVoucher) entity.ExitVoucher {
	v.Lines = append([]entity.ExitVoucherLine(nil), v.Lines...)
	deliveries := make([]entity.VoucherDelivery, len(v.Deliveries))
	for i, d := range v.Deliveries {
		d.Lines = append([]entity.VoucherDeliveryLine(nil), d.Lines...)
		deliveries[i] = d
	}
	v.Deliveries = deliveries
	return v
}

// table operaciones comunes sobre un mapa de documentos del estado.
type table[T any] struct {
	v       view
	rows    func(st *state) map[string]T
	company func(T) string
	clone   func(T) T
}

func (t table[T]) create(id string, doc T) error {
	return t.v.write(func(st *state) error {
		rows := t.rows(st)
		if _, ok := rows[id]; ok {
			return domain.NewValidationError("id", "ya existe")
		}
		rows[id] = t.clone(doc)
		return nil
	})
}

func (t table[T]) get(companyID, id string) *T {
	var out *T
	t.v.read(func(st *state) {
		if doc, ok := t.rows(st)[id]; ok && t.company(doc) == companyID {
			c := t.clone(doc)
			out = &c
		}
	})
	return out
}

func (t table[T]) update(id string, doc T) error {
	return t.v.write(func(st *state) error {
		rows := t.rows(st)
		if _, ok := rows[id]; !ok {
			return domain.ErrNotFound
		}
		rows[id] = t.clone(doc)
		return nil
	})
}

func (t table[T]) list(keep func(T) bool) []*T {
	var out []*T
	t.v.read(func(st *state) {
		for _, doc := range t.rows(st) {
			if keep(doc) {
				c := t.clone(doc)
				out = append(out, &c)
			}
		}
	})
	return out
}

func (t table[T]) patch(id string, fn func(*T)) error {
	return t.v.write(func(st *state) error {
		rows := t.rows(st)
		doc, ok := rows[id]
		if !ok {
			return domain.ErrNotFound
		}
		fn(&doc)
		rows[id] = doc
		return nil
	})
}

func same[T any](v T) T { return v }

type quotationRepo struct{ v view }

func (r quotationRepo) t() table[entity.Quotation] {
	return table[entity.Quotation]{
		v:       r.v,
		rows:    func(st *state) map[string]entity.Quotation { return st.quotations },
		company: func(q entity.Quotation) string { return q.CompanyID },
		clone:   cloneQuotation,
	}
}

func (r quotationRepo) Create(_ context.Context, q *entity.Quotation) error {
	return r.t().create(q.ID, *q)
}

func (r quotationRepo) GetByID(_ context.Context, companyID, id string) (*entity.Quotation, error) {
	return r.t().get(companyID, id), nil
}

func (r quotationRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Quotation, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r quotationRepo) Update(_ context.Context, q *entity.Quotation) error {
	return r.t().update(q.ID, *q)
}

func (r quotationRepo) ListOpen(_ context.Context) ([]*entity.Quotation, error) {
	out := r.t().list(func(q entity.Quotation) bool {
		return q.Status == entity.QuotationDraft || q.Status == entity.QuotationSent || q.Status == entity.QuotationReceived
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r quotationRepo) SetPersistedStatus(_ context.Context, id string, status entity.QuotationStatus) error {
	return r.t().patch(id, func(q *entity.Quotation) { q.PersistedStatus = status })
}

type purchaseOrderRepo struct{ v view }

func (r purchaseOrderRepo) t() table[entity.PurchaseOrder] {
	return table[entity.PurchaseOrder]{
		v:       r.v,
		rows:    func(st *state) map[string]entity.PurchaseOrder { return st.purchaseOrders },
		company: func(o entity.PurchaseOrder) string { return o.CompanyID },
		clone:   clonePurchaseOrder,
	}
}

func (r purchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	return r.t().create(o.ID, *o)
}

func (r purchaseOrderRepo) GetByID(_ context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.t().get(companyID, id), nil
}

func (r purchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r purchaseOrderRepo) Update(_ context.Context, o *entity.PurchaseOrder) error {
	return r.t().update(o.ID, *o)
}

type requisitionRepo struct{ v view }

func (r requisitionRepo) t() table[entity.Requisition] {
	return table[entity.Requisition]{
		v:       r.v,
		rows:    func(st *state) map[string]entity.Requisition { return st.requisitions },
		company: func(q entity.Requisition) string { return q.CompanyID },
		clone:   cloneRequisition,
	}
}

func (r requisitionRepo) Create(_ context.Context, q *entity.Requisition) error {
	return r.t().create(q.ID, *q)
}

func (r requisitionRepo) GetByID(_ context.Context, companyID, id string) (*entity.Requisition, error) {
	return r.t().get(companyID, id), nil
}

func (r requisitionRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Requisition, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r requisitionRepo) Update(_ context.Context, q *entity.Requisition) error {
	return r.t().update(q.ID, *q)
}

type exitVoucherRepo struct{ v view }

func (r exitVoucherRepo) t() table[entity.ExitVoucher] {
	return table[entity.ExitVoucher]{
		v:       r.v,
		rows:    func(st *state) map[string]entity.ExitVoucher { return st.exitVouchers },
		company: func(v entity.ExitVoucher) string { return v.CompanyID },
		clone:   cloneExitVoucher,
	}
}

func (r exitVoucherRepo) Create(_ context.Context, v *entity.ExitVoucher) error {
	return r.t().create(v.ID, *v)
}

func (r exitVoucherRepo) GetByID(_ context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	return r.t().get(companyID, id), nil
}

func (r exitVoucherRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r exitVoucherRepo) Update(_ context.Context, v *entity.ExitVoucher) error {
	return r.t().update(v.ID, *v)
}

func (r exitVoucherRepo) ListByRequisition(_ context.Context, companyID, requisitionID string) ([]*entity.ExitVoucher, error) {
	out := r.t().list(func(v entity.ExitVoucher) bool {
		return v.CompanyID == companyID && v.RequisitionID == requisitionID
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

type eppRepo struct{ v view }

func (r eppRepo) t() table[entity.EppAssignment] {
	return table[entity.EppAssignment]{
		v:       r.v,
		rows:    func(st *state) map[string]entity.EppAssignment { return st.eppAssignments },
		company: func(a entity.EppAssignment) string { return a.CompanyID },
		clone:   same[entity.EppAssignment],
	}
}

func (r eppRepo) Create(_ context.Context, a *entity.EppAssignment) error {
	return r.t().create(a.ID, *a)
}

func (r eppRepo) GetByID(_ context.Context, companyID, id string) (*entity.EppAssignment, error) {
	return r.t().get(companyID, id), nil
}

func (r eppRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.EppAssignment, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r eppRepo) Update(_ context.Context, a *entity.EppAssignment) error {
	return r.t().update(a.ID, *a)
}

func (r eppRepo) ListOpen(_ context.Context) ([]*entity.EppAssignment, error) {
	out := r.t().list(func(a entity.EppAssignment) bool { return a.Status.IsOpen() })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r eppRepo) SetPersistedStatus(_ context.Context, id string, status entity.EppStatus) error {
	return r.t().patch(id, func(a *entity.EppAssignment) { a.PersistedStatus = status })
}

type equipmentRepo struct{ v view }

func (r equipmentRepo) t() table[entity.EquipmentPrestable] {
	return table[entity.EquipmentPrestable]{
		v:       r.v,
		rows:    func(st *state) map[string]entity.EquipmentPrestable { return st.equipment },
		company: func(e entity.EquipmentPrestable) string { return e.CompanyID },
		clone:   same[entity.EquipmentPrestable],
	}
}

func (r equipmentRepo) Create(_ context.Context, e *entity.EquipmentPrestable) error {
	return r.t().create(e.ID, *e)
}

func (r equipmentRepo) GetByID(_ context.Context, companyID, id string) (*entity.EquipmentPrestable, error) {
	return r.t().get(companyID, id), nil
}

func (r equipmentRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.EquipmentPrestable, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r equipmentRepo) Update(_ context.Context, e *entity.EquipmentPrestable) error {
	return r.t().update(e.ID, *e)
}

type loanRepo struct{ v view }

func (r loanRepo) t() table[entity.EquipmentLoan] {
	return table[entity.EquipmentLoan]{
		v:       r.v,
		rows:    func(st *state) map[string]entity.EquipmentLoan { return st.loans },
		company: func(l entity.EquipmentLoan) string { return l.CompanyID },
		clone:   same[entity.EquipmentLoan],
	}
}

func (r loanRepo) Create(_ context.Context, l *entity.EquipmentLoan) error {
	return r.t().create(l.ID, *l)
}

func (r loanRepo) GetByID(_ context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	return r.t().get(companyID, id), nil
}

func (r loanRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r loanRepo) Update(_ context.Context, l *entity.EquipmentLoan) error {
	return r.t().update(l.ID, *l)
}

func (r loanRepo) ListOpen(_ context.Context) ([]*entity.EquipmentLoan, error) {
	out := r.t().list(func(l entity.EquipmentLoan) bool { return l.Status.IsOpen() })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r loanRepo) SetPersistedStatus(_ context.Context, id string, status entity.LoanStatus) error {
	return r.t().patch(id, func(l *entity.EquipmentLoan) { l.PersistedStatus = status })
}
