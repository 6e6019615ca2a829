package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

var (
	_ repository.QuotationRepository     = (*QuotationRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
)

// QuotationRepo cotizaciones sobre PostgreSQL.
type QuotationRepo struct {
	q Querier
}

// NewQuotationRepository construye el adaptador.
func NewQuotationRepository(q Querier) *QuotationRepo {
	return &QuotationRepo{q: q}
}

const quotationColumns = `id, company_id, number, supplier_id, requested_by, status, persisted_status, valid_until,
	purchase_order_id, notes, lines, created_at, updated_at`

func scanQuotation(row rowScanner) (*entity.Quotation, error) {
	var (
		q                 entity.Quotation
		status, persisted string
		lines             []byte
	)
	if err := row.Scan(&q.ID, &q.CompanyID, &q.Number, &q.SupplierID, &q.RequestedBy, &status, &persisted,
		&q.ValidUntil, &q.PurchaseOrderID, &q.Notes, &lines, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	q.Status = entity.QuotationStatus(status)
	q.PersistedStatus = entity.QuotationStatus(persisted)
	var err error
	if q.Lines, err = quotationLinesFrom(lines); err != nil {
		return nil, err
	}
	return &q, nil
}

// Create persiste la cotización.
func (r *QuotationRepo) Create(ctx context.Context, q *entity.Quotation) error {
	lines, err := quotationLinesJSON(q.Lines)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `INSERT INTO quotations (`+quotationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		q.ID, q.CompanyID, q.Number, q.SupplierID, q.RequestedBy, string(q.Status), string(q.PersistedStatus),
		q.ValidUntil, q.PurchaseOrderID, q.Notes, lines, q.CreatedAt, q.UpdatedAt,
	)
	return wrap("insert quotation", err)
}

// GetByID cotización de la empresa; nil si no existe.
func (r *QuotationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Quotation, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate como GetByID, bloqueando la fila.
func (r *QuotationRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Quotation, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *QuotationRepo) get(ctx context.Context, companyID, id, lock string) (*entity.Quotation, error) {
	q, err := scanQuotation(r.q.QueryRow(ctx,
		`SELECT `+quotationColumns+` FROM quotations WHERE company_id = $1 AND id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get quotation", err)
	}
	return q, nil
}

// Update reescribe estado, líneas y referencias.
func (r *QuotationRepo) Update(ctx context.Context, q *entity.Quotation) error {
	lines, err := quotationLinesJSON(q.Lines)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE quotations SET supplier_id = $2, status = $3, persisted_status = $4, valid_until = $5,
			purchase_order_id = $6, notes = $7, lines = $8, updated_at = $9
		WHERE id = $1`,
		q.ID, q.SupplierID, string(q.Status), string(q.PersistedStatus), q.ValidUntil,
		q.PurchaseOrderID, q.Notes, lines, q.UpdatedAt,
	)
	if err != nil {
		return wrap("update quotation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOpen cotizaciones en DRAFT, SENT o RECEIVED de todas las empresas.
func (r *QuotationRepo) ListOpen(ctx context.Context) ([]*entity.Quotation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+quotationColumns+` FROM quotations
		WHERE status IN ('DRAFT', 'SENT', 'RECEIVED') ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list open quotations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quotation: %w", err)
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// SetPersistedStatus actualiza solo el estado de reporte.
func (r *QuotationRepo) SetPersistedStatus(ctx context.Context, id string, status entity.QuotationStatus) error {
	_, err := r.q.Exec(ctx, `UPDATE quotations SET persisted_status = $2 WHERE id = $1`, id, string(status))
	return wrap("set quotation persisted status", err)
}

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const purchaseOrderColumns = `id, company_id, number, supplier_id, quotation_id, warehouse_id, requested_by,
	approved_by, status, notes, lines, receipts, created_at, updated_at`

func scanPurchaseOrder(row rowScanner) (*entity.PurchaseOrder, error) {
	var (
		o               entity.PurchaseOrder
		status          string
		lines, receipts []byte
	)
	if err := row.Scan(&o.ID, &o.CompanyID, &o.Number, &o.SupplierID, &o.QuotationID, &o.WarehouseID,
		&o.RequestedBy, &o.ApprovedBy, &status, &o.Notes, &lines, &receipts, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = entity.PurchaseOrderStatus(status)
	var err error
	if o.Lines, err = orderLinesFrom(lines); err != nil {
		return nil, err
	}
	if o.Receipts, err = receiptsFrom(receipts); err != nil {
		return nil, err
	}
	return &o, nil
}

func purchaseOrderJSON(o *entity.PurchaseOrder) (lines, receipts []byte, err error) {
	if lines, err = orderLinesJSON(o.Lines); err != nil {
		return nil, nil, err
	}
	if receipts, err = receiptsJSON(o.Receipts); err != nil {
		return nil, nil, err
	}
	return lines, receipts, nil
}

// Create persiste la orden.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	lines, receipts, err := purchaseOrderJSON(o)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.CompanyID, o.Number, o.SupplierID, o.QuotationID, o.WarehouseID, o.RequestedBy,
		o.ApprovedBy, string(o.Status), o.Notes, lines, receipts, o.CreatedAt, o.UpdatedAt,
	)
	return wrap("insert purchase order", err)
}

// GetByID orden de la empresa; nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate como GetByID, bloqueando la fila.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *PurchaseOrderRepo) get(ctx context.Context, companyID, id, lock string) (*entity.PurchaseOrder, error) {
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx,
		`SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE company_id = $1 AND id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get purchase order", err)
	}
	return o, nil
}

// Update reescribe la orden completa (cabecera, líneas y recepciones).
func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	lines, receipts, err := purchaseOrderJSON(o)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET supplier_id = $2, warehouse_id = $3, approved_by = $4, status = $5,
			notes = $6, lines = $7, receipts = $8, updated_at = $9
		WHERE id = $1`,
		o.ID, o.SupplierID, o.WarehouseID, o.ApprovedBy, string(o.Status), o.Notes, lines, receipts, o.UpdatedAt,
	)
	if err != nil {
		return wrap("update purchase order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
