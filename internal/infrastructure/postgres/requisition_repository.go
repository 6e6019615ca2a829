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
	_ repository.RequisitionRepository = (*RequisitionRepo)(nil)
	_ repository.ExitVoucherRepository = (*ExitVoucherRepo)(nil)
)

// RequisitionRepo requisiciones sobre PostgreSQL.
type RequisitionRepo struct {
	q Querier
}

// NewRequisitionRepository construye el adaptador.
func NewRequisitionRepository(q Querier) *RequisitionRepo {
	return &RequisitionRepo{q: q}
}

const requisitionColumns = `id, company_id, number, warehouse_id, cost_center_id, requested_by, approved_by,
	status, notes, lines, created_at, updated_at`

func scanRequisition(row rowScanner) (*entity.Requisition, error) {
	var (
		req    entity.Requisition
		status string
		lines  []byte
	)
	if err := row.Scan(&req.ID, &req.CompanyID, &req.Number, &req.WarehouseID, &req.CostCenterID,
		&req.RequestedBy, &req.ApprovedBy, &status, &req.Notes, &lines, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}
	req.Status = entity.RequisitionStatus(status)
	var err error
	if req.Lines, err = requisitionLinesFrom(lines); err != nil {
		return nil, err
	}
	return &req, nil
}

// Create persiste la requisición.
func (r *RequisitionRepo) Create(ctx context.Context, req *entity.Requisition) error {
	lines, err := requisitionLinesJSON(req.Lines)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `INSERT INTO requisitions (`+requisitionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.ID, req.CompanyID, req.Number, req.WarehouseID, req.CostCenterID, req.RequestedBy,
		req.ApprovedBy, string(req.Status), req.Notes, lines, req.CreatedAt, req.UpdatedAt,
	)
	return wrap("insert requisition", err)
}

// GetByID requisición de la empresa; nil si no existe.
func (r *RequisitionRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Requisition, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate como GetByID, bloqueando la fila.
func (r *RequisitionRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Requisition, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *RequisitionRepo) get(ctx context.Context, companyID, id, lock string) (*entity.Requisition, error) {
	req, err := scanRequisition(r.q.QueryRow(ctx,
		`SELECT `+requisitionColumns+` FROM requisitions WHERE company_id = $1 AND id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get requisition", err)
	}
	return req, nil
}

// Update reescribe la requisición completa.
func (r *RequisitionRepo) Update(ctx context.Context, req *entity.Requisition) error {
	lines, err := requisitionLinesJSON(req.Lines)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE requisitions SET warehouse_id = $2, cost_center_id = $3, approved_by = $4, status = $5,
			notes = $6, lines = $7, updated_at = $8
		WHERE id = $1`,
		req.ID, req.WarehouseID, req.CostCenterID, req.ApprovedBy, string(req.Status), req.Notes, lines, req.UpdatedAt,
	)
	if err != nil {
		return wrap("update requisition", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExitVoucherRepo vales de salida sobre PostgreSQL.
type ExitVoucherRepo struct {
	q Querier
}

// NewExitVoucherRepository construye el adaptador.
func NewExitVoucherRepository(q Querier) *ExitVoucherRepo {
	return &ExitVoucherRepo{q: q}
}

const exitVoucherColumns = `id, company_id, number, requisition_id, warehouse_id, recipient_kind, recipient_id,
	recipient_name, created_by, status, notes, lines, deliveries, created_at, updated_at`

func scanExitVoucher(row rowScanner) (*entity.ExitVoucher, error) {
	var (
		v                 entity.ExitVoucher
		kind, status      string
		lines, deliveries []byte
	)
	if err := row.Scan(&v.ID, &v.CompanyID, &v.Number, &v.RequisitionID, &v.WarehouseID, &kind,
		&v.Recipient.ID, &v.Recipient.Name, &v.CreatedBy, &status, &v.Notes, &lines, &deliveries,
		&v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Recipient.Kind = entity.RecipientKind(kind)
	v.Status = entity.ExitVoucherStatus(status)
	var err error
	if v.Lines, err = voucherLinesFrom(lines); err != nil {
		return nil, err
	}
	if v.Deliveries, err = deliveriesFrom(deliveries); err != nil {
		return nil, err
	}
	return &v, nil
}

func exitVoucherJSON(v *entity.ExitVoucher) (lines, deliveries []byte, err error) {
	if lines, err = voucherLinesJSON(v.Lines); err != nil {
		return nil, nil, err
	}
	if deliveries, err = deliveriesJSON(v.Deliveries); err != nil {
		return nil, nil, err
	}
	return lines, deliveries, nil
}

// Create persiste el vale.
func (r *ExitVoucherRepo) Create(ctx context.Context, v *entity.ExitVoucher) error {
	lines, deliveries, err := exitVoucherJSON(v)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `INSERT INTO exit_vouchers (`+exitVoucherColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		v.ID, v.CompanyID, v.Number, v.RequisitionID, v.WarehouseID, string(v.Recipient.Kind), v.Recipient.ID,
		v.Recipient.Name, v.CreatedBy, string(v.Status), v.Notes, lines, deliveries, v.CreatedAt, v.UpdatedAt,
	)
	return wrap("insert exit voucher", err)
}

// GetByID vale de la empresa; nil si no existe.
func (r *ExitVoucherRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate como GetByID, bloqueando la fila.
func (r *ExitVoucherRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *ExitVoucherRepo) get(ctx context.Context, companyID, id, lock string) (*entity.ExitVoucher, error) {
	v, err := scanExitVoucher(r.q.QueryRow(ctx,
		`SELECT `+exitVoucherColumns+` FROM exit_vouchers WHERE company_id = $1 AND id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get exit voucher", err)
	}
	return v, nil
}

// Update reescribe el vale completo.
func (r *ExitVoucherRepo) Update(ctx context.Context, v *entity.ExitVoucher) error {
	lines, deliveries, err := exitVoucherJSON(v)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE exit_vouchers SET status = $2, notes = $3, lines = $4, deliveries = $5, updated_at = $6
		WHERE id = $1`,
		v.ID, string(v.Status), v.Notes, lines, deliveries, v.UpdatedAt,
	)
	if err != nil {
		return wrap("update exit voucher", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByRequisition vales emitidos contra una requisición, en orden de creación.
func (r *ExitVoucherRepo) ListByRequisition(ctx context.Context, companyID, requisitionID string) ([]*entity.ExitVoucher, error) {
	rows, err := r.q.Query(ctx, `SELECT `+exitVoucherColumns+` FROM exit_vouchers
		WHERE company_id = $1 AND requisition_id = $2 ORDER BY created_at, number`, companyID, requisitionID)
	if err != nil {
		return nil, fmt.Errorf("list vouchers by requisition: %w", err)
	}
	defer rows.Close()
	var list []*entity.ExitVoucher
	for rows.Next() {
		v, err := scanExitVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exit voucher: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
