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
	_ repository.EppAssignmentRepository = (*EppAssignmentRepo)(nil)
	_ repository.EquipmentRepository     = (*EquipmentRepo)(nil)
	_ repository.EquipmentLoanRepository = (*EquipmentLoanRepo)(nil)
)

// EppAssignmentRepo entregas de EPP sobre PostgreSQL.
type EppAssignmentRepo struct {
	q Querier
}

// NewEppAssignmentRepository construye el adaptador.
func NewEppAssignmentRepository(q Querier) *EppAssignmentRepo {
	return &EppAssignmentRepo{q: q}
}

const eppColumns = `id, company_id, number, product_id, warehouse_id, recipient_kind, recipient_id, recipient_name,
	quantity, issued_at, expires_at, status, persisted_status, issue_movement_id, return_movement_id, unit_cost,
	closed_at, created_by, notes, created_at, updated_at`

func scanEpp(row rowScanner) (*entity.EppAssignment, error) {
	var (
		a                       entity.EppAssignment
		kind, status, persisted string
	)
	if err := row.Scan(&a.ID, &a.CompanyID, &a.Number, &a.ProductID, &a.WarehouseID, &kind, &a.Recipient.ID,
		&a.Recipient.Name, &a.Quantity, &a.IssuedAt, &a.ExpiresAt, &status, &persisted, &a.IssueMovementID,
		&a.ReturnMovementID, &a.UnitCost, &a.ClosedAt, &a.CreatedBy, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Recipient.Kind = entity.RecipientKind(kind)
	a.Status = entity.EppStatus(status)
	a.PersistedStatus = entity.EppStatus(persisted)
	return &a, nil
}

// Create persiste la entrega.
func (r *EppAssignmentRepo) Create(ctx context.Context, a *entity.EppAssignment) error {
	_, err := r.q.Exec(ctx, `INSERT INTO epp_assignments (`+eppColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		a.ID, a.CompanyID, a.Number, a.ProductID, a.WarehouseID, string(a.Recipient.Kind), a.Recipient.ID,
		a.Recipient.Name, a.Quantity, a.IssuedAt, a.ExpiresAt, string(a.Status), string(a.PersistedStatus),
		a.IssueMovementID, a.ReturnMovementID, a.UnitCost, a.ClosedAt, a.CreatedBy, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	return wrap("insert epp assignment", err)
}

// GetByID entrega de la empresa; nil si no existe.
func (r *EppAssignmentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.EppAssignment, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate como GetByID, bloqueando la fila.
func (r *EppAssignmentRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.EppAssignment, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *EppAssignmentRepo) get(ctx context.Context, companyID, id, lock string) (*entity.EppAssignment, error) {
	a, err := scanEpp(r.q.QueryRow(ctx,
		`SELECT `+eppColumns+` FROM epp_assignments WHERE company_id = $1 AND id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get epp assignment", err)
	}
	return a, nil
}

// Update reescribe estado, cierre y movimientos asociados.
func (r *EppAssignmentRepo) Update(ctx context.Context, a *entity.EppAssignment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE epp_assignments SET status = $2, persisted_status = $3, issue_movement_id = $4,
			return_movement_id = $5, unit_cost = $6, closed_at = $7, notes = $8, updated_at = $9
		WHERE id = $1`,
		a.ID, string(a.Status), string(a.PersistedStatus), a.IssueMovementID, a.ReturnMovementID,
		a.UnitCost, a.ClosedAt, a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return wrap("update epp assignment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOpen entregas VIGENTE, POR_VENCER o VENCIDO de todas las empresas.
func (r *EppAssignmentRepo) ListOpen(ctx context.Context) ([]*entity.EppAssignment, error) {
	rows, err := r.q.Query(ctx, `SELECT `+eppColumns+` FROM epp_assignments
		WHERE status IN ('VIGENTE', 'POR_VENCER', 'VENCIDO') ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list open epp: %w", err)
	}
	defer rows.Close()
	var list []*entity.EppAssignment
	for rows.Next() {
		a, err := scanEpp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan epp: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// SetPersistedStatus actualiza solo el estado de reporte.
func (r *EppAssignmentRepo) SetPersistedStatus(ctx context.Context, id string, status entity.EppStatus) error {
	_, err := r.q.Exec(ctx, `UPDATE epp_assignments SET persisted_status = $2 WHERE id = $1`, id, string(status))
	return wrap("set epp persisted status", err)
}

// EquipmentRepo equipos prestables sobre PostgreSQL.
type EquipmentRepo struct {
	q Querier
}

// NewEquipmentRepository construye el adaptador.
func NewEquipmentRepository(q Querier) *EquipmentRepo {
	return &EquipmentRepo{q: q}
}

const equipmentColumns = `id, company_id, warehouse_id, code, name, serial_number, control_type, total_quantity,
	available_quantity, available, retired, created_at, updated_at`

func scanEquipment(row rowScanner) (*entity.EquipmentPrestable, error) {
	var (
		e       entity.EquipmentPrestable
		control string
	)
	if err := row.Scan(&e.ID, &e.CompanyID, &e.WarehouseID, &e.Code, &e.Name, &e.SerialNumber, &control,
		&e.TotalQuantity, &e.AvailableQuantity, &e.Available, &e.Retired, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.ControlType = entity.ControlType(control)
	return &e, nil
}

// Create persiste el equipo; un código repetido en la empresa es error de validación.
func (r *EquipmentRepo) Create(ctx context.Context, e *entity.EquipmentPrestable) error {
	_, err := r.q.Exec(ctx, `INSERT INTO equipment (`+equipmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.CompanyID, e.WarehouseID, e.Code, e.Name, e.SerialNumber, string(e.ControlType),
		e.TotalQuantity, e.AvailableQuantity, e.Available, e.Retired, e.CreatedAt, e.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.NewValidationError("code", "ya existe en la empresa")
	}
	return wrap("insert equipment", err)
}

// GetByID equipo de la empresa; nil si no existe.
func (r *EquipmentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.EquipmentPrestable, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate como GetByID, bloqueando la fila.
func (r *EquipmentRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.EquipmentPrestable, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *EquipmentRepo) get(ctx context.Context, companyID, id, lock string) (*entity.EquipmentPrestable, error) {
	e, err := scanEquipment(r.q.QueryRow(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE company_id = $1 AND id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get equipment", err)
	}
	return e, nil
}

// Update reescribe disponibilidad y baja.
func (r *EquipmentRepo) Update(ctx context.Context, e *entity.EquipmentPrestable) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE equipment SET name = $2, serial_number = $3, total_quantity = $4, available_quantity = $5,
			available = $6, retired = $7, updated_at = $8
		WHERE id = $1`,
		e.ID, e.Name, e.SerialNumber, e.TotalQuantity, e.AvailableQuantity, e.Available, e.Retired, e.UpdatedAt,
	)
	if err != nil {
		return wrap("update equipment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EquipmentLoanRepo préstamos sobre PostgreSQL.
type EquipmentLoanRepo struct {
	q Querier
}

// NewEquipmentLoanRepository construye el adaptador.
func NewEquipmentLoanRepository(q Querier) *EquipmentLoanRepo {
	return &EquipmentLoanRepo{q: q}
}

const loanColumns = `id, company_id, number, equipment_id, recipient_kind, recipient_id, recipient_name, quantity,
	loaned_at, expected_return_at, returned_at, status, persisted_status, renewed_from_id, renewed_to_id,
	created_by, notes, created_at, updated_at`

func scanLoan(row rowScanner) (*entity.EquipmentLoan, error) {
	var (
		l                       entity.EquipmentLoan
		kind, status, persisted string
	)
	if err := row.Scan(&l.ID, &l.CompanyID, &l.Number, &l.EquipmentID, &kind, &l.Recipient.ID, &l.Recipient.Name,
		&l.Quantity, &l.LoanedAt, &l.ExpectedReturnAt, &l.ReturnedAt, &status, &persisted, &l.RenewedFromID,
		&l.RenewedToID, &l.CreatedBy, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Recipient.Kind = entity.RecipientKind(kind)
	l.Status = entity.LoanStatus(status)
	l.PersistedStatus = entity.LoanStatus(persisted)
	return &l, nil
}

// Create persiste el préstamo.
func (r *EquipmentLoanRepo) Create(ctx context.Context, l *entity.EquipmentLoan) error {
	_, err := r.q.Exec(ctx, `INSERT INTO equipment_loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		l.ID, l.CompanyID, l.Number, l.EquipmentID, string(l.Recipient.Kind), l.Recipient.ID, l.Recipient.Name,
		l.Quantity, l.LoanedAt, l.ExpectedReturnAt, l.ReturnedAt, string(l.Status), string(l.PersistedStatus),
		l.RenewedFromID, l.RenewedToID, l.CreatedBy, l.Notes, l.CreatedAt, l.UpdatedAt,
	)
	return wrap("insert equipment loan", err)
}

// GetByID préstamo de la empresa; nil si no existe.
func (r *EquipmentLoanRepo) GetByID(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate como GetByID, bloqueando la fila.
func (r *EquipmentLoanRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *EquipmentLoanRepo) get(ctx context.Context, companyID, id, lock string) (*entity.EquipmentLoan, error) {
	l, err := scanLoan(r.q.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM equipment_loans WHERE company_id = $1 AND id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get equipment loan", err)
	}
	return l, nil
}

// Update reescribe estado, devolución y renovación.
func (r *EquipmentLoanRepo) Update(ctx context.Context, l *entity.EquipmentLoan) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE equipment_loans SET expected_return_at = $2, returned_at = $3, status = $4, persisted_status = $5,
			renewed_from_id = $6, renewed_to_id = $7, notes = $8, updated_at = $9
		WHERE id = $1`,
		l.ID, l.ExpectedReturnAt, l.ReturnedAt, string(l.Status), string(l.PersistedStatus),
		l.RenewedFromID, l.RenewedToID, l.Notes, l.UpdatedAt,
	)
	if err != nil {
		return wrap("update equipment loan", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOpen préstamos ACTIVO o VENCIDO de todas las empresas.
func (r *EquipmentLoanRepo) ListOpen(ctx context.Context) ([]*entity.EquipmentLoan, error) {
	rows, err := r.q.Query(ctx, `SELECT `+loanColumns+` FROM equipment_loans
		WHERE status IN ('ACTIVO', 'VENCIDO') ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list open loans: %w", err)
	}
	defer rows.Close()
	var list []*entity.EquipmentLoan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// SetPersistedStatus actualiza solo el estado de reporte.
func (r *EquipmentLoanRepo) SetPersistedStatus(ctx context.Context, id string, status entity.LoanStatus) error {
	_, err := r.q.Exec(ctx, `UPDATE equipment_loans SET persisted_status = $2 WHERE id = $1`, id, string(status))
	return wrap("set loan persisted status", err)
}
