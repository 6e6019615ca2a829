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

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo cabeceras y líneas de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste la cabecera y sus líneas.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, company_id, number, direction, status, source_family, source_id, source_number,
			reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.Number, string(m.Direction), string(m.Status), string(m.Source.Family),
		m.Source.ID, m.Source.Number, m.Reason, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return wrap("insert movement", err)
	}
	lineQuery := `
		INSERT INTO movement_lines (id, movement_id, position, product_id, quantity, unit_cost, total_cost,
			origin_warehouse_id, dest_warehouse_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, l := range m.Lines {
		if _, err := r.q.Exec(ctx, lineQuery,
			l.ID, m.ID, i, l.ProductID, l.Quantity, l.UnitCost, l.TotalCost, l.OriginWarehouseID, l.DestWarehouseID,
		); err != nil {
			return wrap("insert movement line", err)
		}
	}
	return nil
}

// GetByID movimiento con líneas; nil si no existe en la empresa.
func (r *MovementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Movement, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate como GetByID, bloqueando la cabecera.
func (r *MovementRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Movement, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *MovementRepo) get(ctx context.Context, companyID, id, lock string) (*entity.Movement, error) {
	query := `
		SELECT id, company_id, number, direction, status, source_family, source_id, source_number, reason,
			created_by, created_at, voided_by, voided_at
		FROM movements WHERE company_id = $1 AND id = $2` + lock
	var (
		m                         entity.Movement
		direction, status, family string
	)
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&m.ID, &m.CompanyID, &m.Number, &direction, &status, &family, &m.Source.ID, &m.Source.Number,
		&m.Reason, &m.CreatedBy, &m.CreatedAt, &m.VoidedBy, &m.VoidedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get movement", err)
	}
	m.Direction = entity.Direction(direction)
	m.Status = entity.MovementStatus(status)
	m.Source.Family = entity.DocumentFamily(family)

	rows, err := r.q.Query(ctx, `
		SELECT id, movement_id, product_id, quantity, unit_cost, total_cost, origin_warehouse_id, dest_warehouse_id
		FROM movement_lines WHERE movement_id = $1 ORDER BY position`, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.MovementLine
		if err := rows.Scan(&l.ID, &l.MovementID, &l.ProductID, &l.Quantity, &l.UnitCost, &l.TotalCost,
			&l.OriginWarehouseID, &l.DestWarehouseID); err != nil {
			return nil, fmt.Errorf("scan movement line: %w", err)
		}
		m.Lines = append(m.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movement lines: %w", err)
	}
	return &m, nil
}

// MarkVoided registra la anulación en la cabecera.
func (r *MovementRepo) MarkVoided(ctx context.Context, m *entity.Movement) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE movements SET status = $2, voided_by = $3, voided_at = $4 WHERE id = $1`,
		m.ID, string(m.Status), m.VoidedBy, m.VoidedAt,
	)
	if err != nil {
		return wrap("void movement", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
