package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

// KardexRepo libro de valorización sobre PostgreSQL. Solo INSERT y SELECT.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador.
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

const kardexColumns = `id, seq, company_id, product_id, warehouse_id, occurred_at, operation, quantity, unit_cost,
	total_cost, running_quantity, running_total_cost, movement_id, source_family, source_id, source_number,
	reversal_of, created_by`

// rowScanner lo común entre pgx.Row y pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanKardex(row rowScanner) (*entity.KardexEntry, error) {
	var (
		e         entity.KardexEntry
		operation string
		family    string
	)
	err := row.Scan(
		&e.ID, &e.Seq, &e.CompanyID, &e.ProductID, &e.WarehouseID, &e.OccurredAt, &operation,
		&e.Quantity, &e.UnitCost, &e.TotalCost, &e.RunningQuantity, &e.RunningTotalCost,
		&e.MovementID, &family, &e.Source.ID, &e.Source.Number, &e.ReversalOf, &e.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	e.Operation = entity.OperationType(operation)
	e.Source.Family = entity.DocumentFamily(family)
	return &e, nil
}

// Append persiste el asiento y asigna Seq desde la secuencia de la tabla.
func (r *KardexRepo) Append(ctx context.Context, e *entity.KardexEntry) error {
	query := `
		INSERT INTO kardex_entries (id, company_id, product_id, warehouse_id, occurred_at, operation, quantity,
			unit_cost, total_cost, running_quantity, running_total_cost, movement_id, source_family, source_id,
			source_number, reversal_of, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.CompanyID, e.ProductID, e.WarehouseID, e.OccurredAt, string(e.Operation), e.Quantity,
		e.UnitCost, e.TotalCost, e.RunningQuantity, e.RunningTotalCost, e.MovementID,
		string(e.Source.Family), e.Source.ID, e.Source.Number, e.ReversalOf, e.CreatedBy,
	).Scan(&e.Seq)
	if err != nil {
		return wrap("append kardex", err)
	}
	return nil
}

// GetByID asiento de la empresa; nil si no existe.
func (r *KardexRepo) GetByID(ctx context.Context, companyID, id string) (*entity.KardexEntry, error) {
	e, err := scanKardex(r.q.QueryRow(ctx,
		`SELECT `+kardexColumns+` FROM kardex_entries WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kardex entry: %w", err)
	}
	return e, nil
}

// ListByMovement asientos de un movimiento en orden de registro.
func (r *KardexRepo) ListByMovement(ctx context.Context, companyID, movementID string) ([]*entity.KardexEntry, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex_entries
		WHERE company_id = $1 AND movement_id = $2 ORDER BY seq`
	return r.list(ctx, query, companyID, movementID)
}

// List asientos ordenados por (occurred_at, seq) con paginación por keyset.
func (r *KardexRepo) List(ctx context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex_entries WHERE company_id = $1`
	args := []any{f.CompanyID}
	pos := 2
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.WarehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, f.WarehouseID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.After != nil {
		query += fmt.Sprintf(" AND (occurred_at, seq) > ($%d, $%d)", pos, pos+1)
		args = append(args, f.After.OccurredAt, f.After.Seq)
		pos += 2
	}
	query += " ORDER BY occurred_at, seq"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
	}
	return r.list(ctx, query, args...)
}

func (r *KardexRepo) list(ctx context.Context, query string, args ...any) ([]*entity.KardexEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kardex: %w", err)
	}
	defer rows.Close()
	var list []*entity.KardexEntry
	for rows.Next() {
		e, err := scanKardex(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kardex: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
