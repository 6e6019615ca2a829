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

var _ repository.CostLotRepository = (*CostLotRepo)(nil)

// CostLotRepo lotes PEPS sobre PostgreSQL.
type CostLotRepo struct {
	q Querier
}

// NewCostLotRepository construye el adaptador.
func NewCostLotRepository(q Querier) *CostLotRepo {
	return &CostLotRepo{q: q}
}

const lotColumns = `id, seq, company_id, product_id, warehouse_id, received_at, original_quantity,
	remaining_quantity, unit_cost, kardex_entry_id`

func scanLot(row rowScanner) (*entity.CostLot, error) {
	var l entity.CostLot
	if err := row.Scan(
		&l.ID, &l.Seq, &l.CompanyID, &l.ProductID, &l.WarehouseID, &l.ReceivedAt,
		&l.OriginalQuantity, &l.RemainingQuantity, &l.UnitCost, &l.KardexEntryID,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste el lote y asigna Seq.
func (r *CostLotRepo) Create(ctx context.Context, l *entity.CostLot) error {
	query := `
		INSERT INTO cost_lots (id, company_id, product_id, warehouse_id, received_at, original_quantity,
			remaining_quantity, unit_cost, kardex_entry_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		l.ID, l.CompanyID, l.ProductID, l.WarehouseID, l.ReceivedAt, l.OriginalQuantity,
		l.RemainingQuantity, l.UnitCost, l.KardexEntryID,
	).Scan(&l.Seq)
	if err != nil {
		return wrap("insert cost lot", err)
	}
	return nil
}

// ListOpen lotes con saldo del más antiguo al más reciente.
func (r *CostLotRepo) ListOpen(ctx context.Context, key entity.BalanceKey) ([]*entity.CostLot, error) {
	query := `SELECT ` + lotColumns + ` FROM cost_lots
		WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3 AND remaining_quantity > 0
		ORDER BY received_at, seq`
	rows, err := r.q.Query(ctx, query, key.CompanyID, key.ProductID, key.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("list open lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.CostLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// GetByKardexEntry lote creado por un asiento de entrada; nil si no hay.
func (r *CostLotRepo) GetByKardexEntry(ctx context.Context, companyID, kardexEntryID string) (*entity.CostLot, error) {
	l, err := scanLot(r.q.QueryRow(ctx,
		`SELECT `+lotColumns+` FROM cost_lots WHERE company_id = $1 AND kardex_entry_id = $2`, companyID, kardexEntryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot by kardex entry: %w", err)
	}
	return l, nil
}

// UpdateRemaining actualiza solo el saldo del lote.
func (r *CostLotRepo) UpdateRemaining(ctx context.Context, l *entity.CostLot) error {
	tag, err := r.q.Exec(ctx, `UPDATE cost_lots SET remaining_quantity = $2 WHERE id = $1`, l.ID, l.RemainingQuantity)
	if err != nil {
		return wrap("update lot", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
