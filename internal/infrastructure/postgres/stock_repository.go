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

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const balanceSelect = `
	SELECT company_id, product_id, warehouse_id, quantity, average_cost, total_cost, version, updated_at
	FROM stock_balances WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3`

func (r *StockRepo) scan(ctx context.Context, query string, key entity.BalanceKey) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, key.CompanyID, key.ProductID, key.WarehouseID).Scan(
		&b.CompanyID, &b.ProductID, &b.WarehouseID, &b.Quantity, &b.AverageCost, &b.TotalCost, &b.Version, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Get obtiene el saldo actual sin bloquear; saldo en cero si la clave no tiene movimientos.
func (r *StockRepo) Get(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	b, err := r.scan(ctx, balanceSelect, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewStockBalance(key.CompanyID, key.ProductID, key.WarehouseID), nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return b, nil
}

// GetForUpdate crea la fila si no existe y la bloquea (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	insert := `
		INSERT INTO stock_balances (company_id, product_id, warehouse_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, key.CompanyID, key.ProductID, key.WarehouseID); err != nil {
		return nil, wrap("ensure stock row", err)
	}
	b, err := r.scan(ctx, balanceSelect+` FOR UPDATE`, key)
	if err != nil {
		return nil, wrap("get stock for update", err)
	}
	return b, nil
}

// Save persiste el saldo si la versión leída sigue vigente e incrementa Version.
func (r *StockRepo) Save(ctx context.Context, b *entity.StockBalance) error {
	query := `
		UPDATE stock_balances
		SET quantity = $4, average_cost = $5, total_cost = $6, version = version + 1, updated_at = $7
		WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3 AND version = $8`
	tag, err := r.q.Exec(ctx, query,
		b.CompanyID, b.ProductID, b.WarehouseID, b.Quantity, b.AverageCost, b.TotalCost, b.UpdatedAt, b.Version,
	)
	if err != nil {
		return wrap("save stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	b.Version++
	return nil
}
