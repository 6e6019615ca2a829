package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

var _ inventory.Store = (*Store)(nil)

// Store ejecuta callbacks dentro de una transacción PostgreSQL y expone repositorios del pool para lecturas.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore construye el store con el pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// reposFor arma todos los repositorios sobre el mismo Querier (tx o pool).
func reposFor(q Querier) repository.Repos {
	return repository.Repos{
		Companies:      NewCompanyRepository(q),
		Products:       NewProductRepository(q),
		Warehouses:     NewWarehouseRepository(q),
		Balances:       NewStockRepository(q),
		Kardex:         NewKardexRepository(q),
		Lots:           NewCostLotRepository(q),
		Movements:      NewMovementRepository(q),
		Sequences:      NewSequenceRepository(q),
		Quotations:     NewQuotationRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Requisitions:   NewRequisitionRepository(q),
		ExitVouchers:   NewExitVoucherRepository(q),
		EppAssignments: NewEppAssignmentRepository(q),
		Equipment:      NewEquipmentRepository(q),
		Loans:          NewEquipmentLoanRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Las funciones registradas con AfterCommit corren solo después de un Commit exitoso.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var hooks []func()
	repos := reposFor(tx).WithAfterCommit(func(f func()) { hooks = append(hooks, f) })
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	for _, h := range hooks {
		h()
	}
	return nil
}

// Repos repositorios sobre el pool, sin transacción.
func (s *Store) Repos() repository.Repos {
	return reposFor(s.pool)
}
