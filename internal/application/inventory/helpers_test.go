package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type fixture struct {
	store    *memory.Store
	ledger   *inventory.Ledger
	seq      *inventory.Sequencer
	recorder *inventory.MovementRecorder
	queries  *inventory.QueryService
	admin    domain.TenantContext
	clerk    domain.TenantContext
}

func clock() func() time.Time { return func() time.Time { return testNow } }

// newFixture empresa c1 con bodegas w1, w2 y productos p1, p2; empresa c2 con p9 y w9.
func newFixture(t *testing.T, method entity.ValuationMethod) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: "c1", Name: "Minera Uno", ValuationMethod: method}))
	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: "c2", Name: "Minera Dos", ValuationMethod: method}))
	for _, w := range []entity.Warehouse{
		{ID: "w1", CompanyID: "c1", Name: "Central", Kind: entity.WarehouseMain},
		{ID: "w2", CompanyID: "c1", Name: "Campamento", Kind: entity.WarehouseCamp},
		{ID: "w9", CompanyID: "c2", Name: "Otra", Kind: entity.WarehouseMain},
	} {
		require.NoError(t, repos.Warehouses.Create(ctx, &w))
	}
	for _, p := range []entity.Product{
		{ID: "p1", CompanyID: "c1", SKU: "CASCO", Name: "Casco", UnitOfMeasure: "UN", MinimumStock: d("10")},
		{ID: "p2", CompanyID: "c1", SKU: "GUANTE", Name: "Guante", UnitOfMeasure: "PAR"},
		{ID: "p9", CompanyID: "c2", SKU: "CASCO", Name: "Casco", UnitOfMeasure: "UN"},
	} {
		require.NoError(t, repos.Products.Create(ctx, &p))
	}

	ledger := inventory.NewLedger(clock())
	seq := inventory.NewSequencer(store, nil, clock())
	return &fixture{
		store:    store,
		ledger:   ledger,
		seq:      seq,
		recorder: inventory.NewMovementRecorder(store, ledger, seq, nil, nil, nil, clock()),
		queries:  inventory.NewQueryService(store, nil),
		admin:    domain.TenantContext{CompanyID: "c1", UserID: "u-admin", Role: domain.RoleAdmin},
		clerk:    domain.TenantContext{CompanyID: "c1", UserID: "u-bod", Role: domain.RoleBodeguero, WarehouseID: "w1"},
	}
}

func (f *fixture) record(t *testing.T, dir entity.Direction, lines ...inventory.LineInput) *entity.Movement {
	t.Helper()
	m, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{Direction: dir, Lines: lines})
	require.NoError(t, err)
	return m
}

func (f *fixture) balance(t *testing.T, productID, warehouseID string) *inventory.BalanceView {
	t.Helper()
	b, err := f.queries.GetBalance(context.Background(), f.admin, productID, warehouseID)
	require.NoError(t, err)
	return b
}

func (f *fixture) kardex(t *testing.T, productID, warehouseID string) []*entity.KardexEntry {
	t.Helper()
	page, err := f.queries.GetKardex(context.Background(), f.admin, inventory.KardexQuery{
		ProductID: productID, WarehouseID: warehouseID, Limit: 500,
	})
	require.NoError(t, err)
	return page.Entries
}

func receipt(product, warehouse, qty, cost string) inventory.LineInput {
	return inventory.LineInput{ProductID: product, WarehouseID: warehouse, Quantity: d(qty), UnitCost: dp(cost)}
}

func issue(product, warehouse, qty string) inventory.LineInput {
	return inventory.LineInput{ProductID: product, WarehouseID: warehouse, Quantity: d(qty)}
}
