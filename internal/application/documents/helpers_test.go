package documents_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	now      time.Time
	store    *memory.Store
	recorder *inventory.MovementRecorder
	queries  *inventory.QueryService
	svc      *documents.Service

	admin    domain.TenantContext
	approver domain.TenantContext
	clerk    domain.TenantContext
	asker    domain.TenantContext
}

// newFixture empresa c1 (promedio ponderado) con bodegas w1, w2; p1 insumo y p-epp casco con vida útil de 180 días.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		now:      start,
		store:    memory.New(),
		admin:    domain.TenantContext{CompanyID: "c1", UserID: "u-admin", Role: domain.RoleAdmin},
		approver: domain.TenantContext{CompanyID: "c1", UserID: "u-apr", Role: domain.RoleAprobador},
		clerk:    domain.TenantContext{CompanyID: "c1", UserID: "u-bod", Role: domain.RoleBodeguero, WarehouseID: "w1"},
		asker:    domain.TenantContext{CompanyID: "c1", UserID: "u-sol", Role: domain.RoleSolicitante},
	}
	repos := f.store.Repos()
	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: "c1", Name: "Minera Uno", ValuationMethod: entity.ValuationWeightedAverage}))
	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: "c2", Name: "Minera Dos", ValuationMethod: entity.ValuationWeightedAverage}))
	for _, w := range []entity.Warehouse{
		{ID: "w1", CompanyID: "c1", Name: "Central", Kind: entity.WarehouseMain},
		{ID: "w2", CompanyID: "c1", Name: "Campamento", Kind: entity.WarehouseCamp},
	} {
		require.NoError(t, repos.Warehouses.Create(ctx, &w))
	}
	for _, p := range []entity.Product{
		{ID: "p1", CompanyID: "c1", SKU: "PERNO", Name: "Perno de anclaje", UnitOfMeasure: "UN"},
		{ID: "p-epp", CompanyID: "c1", SKU: "CASCO", Name: "Casco de seguridad", UnitOfMeasure: "UN", IsEPP: true, ShelfLifeDays: 180},
	} {
		require.NoError(t, repos.Products.Create(ctx, &p))
	}

	clock := func() time.Time { return f.now }
	ledger := inventory.NewLedger(clock)
	seq := inventory.NewSequencer(f.store, nil, clock)
	f.recorder = inventory.NewMovementRecorder(f.store, ledger, seq, nil, nil, nil, clock)
	f.queries = inventory.NewQueryService(f.store, nil)
	f.svc = documents.NewService(f.store, f.recorder, seq, documents.NewRoleAuthorizer(), nil, documents.Options{Now: clock})
	return f
}

func (f *fixture) advance(days int) { f.now = f.now.AddDate(0, 0, days) }

// stock deja qty unidades a costo cost en la bodega.
func (f *fixture) stock(t *testing.T, productID, warehouseID, qty, cost string) {
	t.Helper()
	c := d(cost)
	_, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Direction: entity.DirectionReceipt,
		Lines:     []inventory.LineInput{{ProductID: productID, WarehouseID: warehouseID, Quantity: d(qty), UnitCost: &c}},
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, productID, warehouseID string) *inventory.BalanceView {
	t.Helper()
	b, err := f.queries.GetBalance(context.Background(), f.admin, productID, warehouseID)
	require.NoError(t, err)
	return b
}

func (f *fixture) transition(t *testing.T, actor domain.TenantContext, family entity.DocumentFamily, id, transition string, payload documents.TransitionPayload) *documents.DocumentState {
	t.Helper()
	st, err := f.svc.Transition(context.Background(), actor, family, id, transition, payload)
	require.NoError(t, err)
	return st
}

func worker() entity.Recipient { return entity.Worker("11.111.111-1", "Juan Pérez") }
