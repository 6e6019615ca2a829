package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Inventario-minero/internal/application/dto"
	"github.com/jhoicas/Inventario-minero/internal/application/usecase"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = domain.TenantContext{CompanyID: "c1", UserID: "u1", Role: domain.RoleAdmin}
	clerk = domain.TenantContext{CompanyID: "c1", UserID: "u2", Role: domain.RoleBodeguero}
	other = domain.TenantContext{CompanyID: "c2", UserID: "u3", Role: domain.RoleAdmin}
)

func TestCompanyUseCase_CreaYLee(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewCompanyUseCase(memory.New().Repos().Companies)

	_, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Minera", TaxID: "76.000.000-1", ValuationMethod: "LIFO"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Minera", TaxID: "76.000.000-1", ValuationMethod: "FIFO"})
	require.NoError(t, err)
	assert.Equal(t, "FIFO", out.ValuationMethod)

	got, err := uc.GetCurrent(ctx, domain.TenantContext{CompanyID: out.ID, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Minera", got.Name)

	_, err = uc.GetCurrent(ctx, other)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_SKUUnicoYRetiro(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.New().Repos().Products)

	p, err := uc.Create(ctx, admin, dto.CreateProductRequest{SKU: "CASCO", Name: "Casco", IsEPP: true, ShelfLifeDays: 180})
	require.NoError(t, err)
	assert.Equal(t, "UN", p.UnitOfMeasure)

	_, err = uc.Create(ctx, admin, dto.CreateProductRequest{SKU: "CASCO", Name: "Otro"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, clerk, dto.CreateProductRequest{SKU: "GUANTE", Name: "Guante"})
	require.ErrorIs(t, err, domain.ErrForbidden)

	retired := true
	minimum := decimal.NewFromInt(5)
	up, err := uc.Update(ctx, admin, p.ID, dto.UpdateProductRequest{Retired: &retired, MinimumStock: &minimum})
	require.NoError(t, err)
	assert.True(t, up.Retired)
	assert.True(t, up.MinimumStock.Equal(minimum))

	_, err = uc.GetByID(ctx, other, p.ID)
	require.ErrorIs(t, err, domain.ErrNotFound, "otra empresa no ve el producto")
}

func TestWarehouseUseCase_CreaConTipoPorDefecto(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewWarehouseUseCase(memory.New().Repos().Warehouses)

	w, err := uc.Create(ctx, admin, dto.CreateWarehouseRequest{Name: "Central"})
	require.NoError(t, err)
	assert.Equal(t, "MAIN", w.Kind)

	name := "Central Norte"
	up, err := uc.Update(ctx, admin, w.ID, dto.UpdateWarehouseRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, up.Name)

	got, err := uc.GetByID(ctx, clerk, w.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)

	_, err = uc.GetByID(ctx, other, w.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
