package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplenishment_OrdenaPorDeficitRelativo(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	ctx := context.Background()
	require.NoError(t, f.store.Repos().Products.Create(ctx, &entity.Product{
		ID: "p3", CompanyID: "c1", SKU: "LAMPARA", Name: "Lámpara", UnitOfMeasure: "UN", MinimumStock: d("4"),
	}))
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "6", "2.00"))

	list, err := f.queries.Replenishment(ctx, f.admin, "w1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "p3", list[0].ProductID)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedQty.Equal(d("6")))

	p1 := list[1]
	assert.Equal(t, "p1", p1.ProductID)
	assert.Equal(t, 2, p1.Priority)
	assert.True(t, p1.CurrentStock.Equal(d("6")))
	assert.True(t, p1.IdealStock.Equal(d("15")))
	assert.True(t, p1.SuggestedQty.Equal(d("9")))
	assert.True(t, p1.EstimatedCost.Equal(d("18")))
}

func TestReplenishment_SobreMinimoNoAparece(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "10", "1.00"))

	list, err := f.queries.Replenishment(context.Background(), f.admin, "w1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReplenishment_UsuarioRestringido(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	ctx := context.Background()

	list, err := f.queries.Replenishment(ctx, f.clerk, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ProductID)

	_, err = f.queries.Replenishment(ctx, f.clerk, "w2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.queries.Replenishment(ctx, f.admin, "")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
