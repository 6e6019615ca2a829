package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKardexReader_PaginasYReinicio(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	for i := 0; i < 5; i++ {
		f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "1", "2"))
	}

	r := f.queries.NewKardexReader(f.admin, inventory.KardexQuery{ProductID: "p1", WarehouseID: "w1", Limit: 2})
	var all []*entity.KardexEntry
	pages := 0
	for {
		entries, done, err := r.Next(context.Background())
		require.NoError(t, err)
		all = append(all, entries...)
		pages++
		if done {
			break
		}
	}
	assert.Equal(t, 3, pages)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Seq, all[i].Seq)
	}

	entries, done, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Empty(t, entries)

	r.Reset()
	entries, _, err = r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all[0].ID, entries[0].ID)
}

func TestKardexCursor_IdaYVuelta(t *testing.T) {
	c := repository.KardexCursor{OccurredAt: testNow, Seq: 42}
	got, err := inventory.DecodeKardexCursor(inventory.EncodeKardexCursor(c))
	require.NoError(t, err)
	assert.True(t, c.OccurredAt.Equal(got.OccurredAt))
	assert.Equal(t, int64(42), got.Seq)

	_, err = inventory.DecodeKardexCursor("%%%")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetKardex_UsuarioRestringidoSoloVeSuBodega(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "1", "2"))
	f.record(t, entity.DirectionReceipt, receipt("p1", "w2", "1", "2"))

	page, err := f.queries.GetKardex(context.Background(), f.clerk, inventory.KardexQuery{ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "w1", page.Entries[0].WarehouseID)

	_, err = f.queries.GetKardex(context.Background(), f.clerk, inventory.KardexQuery{WarehouseID: "w2"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRetryOnConflict(t *testing.T) {
	calls := 0
	err := inventory.RetryOnConflict(context.Background(), logger.Nop(), nil, func() error {
		calls++
		if calls == 1 {
			return domain.ErrConcurrencyConflict
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	boom := errors.New("boom")
	err = inventory.RetryOnConflict(context.Background(), logger.Nop(), nil, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	calls = 0
	err = inventory.RetryOnConflict(context.Background(), logger.Nop(), nil, func() error {
		calls++
		return domain.ErrConcurrencyConflict
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 2, calls)
}
