package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_PromedioPonderadoEscenario(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)

	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "100", "5.00"))
	b := f.balance(t, "p1", "w1")
	assert.True(t, d("100").Equal(b.Quantity))
	assert.True(t, d("5").Equal(b.AverageCost))

	f.record(t, entity.DirectionIssue, issue("p1", "w1", "40"))
	entries := f.kardex(t, "p1", "w1")
	require.Len(t, entries, 2)
	assert.True(t, d("-200.00").Equal(entries[1].TotalCost), "got %s", entries[1].TotalCost)
	b = f.balance(t, "p1", "w1")
	assert.True(t, d("60").Equal(b.Quantity))
	assert.True(t, d("5").Equal(b.AverageCost))

	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "50", "8.00"))
	b = f.balance(t, "p1", "w1")
	assert.True(t, d("6.3636").Equal(b.AverageCost), "got %s", b.AverageCost)

	m := f.record(t, entity.DirectionIssue, issue("p1", "w1", "70"))
	assert.True(t, d("445.45").Equal(m.Lines[0].TotalCost), "got %s", m.Lines[0].TotalCost)
	b = f.balance(t, "p1", "w1")
	assert.True(t, d("40").Equal(b.Quantity))
	assert.True(t, d("6.3636").Equal(b.AverageCost))
}

func TestLedger_FIFOConsumeDosLotes(t *testing.T) {
	f := newFixture(t, entity.ValuationFIFO)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "5", "10.00"))
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "5", "12.00"))

	m := f.record(t, entity.DirectionIssue, issue("p1", "w1", "8"))
	assert.True(t, d("86.00").Equal(m.Lines[0].TotalCost), "got %s", m.Lines[0].TotalCost)
	assert.True(t, d("10.75").Equal(m.Lines[0].UnitCost))

	lots, err := f.store.Repos().Lots.ListOpen(context.Background(), entity.BalanceKey{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1"})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, d("2").Equal(lots[0].RemainingQuantity))
	assert.True(t, d("12").Equal(lots[0].UnitCost))

	b := f.balance(t, "p1", "w1")
	assert.True(t, d("24.00").Equal(b.TotalCost))
}

func TestLedger_StockInsuficienteNoModificaSaldo(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "10", "3.00"))

	_, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Direction: entity.DirectionIssue, Lines: []inventory.LineInput{issue("p1", "w1", "11")},
	})
	require.Error(t, err)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, d("10").Equal(ise.Available))
	assert.True(t, d("11").Equal(ise.Requested))
	assert.True(t, d("1").Equal(ise.Missing()))

	b := f.balance(t, "p1", "w1")
	assert.True(t, d("10").Equal(b.Quantity))
	assert.Len(t, f.kardex(t, "p1", "w1"), 1)
}

func TestLedger_MovimientoMultilineaTodoONada(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "10", "3.00"))

	_, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Direction: entity.DirectionIssue,
		Lines:     []inventory.LineInput{issue("p1", "w1", "4"), issue("p2", "w1", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, d("10").Equal(f.balance(t, "p1", "w1").Quantity))
}

func TestLedger_AnularRestauraSaldo(t *testing.T) {
	for _, method := range []entity.ValuationMethod{entity.ValuationWeightedAverage, entity.ValuationFIFO} {
		t.Run(string(method), func(t *testing.T) {
			f := newFixture(t, method)
			f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "100", "5.00"))
			f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "50", "8.00"))
			before := f.balance(t, "p1", "w1")

			m := f.record(t, entity.DirectionIssue, issue("p1", "w1", "70"))
			voided, err := f.recorder.Void(context.Background(), f.admin, m.ID)
			require.NoError(t, err)
			assert.Equal(t, entity.MovementVoided, voided.Status)

			after := f.balance(t, "p1", "w1")
			assert.True(t, before.Quantity.Equal(after.Quantity))
			assert.True(t, before.TotalCost.Equal(after.TotalCost), "antes %s después %s", before.TotalCost, after.TotalCost)

			entries := f.kardex(t, "p1", "w1")
			require.Len(t, entries, 4)
			orig, rev := entries[2], entries[3]
			assert.Equal(t, orig.ID, rev.ReversalOf)
			assert.Equal(t, entity.OperationReceipt, rev.Operation)
			assert.True(t, orig.Quantity.Neg().Equal(rev.Quantity))
			assert.True(t, orig.UnitCost.Equal(rev.UnitCost))
			assert.True(t, orig.TotalCost.Neg().Equal(rev.TotalCost))
		})
	}
}

func TestLedger_AnularDosVecesEsIlegal(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	m := f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "10", "1.00"))
	_, err := f.recorder.Void(context.Background(), f.admin, m.ID)
	require.NoError(t, err)
	_, err = f.recorder.Void(context.Background(), f.admin, m.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestLedger_AnularEntradaConsumidaFIFO(t *testing.T) {
	f := newFixture(t, entity.ValuationFIFO)
	m := f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "10", "1.00"))
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "10", "2.00"))
	f.record(t, entity.DirectionIssue, issue("p1", "w1", "5"))

	_, err := f.recorder.Void(context.Background(), f.admin, m.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, d("15").Equal(f.balance(t, "p1", "w1").Quantity))
}

func TestLedger_NoAnulaMovimientoDeDocumento(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	m, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Source:    entity.DocumentRef{Family: entity.FamilyPurchaseOrder, ID: "po-1", Number: "OC-2026-0001"},
		Direction: entity.DirectionReceipt,
		Lines:     []inventory.LineInput{receipt("p1", "w1", "10", "1.00")},
	})
	require.NoError(t, err)

	_, err = f.recorder.Void(context.Background(), f.admin, m.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestLedger_SumaPrefijaReproduceSaldos(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "7", "3.3333"))
	f.record(t, entity.DirectionIssue, issue("p1", "w1", "2"))
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "13", "4.1"))
	m := f.record(t, entity.DirectionIssue, issue("p1", "w1", "9"))
	_, err := f.recorder.Void(context.Background(), f.admin, m.ID)
	require.NoError(t, err)
	f.record(t, entity.DirectionNegativeAdjustment, issue("p1", "w1", "1"))
	f.record(t, entity.DirectionPositiveAdjustment, issue("p1", "w1", "3"))

	qty, total := d("0"), d("0")
	for _, e := range f.kardex(t, "p1", "w1") {
		qty = qty.Add(e.Quantity)
		total = total.Add(e.TotalCost)
		assert.True(t, qty.Equal(e.RunningQuantity), "seq %d", e.Seq)
		assert.True(t, total.Equal(e.RunningTotalCost), "seq %d", e.Seq)
	}
	b := f.balance(t, "p1", "w1")
	assert.True(t, qty.Equal(b.Quantity))
	assert.True(t, total.Equal(b.TotalCost))
}

func TestLedger_TraspasoDestinoRecibeTotalExacto(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "3", "3.3333"))

	m := f.record(t, entity.DirectionTransfer, inventory.LineInput{
		ProductID: "p1", OriginWarehouseID: "w1", DestWarehouseID: "w2", Quantity: d("2"),
	})
	origin := f.kardex(t, "p1", "w1")
	dest := f.kardex(t, "p1", "w2")
	require.Len(t, dest, 1)
	assert.True(t, origin[1].TotalCost.Neg().Equal(dest[0].TotalCost))
	assert.Equal(t, m.ID, dest[0].MovementID)
	assert.Equal(t, m.ID, origin[1].MovementID)

	_, err := f.recorder.Void(context.Background(), f.admin, m.ID)
	require.NoError(t, err)
	assert.True(t, d("3").Equal(f.balance(t, "p1", "w1").Quantity))
	assert.True(t, f.balance(t, "p1", "w2").Quantity.IsZero())
}

func TestLedger_TraspasoMismaBodegaInvalido(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	_, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Direction: entity.DirectionTransfer,
		Lines:     []inventory.LineInput{{ProductID: "p1", OriginWarehouseID: "w1", DestWarehouseID: "w1", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_AislamientoEntreEmpresas(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	_, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Direction: entity.DirectionReceipt, Lines: []inventory.LineInput{receipt("p9", "w1", "1", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrCrossTenantReference)

	_, err = f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Direction: entity.DirectionReceipt, Lines: []inventory.LineInput{receipt("p1", "w9", "1", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrCrossTenantReference)

	// la empresa c2 no ve los saldos de c1
	_, err = f.queries.GetBalance(context.Background(),
		domain.TenantContext{CompanyID: "c2", UserID: "u2"}, "p1", "w1")
	assert.ErrorIs(t, err, domain.ErrCrossTenantReference)
}

func TestLedger_RestriccionDeBodega(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	_, err := f.recorder.Record(context.Background(), f.clerk, inventory.RecordInput{
		Direction: entity.DirectionReceipt, Lines: []inventory.LineInput{receipt("p1", "w2", "1", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.recorder.Record(context.Background(), f.clerk, inventory.RecordInput{
		Direction: entity.DirectionReceipt, Lines: []inventory.LineInput{receipt("p1", "w1", "1", "1")},
	})
	assert.NoError(t, err)
}

func TestLedger_AjusteNegativoForzado(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "2", "4.00"))
	in := inventory.RecordInput{
		Direction: entity.DirectionNegativeAdjustment,
		Reason:    entity.ReasonForcedNegative,
		Lines:     []inventory.LineInput{issue("p1", "w1", "5")},
	}

	_, err := f.recorder.Record(context.Background(), f.clerk, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.recorder.Record(context.Background(), f.admin, in)
	require.NoError(t, err)
	b := f.balance(t, "p1", "w1")
	assert.True(t, d("-3").Equal(b.Quantity))

	// la siguiente entrada cubre el déficit y toma su costo como promedio
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "10", "6.00"))
	b = f.balance(t, "p1", "w1")
	assert.True(t, d("7").Equal(b.Quantity))
	assert.True(t, d("6").Equal(b.AverageCost))
}

func TestLedger_ForzadoSoloEnAjusteNegativo(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	_, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Direction: entity.DirectionIssue, Reason: entity.ReasonForcedNegative,
		Lines: []inventory.LineInput{issue("p1", "w1", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_ProductoRetirado(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	ctx := context.Background()
	p, err := f.store.Repos().Products.GetByID(ctx, "p2")
	require.NoError(t, err)
	p.Retired = true
	require.NoError(t, f.store.Repos().Products.Update(ctx, p))

	_, err = f.recorder.Record(ctx, f.admin, inventory.RecordInput{
		Direction: entity.DirectionReceipt, Lines: []inventory.LineInput{receipt("p2", "w1", "1", "1")},
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "product_id", ve.Field)

	// sigue siendo legible
	_, err = f.queries.GetBalance(ctx, f.admin, "p2", "w1")
	assert.NoError(t, err)
}

func TestLedger_EntradaSinCosto(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	_, err := f.recorder.Record(context.Background(), f.admin, inventory.RecordInput{
		Direction: entity.DirectionReceipt, Lines: []inventory.LineInput{issue("p1", "w1", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_ApplyValidaSigno(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	err := f.store.Run(context.Background(), func(repos repository.Repos) error {
		_, err := f.ledger.Apply(context.Background(), repos, f.admin, inventory.ApplyInput{
			ProductID: "p1", WarehouseID: "w1", Quantity: d("-1"), UnitCost: dp("1"),
			Operation: entity.OperationReceipt,
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_NumeraMovimientos(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	m1 := f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "1", "1"))
	m2 := f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "1", "1"))
	assert.Equal(t, "MOV-2026-0001", m1.Number)
	assert.Equal(t, "MOV-2026-0002", m2.Number)
}

func TestGetBalance_BajoMinimo(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "4", "1"))
	b := f.balance(t, "p1", "w1")
	assert.True(t, b.BelowMinimum)

	f.record(t, entity.DirectionReceipt, receipt("p1", "w1", "6", "1"))
	assert.False(t, f.balance(t, "p1", "w1").BelowMinimum)
}

func TestGetBalance_SinMovimientos(t *testing.T) {
	f := newFixture(t, entity.ValuationWeightedAverage)
	b := f.balance(t, "p2", "w2")
	assert.True(t, b.Quantity.IsZero())
	assert.True(t, b.AverageCost.IsZero())
}
