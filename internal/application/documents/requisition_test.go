package documents_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// approvedRequisition requisición de 20 p1 en w1, enviada y aprobada.
func approvedRequisition(t *testing.T, f *fixture) *entity.Requisition {
	t.Helper()
	ctx := context.Background()
	r, err := f.svc.CreateRequisition(ctx, f.asker, documents.CreateRequisitionInput{
		WarehouseID:  "w1",
		CostCenterID: "CC-PERFORACION",
		Lines:        []documents.LineInput{{ProductID: "p1", Quantity: d("20")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "REQ-2026-0001", r.Number)
	assert.Equal(t, entity.RequisitionDraft, r.Status)

	f.transition(t, f.asker, entity.FamilyRequisition, r.ID, workflow.Submit, documents.TransitionPayload{})
	st := f.transition(t, f.approver, entity.FamilyRequisition, r.ID, workflow.Approve, documents.TransitionPayload{})
	require.Equal(t, string(entity.RequisitionApproved), st.Status)
	return st.Document.(*entity.Requisition)
}

func TestRequisition_EntregaParcialDejaPendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "w1", "50", "10")
	r := approvedRequisition(t, f)

	v, err := f.svc.CreateExitVoucher(ctx, f.clerk, documents.CreateExitVoucherInput{
		RequisitionID: r.ID,
		Recipient:     worker(),
		Lines:         []documents.VoucherLineInput{{RequisitionLineID: r.Lines[0].ID, Quantity: d("12")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "w1", v.WarehouseID, "hereda la bodega de la requisición")
	assert.Equal(t, entity.ExitVoucherPending, v.Status)

	st := f.transition(t, f.clerk, entity.FamilyExitVoucher, v.ID, workflow.Deliver, documents.TransitionPayload{})
	assert.Equal(t, string(entity.ExitVoucherDelivered), st.Status)

	rs, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyRequisition, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.RequisitionPartial), rs.Status)
	req := rs.Document.(*entity.Requisition)
	assert.True(t, req.Lines[0].DeliveredQuantity.Equal(d("12")))
	assert.True(t, req.Lines[0].Pending().Equal(d("8")))
	assert.NotContains(t, rs.Available, workflow.Fulfill)
	require.Len(t, rs.Related, 1)

	b := f.balance(t, "p1", "w1")
	assert.True(t, b.Quantity.Equal(d("38")))
}

func TestRequisition_AnularValeRestituyeCantidadesYStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "w1", "50", "10")
	r := approvedRequisition(t, f)

	v, err := f.svc.CreateFromRequisition(ctx, f.clerk, r.ID, worker())
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.True(t, v.Lines[0].Quantity.Equal(d("20")))

	f.transition(t, f.clerk, entity.FamilyExitVoucher, v.ID, workflow.Deliver, documents.TransitionPayload{
		Lines: []documents.TransitionLine{{LineID: v.Lines[0].ID, Quantity: d("20")}},
	})
	rs, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyRequisition, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.RequisitionCompleted), rs.Status)

	st := f.transition(t, f.approver, entity.FamilyExitVoucher, v.ID, workflow.Void, documents.TransitionPayload{})
	assert.Equal(t, string(entity.ExitVoucherVoided), st.Status)

	rs, err = f.svc.GetDocument(ctx, f.admin, entity.FamilyRequisition, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.RequisitionApproved), rs.Status)
	assert.True(t, rs.Document.(*entity.Requisition).Lines[0].Pending().Equal(d("20")))
	assert.True(t, f.balance(t, "p1", "w1").Quantity.Equal(d("50")))
}

func TestRequisition_EntregaNoExcedePendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "w1", "50", "10")
	r := approvedRequisition(t, f)

	v, err := f.svc.CreateExitVoucher(ctx, f.clerk, documents.CreateExitVoucherInput{
		RequisitionID: r.ID,
		Recipient:     worker(),
		Lines:         []documents.VoucherLineInput{{RequisitionLineID: r.Lines[0].ID, Quantity: d("12")}},
	})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, f.clerk, entity.FamilyExitVoucher, v.ID, workflow.Deliver, documents.TransitionPayload{
		Lines: []documents.TransitionLine{{LineID: v.Lines[0].ID, Quantity: d("13")}},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	// Un segundo vale solo puede tomar lo que no está comprometido en el primero.
	_, err = f.svc.CreateExitVoucher(ctx, f.clerk, documents.CreateExitVoucherInput{
		RequisitionID: r.ID,
		Recipient:     worker(),
		Lines:         []documents.VoucherLineInput{{RequisitionLineID: r.Lines[0].ID, Quantity: d("9")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.balance(t, "p1", "w1").Quantity.Equal(d("50")))
}

func TestRequisition_EntregaSinStockNoAvanza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "w1", "5", "10")
	r := approvedRequisition(t, f)
	v, err := f.svc.CreateFromRequisition(ctx, f.clerk, r.ID, worker())
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, f.clerk, entity.FamilyExitVoucher, v.ID, workflow.Deliver, documents.TransitionPayload{})
	var serr *domain.InsufficientStockError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.Missing().Equal(d("15")))

	vs, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyExitVoucher, v.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ExitVoucherPending), vs.Status)
	rs, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyRequisition, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.RequisitionApproved), rs.Status)
}

func TestRequisition_AprobacionParcialYSegregacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.svc.CreateRequisition(ctx, f.approver, documents.CreateRequisitionInput{
		WarehouseID: "w1",
		Lines:       []documents.LineInput{{ProductID: "p1", Quantity: d("20")}},
	})
	require.NoError(t, err)
	f.transition(t, f.approver, entity.FamilyRequisition, r.ID, workflow.Submit, documents.TransitionPayload{})

	_, err = f.svc.Transition(ctx, f.approver, entity.FamilyRequisition, r.ID, workflow.Approve, documents.TransitionPayload{})
	require.ErrorIs(t, err, domain.ErrForbidden, "el solicitante no aprueba lo propio")

	_, err = f.svc.Transition(ctx, f.clerk, entity.FamilyRequisition, r.ID, workflow.Approve, documents.TransitionPayload{})
	require.ErrorIs(t, err, domain.ErrForbidden, "el rol bodeguero no aprueba")

	st := f.transition(t, f.admin, entity.FamilyRequisition, r.ID, workflow.Approve, documents.TransitionPayload{
		Lines: []documents.TransitionLine{{LineID: r.Lines[0].ID, Quantity: d("15")}},
	})
	req := st.Document.(*entity.Requisition)
	assert.True(t, req.Lines[0].Authorized().Equal(d("15")))
	assert.True(t, req.Lines[0].Pending().Equal(d("15")))
	assert.Equal(t, "u-admin", req.ApprovedBy)
}

func TestRequisition_TransicionesIlegales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.svc.CreateRequisition(ctx, f.asker, documents.CreateRequisitionInput{
		WarehouseID: "w1",
		Lines:       []documents.LineInput{{ProductID: "p1", Quantity: d("3")}},
	})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, f.approver, entity.FamilyRequisition, r.ID, workflow.Approve, documents.TransitionPayload{})
	var terr *domain.IllegalTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, string(entity.RequisitionDraft), terr.Current)
	assert.Equal(t, []string{string(entity.RequisitionPending)}, terr.Allowed)

	_, err = f.svc.Transition(ctx, f.admin, entity.FamilyRequisition, r.ID, workflow.Fulfill, documents.TransitionPayload{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Transition(ctx, f.admin, entity.FamilyRequisition, r.ID, "teleport", documents.TransitionPayload{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	f.transition(t, f.asker, entity.FamilyRequisition, r.ID, workflow.Submit, documents.TransitionPayload{})
	_, err = f.svc.UpdateRequisitionLines(ctx, f.asker, r.ID, []documents.LineInput{{ProductID: "p1", Quantity: d("4")}})
	require.ErrorIs(t, err, domain.ErrIllegalTransition, "solo se edita en DRAFT")
}

func TestRequisition_AnularConEntregasVigentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "w1", "50", "10")
	r := approvedRequisition(t, f)
	v, err := f.svc.CreateFromRequisition(ctx, f.clerk, r.ID, worker())
	require.NoError(t, err)
	f.transition(t, f.clerk, entity.FamilyExitVoucher, v.ID, workflow.Deliver, documents.TransitionPayload{
		Lines: []documents.TransitionLine{{LineID: v.Lines[0].ID, Quantity: d("5")}},
	})

	_, err = f.svc.Transition(ctx, f.approver, entity.FamilyRequisition, r.ID, workflow.Void, documents.TransitionPayload{})
	require.ErrorIs(t, err, domain.ErrIllegalTransition)

	f.transition(t, f.approver, entity.FamilyExitVoucher, v.ID, workflow.Void, documents.TransitionPayload{})
	st := f.transition(t, f.approver, entity.FamilyRequisition, r.ID, workflow.Void, documents.TransitionPayload{})
	assert.Equal(t, string(entity.RequisitionVoided), st.Status)
}

func TestRequisition_BodegaFueraDeAlcance(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateRequisition(context.Background(), f.clerk, documents.CreateRequisitionInput{
		WarehouseID: "w2",
		Lines:       []documents.LineInput{{ProductID: "p1", Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrForbidden)
}
