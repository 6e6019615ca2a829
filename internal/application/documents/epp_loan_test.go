package documents_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpp_EntregaVencimientoYDevolucion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p-epp", "w1", "10", "20")

	a, err := f.svc.CreateEppAssignment(ctx, f.clerk, documents.CreateEppAssignmentInput{
		ProductID:   "p-epp",
		WarehouseID: "w1",
		Recipient:   worker(),
		Quantity:    d("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "EPP-2026-0001", a.Number)
	assert.Equal(t, entity.EppVigente, a.Status)
	require.NotNil(t, a.ExpiresAt)
	assert.Equal(t, start.AddDate(0, 0, 180), *a.ExpiresAt)
	assert.True(t, a.UnitCost.Equal(d("20")))
	assert.NotEmpty(t, a.IssueMovementID)
	assert.True(t, f.balance(t, "p-epp", "w1").Quantity.Equal(d("8")))

	f.advance(160)
	st, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyEppAssignment, a.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.EppPorVencer), st.Status)

	f.advance(21)
	st, err = f.svc.GetDocument(ctx, f.admin, entity.FamilyEppAssignment, a.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.EppVencido), st.Status)

	st = f.transition(t, f.clerk, entity.FamilyEppAssignment, a.ID, workflow.Return, documents.TransitionPayload{})
	assert.Equal(t, string(entity.EppDevuelto), st.Status)
	b := f.balance(t, "p-epp", "w1")
	assert.True(t, b.Quantity.Equal(d("10")))
	assert.True(t, b.AverageCost.Equal(d("20")), "reingresa al costo de salida")

	_, err = f.svc.Transition(ctx, f.clerk, entity.FamilyEppAssignment, a.ID, workflow.Return, documents.TransitionPayload{})
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestEpp_ExtravioNoMueveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p-epp", "w1", "3", "20")
	a, err := f.svc.CreateEppAssignment(ctx, f.clerk, documents.CreateEppAssignmentInput{
		ProductID: "p-epp", WarehouseID: "w1", Recipient: worker(), Quantity: d("1"),
	})
	require.NoError(t, err)

	st := f.transition(t, f.clerk, entity.FamilyEppAssignment, a.ID, workflow.Lose, documents.TransitionPayload{})
	assert.Equal(t, string(entity.EppExtraviado), st.Status)
	assert.Empty(t, st.Available)
	assert.True(t, f.balance(t, "p-epp", "w1").Quantity.Equal(d("2")))
}

func TestEpp_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "w1", "3", "20")

	_, err := f.svc.CreateEppAssignment(ctx, f.clerk, documents.CreateEppAssignmentInput{
		ProductID: "p1", WarehouseID: "w1", Recipient: worker(), Quantity: d("1"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "p1 no es EPP")

	_, err = f.svc.CreateEppAssignment(ctx, f.clerk, documents.CreateEppAssignmentInput{
		ProductID: "p-epp", WarehouseID: "w1", Recipient: entity.Recipient{Kind: "ALIEN", ID: "x"}, Quantity: d("1"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.CreateEppAssignment(ctx, f.clerk, documents.CreateEppAssignmentInput{
		ProductID: "p-epp", WarehouseID: "w1", Recipient: worker(), Quantity: d("1"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.svc.CreateEppAssignment(ctx, f.asker, documents.CreateEppAssignmentInput{
		ProductID: "p-epp", WarehouseID: "w1", Recipient: worker(), Quantity: d("1"),
	})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func bulkEquipment(t *testing.T, f *fixture, total string) *entity.EquipmentPrestable {
	t.Helper()
	e, err := f.svc.RegisterEquipment(context.Background(), f.clerk, documents.RegisterEquipmentInput{
		WarehouseID:   "w1",
		Code:          "ESC-01",
		Name:          "Escalera telescópica",
		ControlType:   entity.ControlBulk,
		TotalQuantity: d(total),
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) lend(t *testing.T, equipmentID, qty string) *entity.EquipmentLoan {
	t.Helper()
	l, err := f.svc.CreateEquipmentLoan(context.Background(), f.clerk, documents.CreateEquipmentLoanInput{
		EquipmentID:      equipmentID,
		Recipient:        worker(),
		Quantity:         d(qty),
		ExpectedReturnAt: f.now.Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) equipment(t *testing.T, id string) *entity.EquipmentPrestable {
	t.Helper()
	e, err := f.svc.GetEquipment(context.Background(), f.admin, id)
	require.NoError(t, err)
	return e
}

func TestLoan_DisponibilidadNuncaSuperaElTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := bulkEquipment(t, f, "10")

	l := f.lend(t, e.ID, "4")
	assert.Equal(t, "PRE-2026-0001", l.Number)
	assert.True(t, f.equipment(t, e.ID).AvailableQuantity.Equal(d("6")))

	st := f.transition(t, f.clerk, entity.FamilyEquipmentLoan, l.ID, workflow.Return, documents.TransitionPayload{})
	assert.Equal(t, string(entity.LoanDevuelto), st.Status)
	assert.True(t, f.equipment(t, e.ID).AvailableQuantity.Equal(d("10")))

	_, err := f.svc.Transition(ctx, f.clerk, entity.FamilyEquipmentLoan, l.ID, workflow.Return, documents.TransitionPayload{})
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.True(t, f.equipment(t, e.ID).AvailableQuantity.Equal(d("10")))
}

func TestLoan_SinDisponibilidad(t *testing.T) {
	f := newFixture(t)
	e := bulkEquipment(t, f, "3")
	f.lend(t, e.ID, "2")

	_, err := f.svc.CreateEquipmentLoan(context.Background(), f.clerk, documents.CreateEquipmentLoanInput{
		EquipmentID:      e.ID,
		Recipient:        worker(),
		Quantity:         d("2"),
		ExpectedReturnAt: f.now.Add(24 * time.Hour),
	})
	var serr *domain.InsufficientStockError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.Available.Equal(d("1")))
	assert.True(t, serr.Missing().Equal(d("1")))
}

func TestLoan_ExtravioDescuentaDelTotal(t *testing.T) {
	f := newFixture(t)
	e := bulkEquipment(t, f, "10")
	l := f.lend(t, e.ID, "3")

	st := f.transition(t, f.clerk, entity.FamilyEquipmentLoan, l.ID, workflow.Lose, documents.TransitionPayload{})
	assert.Equal(t, string(entity.LoanPerdido), st.Status)
	got := f.equipment(t, e.ID)
	assert.True(t, got.TotalQuantity.Equal(d("7")))
	assert.True(t, got.AvailableQuantity.Equal(d("7")))
}

func TestLoan_EquipoIndividual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.svc.RegisterEquipment(ctx, f.clerk, documents.RegisterEquipmentInput{
		WarehouseID:  "w1",
		Code:         "DET-07",
		Name:         "Detector de gases",
		SerialNumber: "SN-4471",
		ControlType:  entity.ControlIndividual,
	})
	require.NoError(t, err)
	assert.True(t, e.TotalQuantity.Equal(d("1")))

	l, err := f.svc.CreateEquipmentLoan(ctx, f.clerk, documents.CreateEquipmentLoanInput{
		EquipmentID: e.ID, Recipient: worker(), ExpectedReturnAt: f.now.Add(8 * time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, f.equipment(t, e.ID).Available)

	_, err = f.svc.CreateEquipmentLoan(ctx, f.clerk, documents.CreateEquipmentLoanInput{
		EquipmentID: e.ID, Recipient: worker(), ExpectedReturnAt: f.now.Add(8 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	f.transition(t, f.clerk, entity.FamilyEquipmentLoan, l.ID, workflow.Damage, documents.TransitionPayload{})
	got := f.equipment(t, e.ID)
	assert.True(t, got.Retired)
	assert.False(t, got.Available)

	_, err = f.svc.CreateEquipmentLoan(ctx, f.clerk, documents.CreateEquipmentLoanInput{
		EquipmentID: e.ID, Recipient: worker(), ExpectedReturnAt: f.now.Add(8 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "equipo dado de baja")
}

func TestLoan_RenovarCreaSucesor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := bulkEquipment(t, f, "5")
	l := f.lend(t, e.ID, "2")

	f.advance(4)
	st, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyEquipmentLoan, l.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LoanVencido), st.Status)

	_, err = f.svc.Transition(ctx, f.clerk, entity.FamilyEquipmentLoan, l.ID, workflow.Renew, documents.TransitionPayload{})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "renovar exige nueva fecha")

	until := f.now.Add(24 * time.Hour)
	st = f.transition(t, f.clerk, entity.FamilyEquipmentLoan, l.ID, workflow.Renew, documents.TransitionPayload{ExpectedReturnAt: &until})
	assert.Equal(t, string(entity.LoanRenovado), st.Status)
	require.Len(t, st.Related, 1)

	next, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyEquipmentLoan, st.Related[0].ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LoanActivo), next.Status)
	assert.True(t, next.DueSoon, "vence dentro de los días de aviso")
	assert.Equal(t, l.ID, next.Document.(*entity.EquipmentLoan).RenewedFromID)
	assert.True(t, f.equipment(t, e.ID).AvailableQuantity.Equal(d("3")), "renovar no cambia la disponibilidad")
}

func TestReconciler_PersisteEstadosPerezosos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p-epp", "w1", "5", "20")
	a, err := f.svc.CreateEppAssignment(ctx, f.clerk, documents.CreateEppAssignmentInput{
		ProductID: "p-epp", WarehouseID: "w1", Recipient: worker(), Quantity: d("1"),
	})
	require.NoError(t, err)
	l := f.lend(t, bulkEquipment(t, f, "2").ID, "1")

	rec := documents.NewReconciler(f.store, workflow.DefaultPolicy(), nil, func() time.Time { return f.now })
	res, err := rec.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Total())

	f.advance(200)
	res, err = rec.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.EppAssignments)
	assert.Equal(t, 1, res.Loans)

	st, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyEppAssignment, a.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.EppVencido), st.PersistedStatus)
	lst, err := f.svc.GetDocument(ctx, f.admin, entity.FamilyEquipmentLoan, l.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LoanVencido), lst.PersistedStatus)

	res, err = rec.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Total(), "idempotente")
}

func TestRoleAuthorizer(t *testing.T) {
	auth := documents.NewRoleAuthorizer()
	ctx := context.Background()
	ref := entity.DocumentRef{Family: entity.FamilyExitVoucher, ID: "v1"}
	cases := []struct {
		role       string
		transition string
		want       bool
	}{
		{domain.RoleBodeguero, workflow.Deliver, true},
		{domain.RoleSolicitante, workflow.Deliver, false},
		{domain.RoleAprobador, workflow.Void, true},
		{domain.RoleBodeguero, workflow.Void, false},
		{domain.RoleAdmin, workflow.Void, true},
		{domain.RoleSolicitante, documents.OpCreate, false},
		{"", workflow.Deliver, false},
	}
	for _, tc := range cases {
		ok, err := auth.CanTransition(ctx, domain.TenantContext{CompanyID: "c1", UserID: "u", Role: tc.role}, ref, tc.transition)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "%s %s", tc.role, tc.transition)
	}
}
