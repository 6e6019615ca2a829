package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_TransicionLegal(t *testing.T) {
	assert.NoError(t, workflow.PurchaseOrder.Check(string(entity.PurchaseOrderSent), workflow.Receive))
	assert.NoError(t, workflow.PurchaseOrder.Check(string(entity.PurchaseOrderPartial), workflow.Receive))
}

func TestMachine_TransicionIlegal(t *testing.T) {
	err := workflow.PurchaseOrder.Check(string(entity.PurchaseOrderDraft), workflow.Receive)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIllegalTransition))

	var ite *domain.IllegalTransitionError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, "DRAFT", ite.Current)
	assert.Equal(t, []string{"PARTIAL", "SENT"}, ite.Allowed)
}

func TestMachine_TransicionDesconocida(t *testing.T) {
	assert.False(t, workflow.ExitVoucher.Knows(workflow.Renew))
	assert.ErrorIs(t, workflow.ExitVoucher.Check(string(entity.ExitVoucherPending), workflow.Renew), domain.ErrIllegalTransition)
}

func TestMachine_EstadosTerminales(t *testing.T) {
	assert.Empty(t, workflow.Quotation.Available(string(entity.QuotationVoided)))
	assert.Empty(t, workflow.PurchaseOrder.Available(string(entity.PurchaseOrderVoided)))
	assert.Empty(t, workflow.EppAssignment.Available(string(entity.EppDevuelto)))
	assert.Empty(t, workflow.EquipmentLoan.Available(string(entity.LoanDevuelto)))
	assert.Empty(t, workflow.ExitVoucher.Available(string(entity.ExitVoucherVoided)))
}

func TestMachine_Available(t *testing.T) {
	assert.Equal(t, []string{"approve", "send", "void"}, workflow.Quotation.Available(string(entity.QuotationDraft)))
}

func TestForFamily(t *testing.T) {
	assert.Same(t, workflow.Requisition, workflow.ForFamily(entity.FamilyRequisition))
	assert.Nil(t, workflow.ForFamily(entity.FamilyManual))
}

func TestQuotationStatus_Vence(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	until := now.Add(-time.Hour)
	q := &entity.Quotation{Status: entity.QuotationSent, ValidUntil: &until}
	assert.Equal(t, entity.QuotationExpired, workflow.QuotationStatus(q, now))

	q.Status = entity.QuotationApproved
	assert.Equal(t, entity.QuotationApproved, workflow.QuotationStatus(q, now))
}

func TestEppStatus(t *testing.T) {
	p := workflow.DefaultPolicy()
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	exp := issued.AddDate(0, 0, 90)
	a := &entity.EppAssignment{Status: entity.EppVigente, IssuedAt: issued, ExpiresAt: &exp}

	assert.Equal(t, entity.EppVigente, p.EppStatus(a, issued.AddDate(0, 0, 10)))
	assert.Equal(t, entity.EppPorVencer, p.EppStatus(a, exp.AddDate(0, 0, -30)))
	assert.Equal(t, entity.EppVencido, p.EppStatus(a, exp))

	a.Status = entity.EppDevuelto
	assert.Equal(t, entity.EppDevuelto, p.EppStatus(a, exp.AddDate(1, 0, 0)))
}

func TestEppStatus_EstadoPersistidoNoDecide(t *testing.T) {
	p := workflow.DefaultPolicy()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	exp := now.AddDate(0, 6, 0)
	// el job dejó VENCIDO en cache, pero la fecha manda
	a := &entity.EppAssignment{Status: entity.EppVigente, PersistedStatus: entity.EppVencido, ExpiresAt: &exp}
	assert.Equal(t, entity.EppVigente, p.EppStatus(a, now))
}

func TestLoanStatus(t *testing.T) {
	p := workflow.DefaultPolicy()
	due := time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
	l := &entity.EquipmentLoan{Status: entity.LoanActivo, ExpectedReturnAt: due}

	assert.Equal(t, entity.LoanActivo, workflow.LoanStatus(l, due))
	assert.Equal(t, entity.LoanVencido, workflow.LoanStatus(l, due.Add(time.Minute)))
	assert.True(t, p.LoanDueSoon(l, due.Add(-24*time.Hour)))
	assert.False(t, p.LoanDueSoon(l, due.AddDate(0, 0, -5)))
	assert.False(t, p.LoanDueSoon(l, due.Add(time.Hour)))
}
