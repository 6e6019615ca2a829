package workflow

import (
	"time"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// Policy parámetros de los estados dependientes del tiempo.
type Policy struct {
	EppWarningDays  int
	LoanDueSoonDays int
}

// DefaultPolicy valores por defecto.
func DefaultPolicy() Policy {
	return Policy{EppWarningDays: 30, LoanDueSoonDays: 2}
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// QuotationStatus estado efectivo: una cotización abierta vence al pasar ValidUntil.
func QuotationStatus(q *entity.Quotation, now time.Time) entity.QuotationStatus {
	switch q.Status {
	case entity.QuotationDraft, entity.QuotationSent, entity.QuotationReceived:
		if q.ValidUntil != nil && now.After(*q.ValidUntil) {
			return entity.QuotationExpired
		}
	}
	return q.Status
}

// EppStatus estado efectivo de una entrega de EPP abierta:
// now >= expira -> VENCIDO; now >= expira - aviso -> POR_VENCER.
func (p Policy) EppStatus(a *entity.EppAssignment, now time.Time) entity.EppStatus {
	if !a.Status.IsOpen() {
		return a.Status
	}
	if a.ExpiresAt == nil {
		return entity.EppVigente
	}
	if !now.Before(*a.ExpiresAt) {
		return entity.EppVencido
	}
	if !now.Before(a.ExpiresAt.Add(-days(p.EppWarningDays))) {
		return entity.EppPorVencer
	}
	return entity.EppVigente
}

// LoanStatus estado efectivo de un préstamo abierto: vencido al pasar la fecha de devolución.
func LoanStatus(l *entity.EquipmentLoan, now time.Time) entity.LoanStatus {
	if !l.Status.IsOpen() {
		return l.Status
	}
	if now.After(l.ExpectedReturnAt) {
		return entity.LoanVencido
	}
	return entity.LoanActivo
}

// LoanDueSoon préstamo activo cuya devolución cae dentro de LoanDueSoonDays.
func (p Policy) LoanDueSoon(l *entity.EquipmentLoan, now time.Time) bool {
	if LoanStatus(l, now) != entity.LoanActivo {
		return false
	}
	return !now.Before(l.ExpectedReturnAt.Add(-days(p.LoanDueSoonDays)))
}
