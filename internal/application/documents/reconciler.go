package documents

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
)

// ReconcileResult cantidad de estados persistidos actualizados por familia.
type ReconcileResult struct {
	Quotations     int
	EppAssignments int
	Loans          int
}

// Total suma de documentos actualizados.
func (r ReconcileResult) Total() int { return r.Quotations + r.EppAssignments + r.Loans }

// Reconciler copia los estados perezosos al estado persistido para reportes. Nunca decide transiciones.
type Reconciler struct {
	store  inventory.Store
	policy workflow.Policy
	log    *logger.Logger
	now    func() time.Time
}

// NewReconciler construye el conciliador.
func NewReconciler(store inventory.Store, policy workflow.Policy, log *logger.Logger, now func() time.Time) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	if policy == (workflow.Policy{}) {
		policy = workflow.DefaultPolicy()
	}
	return &Reconciler{store: store, policy: policy, log: log, now: now}
}

// Run recorre los documentos abiertos de todas las empresas con un mismo instante de referencia.
func (r *Reconciler) Run(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	repos := r.store.Repos()
	now := r.now()

	quotations, err := repos.Quotations.ListOpen(ctx)
	if err != nil {
		return res, err
	}
	for _, q := range quotations {
		if st := workflow.QuotationStatus(q, now); st != q.PersistedStatus {
			if err := repos.Quotations.SetPersistedStatus(ctx, q.ID, st); err != nil {
				return res, err
			}
			res.Quotations++
		}
	}

	assignments, err := repos.EppAssignments.ListOpen(ctx)
	if err != nil {
		return res, err
	}
	for _, a := range assignments {
		if st := r.policy.EppStatus(a, now); st != a.PersistedStatus {
			if err := repos.EppAssignments.SetPersistedStatus(ctx, a.ID, st); err != nil {
				return res, err
			}
			res.EppAssignments++
		}
	}

	loans, err := repos.Loans.ListOpen(ctx)
	if err != nil {
		return res, err
	}
	for _, l := range loans {
		if st := workflow.LoanStatus(l, now); st != l.PersistedStatus {
			if err := repos.Loans.SetPersistedStatus(ctx, l.ID, st); err != nil {
				return res, err
			}
			res.Loans++
		}
	}

	logger.FromContext(ctx, r.log).Info().
		Int("quotations", res.Quotations).Int("epp_assignments", res.EppAssignments).Int("loans", res.Loans).
		Msg("estados conciliados")
	return res, nil
}
