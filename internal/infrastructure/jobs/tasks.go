package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
)

const (
	// QueueDefault cola de las tareas periódicas.
	QueueDefault = "default"
	// TaskReconcileStatus copia los estados perezosos (vencimientos) al estado persistido.
	TaskReconcileStatus = "documents:status-reconcile"
)

// ReconcilePayload metadatos de programación.
type ReconcilePayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewReconcileTask construye la tarea de conciliación.
func NewReconcileTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ReconcilePayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileStatus, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// StatusReconciler lo que la tarea necesita del servicio documental.
type StatusReconciler interface {
	Run(ctx context.Context) (documents.ReconcileResult, error)
}

// ReconcileHandler procesa TaskReconcileStatus.
type ReconcileHandler struct {
	reconciler StatusReconciler
	log        *logger.Logger
}

// NewReconcileHandler construye el handler.
func NewReconcileHandler(reconciler StatusReconciler, log *logger.Logger) *ReconcileHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileHandler{reconciler: reconciler, log: log}
}

// ProcessTask implementa asynq.Handler. Un payload ilegible no se reintenta.
func (h *ReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("payload de conciliación: %v: %w", err, asynq.SkipRetry)
		}
	}
	start := time.Now()
	res, err := h.reconciler.Run(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("conciliación de estados fallida")
		return err
	}
	h.log.Info().
		Int("quotations", res.Quotations).
		Int("epp_assignments", res.EppAssignments).
		Int("loans", res.Loans).
		Dur("duration", time.Since(start)).
		Msg("conciliación de estados")
	return nil
}
