package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
	"github.com/shopspring/decimal"
)

// LineInput línea a registrar. Quantity siempre positiva.
// Para TRANSFER: OriginWarehouseID y DestWarehouseID; para el resto: WarehouseID.
type LineInput struct {
	ProductID         string
	WarehouseID       string
	OriginWarehouseID string
	DestWarehouseID   string
	Quantity          decimal.Decimal
	UnitCost          *decimal.Decimal
}

// RecordInput entrada de MovementRecorder.Record.
type RecordInput struct {
	Source    entity.DocumentRef
	Direction entity.Direction
	Reason    string
	Lines     []LineInput
}

// MovementRecorder registra movimientos atómicos: todas las líneas o ninguna.
type MovementRecorder struct {
	store   TxRunner
	ledger  *Ledger
	seq     *Sequencer
	cache   BalanceCache
	metrics Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewMovementRecorder construye el registrador. cache y metrics pueden ser nil.
func NewMovementRecorder(
	store TxRunner,
	ledger *Ledger,
	seq *Sequencer,
	cache BalanceCache,
	metrics Metrics,
	log *logger.Logger,
	now func() time.Time,
) *MovementRecorder {
	if cache == nil {
		cache = nopCache{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &MovementRecorder{
		store:   store,
		ledger:  ledger,
		seq:     seq,
		cache:   cache,
		metrics: metrics,
		log:     log,
		now:     now,
	}
}

// Record registra el movimiento en su propia transacción (reintenta una vez ante conflicto).
func (r *MovementRecorder) Record(ctx context.Context, tenant domain.TenantContext, in RecordInput) (*entity.Movement, error) {
	var mov *entity.Movement
	err := RetryOnConflict(ctx, r.log, r.metrics, func() error {
		return r.store.Run(ctx, func(repos repository.Repos) error {
			m, err := r.RecordInTx(ctx, repos, tenant, in)
			mov = m
			return err
		})
	})
	if err != nil {
		r.logFailure(ctx, "registrar movimiento", err)
		return nil, err
	}
	return mov, nil
}

// RecordInTx registra el movimiento dentro de la transacción del llamador (flujos documentales).
// Bloquea todos los saldos involucrados en orden (producto, bodega) antes de aplicar las líneas.
func (r *MovementRecorder) RecordInTx(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, in RecordInput) (*entity.Movement, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := validateRecord(in); err != nil {
		return nil, err
	}
	if in.Reason == entity.ReasonForcedNegative && !tenant.IsElevated() {
		return nil, fmt.Errorf("%w: ajuste negativo forzado requiere rol elevado", domain.ErrForbidden)
	}
	source := in.Source
	if source.Family == "" {
		source.Family = entity.FamilyManual
	}

	keys := lineKeys(tenant.CompanyID, in)
	for _, k := range keys {
		if err := r.ledger.checkRefs(ctx, repos, tenant, k.ProductID, k.WarehouseID, false); err != nil {
			return nil, err
		}
	}

	number, err := r.seq.NextInTx(ctx, repos, tenant, PrefixMovement)
	if err != nil {
		return nil, err
	}
	now := r.now()
	m := &entity.Movement{
		ID:        uuid.New().String(),
		CompanyID: tenant.CompanyID,
		Number:    number,
		Direction: in.Direction,
		Status:    entity.MovementCompleted,
		Source:    source,
		Reason:    in.Reason,
		CreatedBy: tenant.UserID,
		CreatedAt: now,
	}

	if err := lockBalances(ctx, repos, keys); err != nil {
		return nil, err
	}

	for _, line := range in.Lines {
		ml := entity.MovementLine{
			ID:         uuid.New().String(),
			MovementID: m.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
		}
		if in.Direction == entity.DirectionTransfer {
			issue, err := r.ledger.Apply(ctx, repos, tenant, ApplyInput{
				ProductID:   line.ProductID,
				WarehouseID: line.OriginWarehouseID,
				Quantity:    line.Quantity.Neg(),
				Operation:   entity.OperationIssue,
				Source:      source,
				MovementID:  m.ID,
				OccurredAt:  now,
			})
			if err != nil {
				return nil, err
			}
			// El destino recibe exactamente el valor que salió del origen.
			unit := issue.UnitCost
			total := issue.TotalCost.Abs()
			if _, err := r.ledger.Apply(ctx, repos, tenant, ApplyInput{
				ProductID:   line.ProductID,
				WarehouseID: line.DestWarehouseID,
				Quantity:    line.Quantity,
				UnitCost:    &unit,
				TotalCost:   &total,
				Operation:   entity.OperationReceipt,
				Source:      source,
				MovementID:  m.ID,
				OccurredAt:  now,
			}); err != nil {
				return nil, err
			}
			ml.OriginWarehouseID = line.OriginWarehouseID
			ml.DestWarehouseID = line.DestWarehouseID
			ml.UnitCost = unit
			ml.TotalCost = total
		} else {
			op := in.Direction.Operation()
			qty := line.Quantity
			if !op.IsInbound() {
				qty = qty.Neg()
			}
			entry, err := r.ledger.Apply(ctx, repos, tenant, ApplyInput{
				ProductID:        line.ProductID,
				WarehouseID:      line.WarehouseID,
				Quantity:         qty,
				UnitCost:         line.UnitCost,
				Operation:        op,
				Source:           source,
				MovementID:       m.ID,
				AdjustmentReason: in.Reason,
				OccurredAt:       now,
			})
			if err != nil {
				return nil, err
			}
			if op.IsInbound() {
				ml.DestWarehouseID = line.WarehouseID
			} else {
				ml.OriginWarehouseID = line.WarehouseID
			}
			ml.UnitCost = entry.UnitCost
			ml.TotalCost = entry.TotalCost.Abs()
		}
		m.Lines = append(m.Lines, ml)
	}

	if err := repos.Movements.Create(ctx, m); err != nil {
		return nil, err
	}
	repos.AfterCommit(func() {
		r.cache.Invalidate(context.WithoutCancel(ctx), keys...)
		r.metrics.MovementRecorded(string(m.Direction))
		logger.FromContext(ctx, r.log).Info().
			Str("movement_id", m.ID).Str("number", m.Number).Str("direction", string(m.Direction)).
			Int("lines", len(m.Lines)).Msg("movimiento registrado")
	})
	return m, nil
}

// Void anula un movimiento manual en su propia transacción. Los movimientos de un documento solo
// se anulan con la transición de anulación del documento.
func (r *MovementRecorder) Void(ctx context.Context, tenant domain.TenantContext, movementID string) (*entity.Movement, error) {
	var mov *entity.Movement
	err := RetryOnConflict(ctx, r.log, r.metrics, func() error {
		return r.store.Run(ctx, func(repos repository.Repos) error {
			m, err := r.VoidInTx(ctx, repos, tenant, movementID, entity.DocumentRef{})
			mov = m
			return err
		})
	})
	if err != nil {
		r.logFailure(ctx, "anular movimiento", err)
		return nil, err
	}
	return mov, nil
}

// VoidInTx anula dentro de la transacción del llamador. owner es el documento que ordena la anulación
// (vacío para anulación directa). Genera contra-asientos: signo invertido, mismo costo unitario y
// total exacto negado; los asientos originales no se tocan.
func (r *MovementRecorder) VoidInTx(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, movementID string, owner entity.DocumentRef) (*entity.Movement, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	m, err := repos.Movements.GetForUpdate(ctx, tenant.CompanyID, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("movimiento %s: %w", movementID, domain.ErrNotFound)
	}
	if err := tenant.Owns("movement", m.ID, m.CompanyID); err != nil {
		return nil, err
	}
	if m.Status != entity.MovementCompleted {
		return nil, &domain.IllegalTransitionError{
			Family: "movement", Transition: "void", Current: string(m.Status),
			Allowed: []string{string(entity.MovementCompleted)},
		}
	}
	if owner.ID == "" && m.Source.IsDocument() {
		return nil, &domain.IllegalTransitionError{
			Family: "movement", Transition: "void",
			Current: fmt.Sprintf("%s (%s %s)", m.Status, m.Source.Family, m.Source.Number),
			Allowed: []string{"anulación del documento " + string(m.Source.Family)},
		}
	}
	if owner.ID != "" && (owner.ID != m.Source.ID || owner.Family != m.Source.Family) {
		return nil, domain.NewValidationError("movement_id", "el movimiento no pertenece al documento")
	}

	entries, err := repos.Kardex.ListByMovement(ctx, tenant.CompanyID, m.ID)
	if err != nil {
		return nil, err
	}
	var originals []*entity.KardexEntry
	keySet := make(map[entity.BalanceKey]struct{})
	for _, e := range entries {
		if e.ReversalOf != "" {
			continue
		}
		originals = append(originals, e)
		keySet[entity.BalanceKey{CompanyID: e.CompanyID, ProductID: e.ProductID, WarehouseID: e.WarehouseID}] = struct{}{}
	}
	keys := make([]entity.BalanceKey, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sortKeys(keys)
	if err := lockBalances(ctx, repos, keys); err != nil {
		return nil, err
	}

	now := r.now()
	// Último asiento primero: en un traspaso se drena el destino antes de restituir el origen.
	for i := len(originals) - 1; i >= 0; i-- {
		e := originals[i]
		unit := e.UnitCost
		total := e.TotalCost.Abs()
		if _, err := r.ledger.Apply(ctx, repos, tenant, ApplyInput{
			ProductID:   e.ProductID,
			WarehouseID: e.WarehouseID,
			Quantity:    e.Quantity.Neg(),
			UnitCost:    &unit,
			TotalCost:   &total,
			Operation:   e.Operation.Inverse(),
			Source:      e.Source,
			MovementID:  m.ID,
			ReversalOf:  e.ID,
			OccurredAt:  now,
		}); err != nil {
			return nil, err
		}
	}

	m.Status = entity.MovementVoided
	m.VoidedBy = tenant.UserID
	m.VoidedAt = &now
	if err := repos.Movements.MarkVoided(ctx, m); err != nil {
		return nil, err
	}
	repos.AfterCommit(func() {
		r.cache.Invalidate(context.WithoutCancel(ctx), keys...)
		r.metrics.MovementVoided()
		logger.FromContext(ctx, r.log).Info().Str("movement_id", m.ID).Str("number", m.Number).Msg("movimiento anulado")
	})
	return m, nil
}

func (r *MovementRecorder) logFailure(ctx context.Context, op string, err error) {
	log := logger.FromContext(ctx, r.log)
	switch {
	case errors.Is(err, domain.ErrCrossTenantReference):
		log.Error().Err(err).Msg(op + ": referencia entre empresas")
	case errors.Is(err, domain.ErrInsufficientStock):
		r.metrics.Rejected("insufficient_stock")
		log.Debug().Err(err).Msg(op)
	case errors.Is(err, domain.ErrIllegalTransition):
		r.metrics.Rejected("illegal_transition")
		log.Debug().Err(err).Msg(op)
	case errors.Is(err, domain.ErrInvalidInput):
		r.metrics.Rejected("validation")
		log.Debug().Err(err).Msg(op)
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
		log.Debug().Err(err).Msg(op)
	default:
		log.Error().Err(err).Msg(op)
	}
}

func validateRecord(in RecordInput) error {
	if !in.Direction.IsValid() {
		return domain.NewValidationError("direction", "dirección desconocida")
	}
	if len(in.Lines) == 0 {
		return domain.NewValidationError("lines", "el movimiento no tiene líneas")
	}
	if in.Reason == entity.ReasonForcedNegative && in.Direction != entity.DirectionNegativeAdjustment {
		return domain.NewValidationError("reason", "FORCED_NEGATIVE solo aplica a ajustes negativos")
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if l.ProductID == "" {
			return domain.NewValidationError(field+".product_id", "es obligatorio")
		}
		if !l.Quantity.IsPositive() {
			return domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		}
		if l.UnitCost != nil && l.UnitCost.IsNegative() {
			return domain.NewValidationError(field+".unit_cost", "no puede ser negativo")
		}
		if in.Direction == entity.DirectionTransfer {
			if l.OriginWarehouseID == "" || l.DestWarehouseID == "" {
				return domain.NewValidationError(field, "traspaso requiere bodega de origen y destino")
			}
			if l.OriginWarehouseID == l.DestWarehouseID {
				return domain.NewValidationError(field, "origen y destino deben ser distintos")
			}
			continue
		}
		if l.WarehouseID == "" {
			return domain.NewValidationError(field+".warehouse_id", "es obligatorio")
		}
		if l.UnitCost == nil && (in.Direction == entity.DirectionReceipt || in.Direction == entity.DirectionOpeningBalance) {
			return domain.NewValidationError(field+".unit_cost", "es obligatorio en entradas")
		}
	}
	return nil
}

func lineKeys(companyID string, in RecordInput) []entity.BalanceKey {
	seen := make(map[entity.BalanceKey]struct{})
	var keys []entity.BalanceKey
	add := func(productID, warehouseID string) {
		k := entity.BalanceKey{CompanyID: companyID, ProductID: productID, WarehouseID: warehouseID}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, l := range in.Lines {
		if in.Direction == entity.DirectionTransfer {
			add(l.ProductID, l.OriginWarehouseID)
			add(l.ProductID, l.DestWarehouseID)
			continue
		}
		add(l.ProductID, l.WarehouseID)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []entity.BalanceKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return keys[i].WarehouseID < keys[j].WarehouseID
	})
}

// lockBalances toma los bloqueos de fila en orden determinista para evitar interbloqueos.
func lockBalances(ctx context.Context, repos repository.Repos, keys []entity.BalanceKey) error {
	for _, k := range keys {
		if _, err := repos.Balances.GetForUpdate(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
