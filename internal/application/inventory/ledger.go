package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	costing "github.com/jhoicas/Inventario-minero/internal/domain/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ApplyInput mutación de un saldo. Quantity con signo: positiva para entradas, negativa para salidas.
type ApplyInput struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	// UnitCost obligatorio en recepciones y saldos iniciales; en un ajuste positivo nil usa el promedio vigente.
	UnitCost  *decimal.Decimal
	Operation entity.OperationType
	Source    entity.DocumentRef
	// MovementID movimiento dueño del asiento.
	MovementID       string
	AdjustmentReason string
	// ReversalOf asiento que este contra-asiento compensa.
	ReversalOf string
	// TotalCost importe exacto (magnitud) en lugar de Quantity*UnitCost.
	TotalCost  *decimal.Decimal
	OccurredAt time.Time
}

// Ledger libro de existencias: única vía para mutar StockBalance y agregar asientos de kardex.
type Ledger struct {
	methods sync.Map // companyID -> entity.ValuationMethod (fijo de por vida)
	now     func() time.Time
}

// NewLedger construye el libro.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

// Apply valida, bloquea el saldo, valoriza con el método de la empresa, persiste saldo y asiento
// (y lotes en FIFO) dentro de la transacción de repos. No confirma: eso lo hace el TxRunner.
func (l *Ledger) Apply(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, in ApplyInput) (*entity.KardexEntry, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := validateApply(in); err != nil {
		return nil, err
	}
	reversal := in.ReversalOf != ""
	if err := l.checkRefs(ctx, repos, tenant, in.ProductID, in.WarehouseID, reversal); err != nil {
		return nil, err
	}
	engine, err := l.engine(ctx, repos, tenant.CompanyID)
	if err != nil {
		return nil, err
	}

	var original *entity.KardexEntry
	if reversal {
		original, err = repos.Kardex.GetByID(ctx, tenant.CompanyID, in.ReversalOf)
		if err != nil {
			return nil, err
		}
		if original == nil {
			return nil, fmt.Errorf("asiento %s: %w", in.ReversalOf, domain.ErrNotFound)
		}
	}

	key := entity.BalanceKey{CompanyID: tenant.CompanyID, ProductID: in.ProductID, WarehouseID: in.WarehouseID}
	bal, err := repos.Balances.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}

	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = l.now()
	}
	entry := &entity.KardexEntry{
		ID:          uuid.New().String(),
		CompanyID:   tenant.CompanyID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		OccurredAt:  occurred,
		Operation:   in.Operation,
		Quantity:    in.Quantity,
		MovementID:  in.MovementID,
		Source:      in.Source,
		ReversalOf:  in.ReversalOf,
		CreatedBy:   tenant.UserID,
	}

	var newLot *entity.CostLot
	if in.Quantity.IsPositive() {
		unit := bal.AverageCost
		if in.UnitCost != nil {
			unit = *in.UnitCost
		}
		v := engine.Inbound(bal, costing.Inbound{Quantity: in.Quantity, UnitCost: unit, TotalCost: in.TotalCost})
		entry.UnitCost = v.UnitCost
		entry.TotalCost = v.TotalCost
		bal.Quantity = bal.Quantity.Add(in.Quantity)
		bal.TotalCost = bal.TotalCost.Add(v.TotalCost)
		bal.AverageCost = v.Average
		if engine.Method().UsesLots() && v.LotQuantity.IsPositive() {
			receivedAt := occurred
			if original != nil {
				receivedAt = original.OccurredAt
			}
			newLot = &entity.CostLot{
				ID:                uuid.New().String(),
				CompanyID:         tenant.CompanyID,
				ProductID:         in.ProductID,
				WarehouseID:       in.WarehouseID,
				ReceivedAt:        receivedAt,
				OriginalQuantity:  v.LotQuantity,
				RemainingQuantity: v.LotQuantity,
				UnitCost:          v.UnitCost,
			}
		}
	} else {
		v, err := l.priceOutbound(ctx, repos, tenant, engine, bal, in, original)
		if err != nil {
			return nil, err
		}
		entry.UnitCost = v.UnitCost
		entry.TotalCost = v.TotalCost.Neg()
		bal.Quantity = bal.Quantity.Add(in.Quantity)
		bal.TotalCost = bal.TotalCost.Sub(v.TotalCost)
		bal.AverageCost = v.Average
		for _, c := range v.Consumed {
			c.Lot.RemainingQuantity = c.Lot.RemainingQuantity.Sub(c.Quantity)
			if err := repos.Lots.UpdateRemaining(ctx, c.Lot); err != nil {
				return nil, err
			}
		}
	}
	entry.RunningQuantity = bal.Quantity
	entry.RunningTotalCost = bal.TotalCost
	bal.UpdatedAt = occurred

	if err := repos.Balances.Save(ctx, bal); err != nil {
		return nil, err
	}
	if err := repos.Kardex.Append(ctx, entry); err != nil {
		return nil, err
	}
	if newLot != nil {
		newLot.KardexEntryID = entry.ID
		if err := repos.Lots.Create(ctx, newLot); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

func (l *Ledger) priceOutbound(
	ctx context.Context,
	repos repository.Repos,
	tenant domain.TenantContext,
	engine costing.CostingEngine,
	bal *entity.StockBalance,
	in ApplyInput,
	original *entity.KardexEntry,
) (costing.Valuation, error) {
	qty := in.Quantity.Neg()
	forced := in.Operation == entity.OperationNegativeAdjustment && in.AdjustmentReason == entity.ReasonForcedNegative
	if forced && !tenant.IsElevated() {
		return costing.Valuation{}, fmt.Errorf("%w: ajuste negativo forzado requiere rol elevado", domain.ErrForbidden)
	}
	if !forced && bal.Quantity.LessThan(qty) {
		return costing.Valuation{}, &domain.InsufficientStockError{
			ProductID: in.ProductID, WarehouseID: in.WarehouseID, Available: bal.Quantity, Requested: qty,
		}
	}

	out := costing.Outbound{Quantity: qty, AllowNegative: forced}
	if original != nil {
		out.Fixed = &costing.FixedCost{UnitCost: original.UnitCost, TotalCost: original.TotalCost.Abs()}
		if in.TotalCost != nil {
			out.Fixed.TotalCost = *in.TotalCost
		}
	}

	if engine.Method().UsesLots() {
		if original != nil {
			// El contra-asiento de una entrada drena su propio lote.
			lot, err := repos.Lots.GetByKardexEntry(ctx, tenant.CompanyID, original.ID)
			if err != nil {
				return costing.Valuation{}, err
			}
			available := decimal.Zero
			if lot != nil {
				available = lot.RemainingQuantity
				out.Lots = []*entity.CostLot{lot}
			}
			if available.LessThan(qty) {
				return costing.Valuation{}, &domain.InsufficientStockError{
					ProductID: in.ProductID, WarehouseID: in.WarehouseID, Available: available, Requested: qty,
				}
			}
		} else {
			lots, err := repos.Lots.ListOpen(ctx, bal.Key())
			if err != nil {
				return costing.Valuation{}, err
			}
			out.Lots = lots
		}
	}

	v, err := engine.Outbound(bal, out)
	if errors.Is(err, costing.ErrLotsExhausted) {
		return costing.Valuation{}, &domain.InsufficientStockError{
			ProductID: in.ProductID, WarehouseID: in.WarehouseID, Available: bal.Quantity, Requested: qty,
		}
	}
	return v, err
}

func validateApply(in ApplyInput) error {
	if in.ProductID == "" {
		return domain.NewValidationError("product_id", "es obligatorio")
	}
	if in.WarehouseID == "" {
		return domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	if !in.Operation.IsValid() {
		return domain.NewValidationError("operation", "tipo de operación desconocido")
	}
	if in.Quantity.IsZero() {
		return domain.NewValidationError("quantity", "no puede ser cero")
	}
	if in.Operation.IsInbound() != in.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "el signo no corresponde a la operación")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.NewValidationError("unit_cost", "no puede ser negativo")
	}
	if in.TotalCost != nil && in.TotalCost.IsNegative() {
		return domain.NewValidationError("total_cost", "no puede ser negativo")
	}
	if in.UnitCost == nil && in.ReversalOf == "" &&
		(in.Operation == entity.OperationReceipt || in.Operation == entity.OperationOpeningBalance) {
		return domain.NewValidationError("unit_cost", "es obligatorio en entradas")
	}
	return nil
}

// checkRefs producto y bodega de la empresa, permitidos para el actor y vigentes.
// Los contra-asientos se aceptan aunque el producto o la bodega estén retirados.
func (l *Ledger) checkRefs(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, productID, warehouseID string, reversal bool) error {
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	if err := tenant.Owns("product", product.ID, product.CompanyID); err != nil {
		return err
	}
	warehouse, err := repos.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return fmt.Errorf("bodega %s: %w", warehouseID, domain.ErrNotFound)
	}
	if err := tenant.Owns("warehouse", warehouse.ID, warehouse.CompanyID); err != nil {
		return err
	}
	if !tenant.CanAccessWarehouse(warehouse.ID) {
		return fmt.Errorf("%w: bodega %s fuera del alcance del usuario", domain.ErrForbidden, warehouse.ID)
	}
	if !reversal && product.Retired {
		return domain.NewValidationError("product_id", "producto retirado")
	}
	if !reversal && warehouse.Retired {
		return domain.NewValidationError("warehouse_id", "bodega retirada")
	}
	return nil
}

func (l *Ledger) engine(ctx context.Context, repos repository.Repos, companyID string) (costing.CostingEngine, error) {
	if m, ok := l.methods.Load(companyID); ok {
		return costing.NewCostingEngine(m.(entity.ValuationMethod))
	}
	company, err := repos.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("empresa %s: %w", companyID, domain.ErrNotFound)
	}
	if !company.IsActive() {
		return nil, fmt.Errorf("%w: empresa %s inactiva", domain.ErrForbidden, companyID)
	}
	eng, err := costing.NewCostingEngine(company.ValuationMethod)
	if err != nil {
		return nil, err
	}
	l.methods.Store(companyID, company.ValuationMethod)
	return eng, nil
}
