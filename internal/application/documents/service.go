// Package documents implementa los flujos documentales con efecto en stock: cotizaciones, órdenes de
// compra, requisiciones, vales de salida, entregas de EPP y préstamos de equipo. Cada transición
// valida la tabla de su familia, consulta al Authorizer y confirma en una sola transacción junto con
// el movimiento de existencias que origina.
package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
	"github.com/shopspring/decimal"
)

const defaultQuotationValidityDays = 30

// Options parámetros del servicio.
type Options struct {
	Policy                workflow.Policy
	QuotationValidityDays int
	Now                   func() time.Time
}

// Service casos de uso de los flujos documentales.
type Service struct {
	store    inventory.Store
	recorder *inventory.MovementRecorder
	seq      *inventory.Sequencer
	auth     Authorizer
	log      *logger.Logger
	policy   workflow.Policy
	validity int
	now      func() time.Time
}

// NewService construye el servicio. auth nil equivale a AllowAll.
func NewService(
	store inventory.Store,
	recorder *inventory.MovementRecorder,
	seq *inventory.Sequencer,
	auth Authorizer,
	log *logger.Logger,
	opts Options,
) *Service {
	if auth == nil {
		auth = AllowAll{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == (workflow.Policy{}) {
		opts.Policy = workflow.DefaultPolicy()
	}
	if opts.QuotationValidityDays <= 0 {
		opts.QuotationValidityDays = defaultQuotationValidityDays
	}
	return &Service{
		store:    store,
		recorder: recorder,
		seq:      seq,
		auth:     auth,
		log:      log,
		policy:   opts.Policy,
		validity: opts.QuotationValidityDays,
		now:      opts.Now,
	}
}

// LineInput línea de cotización, orden de compra o requisición. UnitPrice se ignora en requisiciones.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// transact ejecuta fn en una transacción y la repite una vez ante conflicto de concurrencia.
func (s *Service) transact(ctx context.Context, op string, fn func(repos repository.Repos) error) error {
	err := inventory.RetryOnConflict(ctx, s.log, nil, func() error {
		return s.store.Run(ctx, fn)
	})
	if err != nil {
		s.logFailure(ctx, op, err)
	}
	return err
}

func (s *Service) authorize(ctx context.Context, tenant domain.TenantContext, ref entity.DocumentRef, transition string) error {
	ok, err := s.auth.CanTransition(ctx, tenant, ref, transition)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s.%s para rol %q", domain.ErrForbidden, ref.Family, transition, tenant.Role)
	}
	return nil
}

func (s *Service) logFailure(ctx context.Context, op string, err error) {
	log := logger.FromContext(ctx, s.log)
	switch {
	case errors.Is(err, domain.ErrCrossTenantReference):
		log.Error().Err(err).Msg(op + ": referencia entre empresas")
	case domain.IsBusinessError(err), errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
		log.Debug().Err(err).Msg(op)
	default:
		log.Error().Err(err).Msg(op)
	}
}

// segregate quien solicitó un documento no puede aprobarlo.
func segregate(requestedBy string, tenant domain.TenantContext) error {
	if requestedBy != "" && requestedBy == tenant.UserID {
		return fmt.Errorf("%w: el solicitante no puede aprobar su propio documento", domain.ErrForbidden)
	}
	return nil
}

func notFound(family entity.DocumentFamily, id string) error {
	return fmt.Errorf("%s %s: %w", family, id, domain.ErrNotFound)
}

func draftOnly(family entity.DocumentFamily, current, draft string) error {
	if current == draft {
		return nil
	}
	return &domain.IllegalTransitionError{
		Family:     string(family),
		Transition: OpUpdateLines,
		Current:    current,
		Allowed:    []string{draft},
	}
}

func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return domain.NewValidationError("lines", "el documento no tiene líneas")
	}
	for i, l := range lines {
		field := fmt.Sprintf("lines[%d]", i)
		if l.ProductID == "" {
			return domain.NewValidationError(field+".product_id", "es obligatorio")
		}
		if !l.Quantity.IsPositive() {
			return domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		}
		if l.UnitPrice.IsNegative() {
			return domain.NewValidationError(field+".unit_price", "no puede ser negativo")
		}
	}
	return nil
}

// product carga un producto vigente de la empresa del actor.
func product(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id string) (*entity.Product, error) {
	p, err := repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if err := tenant.Owns("product", p.ID, p.CompanyID); err != nil {
		return nil, err
	}
	if p.Retired {
		return nil, domain.NewValidationError("product_id", "el producto "+p.SKU+" está retirado")
	}
	return p, nil
}

func checkProducts(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, lines []LineInput) error {
	for _, l := range lines {
		if _, err := product(ctx, repos, tenant, l.ProductID); err != nil {
			return err
		}
	}
	return nil
}

// warehouse carga una bodega vigente de la empresa y aplica la restricción de bodega del actor.
func warehouse(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id string) (*entity.Warehouse, error) {
	if id == "" {
		return nil, domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	w, err := repos.Warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
	}
	if err := tenant.Owns("warehouse", w.ID, w.CompanyID); err != nil {
		return nil, err
	}
	if !tenant.CanAccessWarehouse(w.ID) {
		return nil, fmt.Errorf("%w: bodega %s fuera del alcance del usuario", domain.ErrForbidden, w.ID)
	}
	if w.Retired {
		return nil, domain.NewValidationError("warehouse_id", "la bodega "+w.Name+" está retirada")
	}
	return w, nil
}

func newID() string { return uuid.New().String() }
