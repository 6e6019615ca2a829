package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
	"github.com/shopspring/decimal"
)

// TransitionLine cantidad por línea para receive (orden de compra), deliver (vale) y approve (requisición).
type TransitionLine struct {
	LineID   string
	Quantity decimal.Decimal
	UnitCost *decimal.Decimal // solo receive; nil usa el precio de la orden
}

// TransitionPayload datos opcionales según la transición.
type TransitionPayload struct {
	WarehouseID      string // receive: bodega de recepción, por defecto la de la orden
	Lines            []TransitionLine
	ExpectedReturnAt *time.Time // renew
	Notes            string
}

// Transition aplica una transición a un documento. Verifica la familia y el nombre, consulta al
// Authorizer y ejecuta todo (documento y movimientos) en una sola transacción.
func (s *Service) Transition(ctx context.Context, tenant domain.TenantContext, family entity.DocumentFamily, id, transition string, payload TransitionPayload) (*DocumentState, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	machine := workflow.ForFamily(family)
	if machine == nil {
		return nil, domain.NewValidationError("family", fmt.Sprintf("familia documental desconocida: %q", family))
	}
	if !machine.Knows(transition) {
		return nil, domain.NewValidationError("transition", fmt.Sprintf("%q no existe para %s", transition, family))
	}
	if family == entity.FamilyRequisition && transition == workflow.Fulfill {
		return nil, domain.NewValidationError("transition", "la requisición se satisface entregando un vale de salida")
	}
	if id == "" {
		return nil, domain.NewValidationError("id", "es obligatorio")
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: family, ID: id}, transition); err != nil {
		return nil, err
	}

	var state *DocumentState
	err := s.transact(ctx, string(family)+"."+transition, func(repos repository.Repos) error {
		var err error
		switch family {
		case entity.FamilyQuotation:
			state, err = s.transitionQuotation(ctx, repos, tenant, id, transition)
		case entity.FamilyPurchaseOrder:
			state, err = s.transitionPurchaseOrder(ctx, repos, tenant, id, transition, payload)
		case entity.FamilyRequisition:
			state, err = s.transitionRequisition(ctx, repos, tenant, id, transition, payload)
		case entity.FamilyExitVoucher:
			state, err = s.transitionExitVoucher(ctx, repos, tenant, id, transition, payload)
		case entity.FamilyEppAssignment:
			state, err = s.transitionEpp(ctx, repos, tenant, id, transition)
		case entity.FamilyEquipmentLoan:
			state, err = s.transitionLoan(ctx, repos, tenant, id, transition, payload)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info().
		Str("family", string(family)).Str("document_id", id).Str("number", state.Ref.Number).
		Str("transition", transition).Str("status", state.Status).Msg("transición aplicada")
	return state, nil
}
