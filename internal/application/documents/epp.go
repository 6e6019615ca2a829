package documents

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

// CreateEppAssignmentInput datos de una entrega de EPP.
type CreateEppAssignmentInput struct {
	ProductID   string
	WarehouseID string
	Recipient   entity.Recipient
	Quantity    decimal.Decimal
	Notes       string
}

// CreateEppAssignment entrega EPP a un receptor: registra el ISSUE y fija el vencimiento según la
// vida útil del producto.
func (s *Service) CreateEppAssignment(ctx context.Context, tenant domain.TenantContext, in CreateEppAssignmentInput) (*entity.EppAssignment, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if err := in.Recipient.Validate(); err != nil {
		return nil, domain.NewValidationError("recipient", err.Error())
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyEppAssignment}, OpCreate); err != nil {
		return nil, err
	}
	var a *entity.EppAssignment
	err := s.transact(ctx, "entregar EPP", func(repos repository.Repos) error {
		p, err := product(ctx, repos, tenant, in.ProductID)
		if err != nil {
			return err
		}
		if !p.IsEPP {
			return domain.NewValidationError("product_id", "el producto "+p.SKU+" no es un EPP")
		}
		if _, err := warehouse(ctx, repos, tenant, in.WarehouseID); err != nil {
			return err
		}
		number, err := s.seq.NextInTx(ctx, repos, tenant, inventory.PrefixEppAssignment)
		if err != nil {
			return err
		}
		a = entity.NewEppAssignment(newID(), tenant.CompanyID, p, in.WarehouseID, in.Recipient, in.Quantity, s.now())
		a.Number = number
		a.CreatedBy = tenant.UserID
		a.Notes = in.Notes

		mov, err := s.recorder.RecordInTx(ctx, repos, tenant, inventory.RecordInput{
			Source:    entity.DocumentRef{Family: entity.FamilyEppAssignment, ID: a.ID, Number: a.Number},
			Direction: entity.DirectionIssue,
			Lines: []inventory.LineInput{{
				ProductID:   a.ProductID,
				WarehouseID: a.WarehouseID,
				Quantity:    a.Quantity,
			}},
		})
		if err != nil {
			return err
		}
		a.IssueMovementID = mov.ID
		a.UnitCost = mov.Lines[0].UnitCost
		return repos.EppAssignments.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) transitionEpp(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id, transition string) (*DocumentState, error) {
	a, err := repos.EppAssignments.GetForUpdate(ctx, tenant.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, notFound(entity.FamilyEppAssignment, id)
	}
	if err := tenant.Owns(string(entity.FamilyEppAssignment), a.ID, a.CompanyID); err != nil {
		return nil, err
	}
	now := s.now()
	if err := workflow.EppAssignment.Check(string(s.policy.EppStatus(a, now)), transition); err != nil {
		return nil, err
	}

	switch transition {
	case workflow.Return:
		// Reingresa al mismo costo con que salió.
		cost := a.UnitCost
		mov, err := s.recorder.RecordInTx(ctx, repos, tenant, inventory.RecordInput{
			Source:    entity.DocumentRef{Family: entity.FamilyEppAssignment, ID: a.ID, Number: a.Number},
			Direction: entity.DirectionReceipt,
			Lines: []inventory.LineInput{{
				ProductID:   a.ProductID,
				WarehouseID: a.WarehouseID,
				Quantity:    a.Quantity,
				UnitCost:    &cost,
			}},
		})
		if err != nil {
			return nil, err
		}
		a.ReturnMovementID = mov.ID
		a.Status = entity.EppDevuelto
	case workflow.Lose:
		a.Status = entity.EppExtraviado
	case workflow.Damage:
		a.Status = entity.EppDanado
	}
	a.ClosedAt = &now
	a.PersistedStatus = a.Status
	a.UpdatedAt = now
	if err := repos.EppAssignments.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.eppState(a, now), nil
}
