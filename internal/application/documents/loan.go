package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// RegisterEquipmentInput alta de un equipo prestable.
type RegisterEquipmentInput struct {
	WarehouseID   string
	Code          string
	Name          string
	SerialNumber  string
	ControlType   entity.ControlType
	TotalQuantity decimal.Decimal // BULK; INDIVIDUAL siempre es 1
}

// RegisterEquipment da de alta un equipo prestable con toda su cantidad disponible.
func (s *Service) RegisterEquipment(ctx context.Context, tenant domain.TenantContext, in RegisterEquipmentInput) (*entity.EquipmentPrestable, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if in.Code == "" {
		return nil, domain.NewValidationError("code", "es obligatorio")
	}
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}
	total := in.TotalQuantity
	switch in.ControlType {
	case entity.ControlIndividual:
		total = one
	case entity.ControlBulk:
		if !total.IsPositive() {
			return nil, domain.NewValidationError("total_quantity", "debe ser mayor que cero")
		}
	default:
		return nil, domain.NewValidationError("control_type", fmt.Sprintf("tipo de control desconocido: %q", in.ControlType))
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyEquipmentLoan}, OpCreate); err != nil {
		return nil, err
	}
	var e *entity.EquipmentPrestable
	err := s.transact(ctx, "registrar equipo", func(repos repository.Repos) error {
		if _, err := warehouse(ctx, repos, tenant, in.WarehouseID); err != nil {
			return err
		}
		now := s.now()
		e = &entity.EquipmentPrestable{
			ID:                newID(),
			CompanyID:         tenant.CompanyID,
			WarehouseID:       in.WarehouseID,
			Code:              in.Code,
			Name:              in.Name,
			SerialNumber:      in.SerialNumber,
			ControlType:       in.ControlType,
			TotalQuantity:     total,
			AvailableQuantity: total,
			Available:         true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return repos.Equipment.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetEquipment lee un equipo prestable con su disponibilidad.
func (s *Service) GetEquipment(ctx context.Context, tenant domain.TenantContext, id string) (*entity.EquipmentPrestable, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	e, err := s.store.Repos().Equipment.GetByID(ctx, tenant.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("equipo %s: %w", id, domain.ErrNotFound)
	}
	return e, nil
}

// CreateEquipmentLoanInput datos de un préstamo. Quantity cero equivale a 1.
type CreateEquipmentLoanInput struct {
	EquipmentID      string
	Recipient        entity.Recipient
	Quantity         decimal.Decimal
	ExpectedReturnAt time.Time
	Notes            string
}

// CreateEquipmentLoan presta el equipo: descuenta disponibilidad (BULK) o apaga el indicador (INDIVIDUAL).
func (s *Service) CreateEquipmentLoan(ctx context.Context, tenant domain.TenantContext, in CreateEquipmentLoanInput) (*entity.EquipmentLoan, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if in.EquipmentID == "" {
		return nil, domain.NewValidationError("equipment_id", "es obligatorio")
	}
	qty := in.Quantity
	if qty.IsZero() {
		qty = one
	}
	if !qty.IsPositive() {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if err := in.Recipient.Validate(); err != nil {
		return nil, domain.NewValidationError("recipient", err.Error())
	}
	now := s.now()
	if !in.ExpectedReturnAt.After(now) {
		return nil, domain.NewValidationError("expected_return_at", "debe ser posterior a la fecha actual")
	}
	if err := s.authorize(ctx, tenant, entity.DocumentRef{Family: entity.FamilyEquipmentLoan}, OpCreate); err != nil {
		return nil, err
	}
	var l *entity.EquipmentLoan
	err := s.transact(ctx, "prestar equipo", func(repos repository.Repos) error {
		e, err := lockEquipment(ctx, repos, tenant, in.EquipmentID)
		if err != nil {
			return err
		}
		if e.Retired {
			return domain.NewValidationError("equipment_id", "el equipo "+e.Code+" está dado de baja")
		}
		if e.ControlType == entity.ControlIndividual && !qty.Equal(one) {
			return domain.NewValidationError("quantity", "un equipo individual se presta de a una unidad")
		}
		if !e.CanLend(qty) {
			return &domain.InsufficientStockError{
				ProductID:   e.ID,
				WarehouseID: e.WarehouseID,
				Available:   available(e),
				Requested:   qty,
			}
		}
		e.Lend(qty)
		e.UpdatedAt = now
		if err := repos.Equipment.Update(ctx, e); err != nil {
			return err
		}
		number, err := s.seq.NextInTx(ctx, repos, tenant, inventory.PrefixEquipmentLoan)
		if err != nil {
			return err
		}
		l = &entity.EquipmentLoan{
			ID:               newID(),
			CompanyID:        tenant.CompanyID,
			Number:           number,
			EquipmentID:      e.ID,
			Recipient:        in.Recipient,
			Quantity:         qty,
			LoanedAt:         now,
			ExpectedReturnAt: in.ExpectedReturnAt,
			Status:           entity.LoanActivo,
			PersistedStatus:  entity.LoanActivo,
			CreatedBy:        tenant.UserID,
			Notes:            in.Notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return repos.Loans.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) transitionLoan(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id, transition string, payload TransitionPayload) (*DocumentState, error) {
	l, err := repos.Loans.GetForUpdate(ctx, tenant.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound(entity.FamilyEquipmentLoan, id)
	}
	if err := tenant.Owns(string(entity.FamilyEquipmentLoan), l.ID, l.CompanyID); err != nil {
		return nil, err
	}
	now := s.now()
	if err := workflow.EquipmentLoan.Check(string(workflow.LoanStatus(l, now)), transition); err != nil {
		return nil, err
	}

	switch transition {
	case workflow.Return, workflow.Lose, workflow.Damage:
		e, err := lockEquipment(ctx, repos, tenant, l.EquipmentID)
		if err != nil {
			return nil, err
		}
		switch transition {
		case workflow.Return:
			e.Release(l.Quantity)
			l.Status = entity.LoanDevuelto
			l.ReturnedAt = &now
		case workflow.Lose:
			e.WriteOff(l.Quantity)
			l.Status = entity.LoanPerdido
		case workflow.Damage:
			e.WriteOff(l.Quantity)
			l.Status = entity.LoanDanado
		}
		e.UpdatedAt = now
		if err := repos.Equipment.Update(ctx, e); err != nil {
			return nil, err
		}
	case workflow.Renew:
		next, err := s.renew(ctx, repos, tenant, l, payload, now)
		if err != nil {
			return nil, err
		}
		l.RenewedToID = next.ID
		l.Status = entity.LoanRenovado
	}
	if payload.Notes != "" {
		l.Notes = payload.Notes
	}
	l.PersistedStatus = l.Status
	l.UpdatedAt = now
	if err := repos.Loans.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.loanState(l, now), nil
}

// renew cierra el préstamo como RENOVADO y abre su sucesor ACTIVO; la disponibilidad no cambia.
func (s *Service) renew(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, l *entity.EquipmentLoan, payload TransitionPayload, now time.Time) (*entity.EquipmentLoan, error) {
	if payload.ExpectedReturnAt == nil {
		return nil, domain.NewValidationError("expected_return_at", "es obligatorio para renovar")
	}
	if !payload.ExpectedReturnAt.After(now) {
		return nil, domain.NewValidationError("expected_return_at", "debe ser posterior a la fecha actual")
	}
	number, err := s.seq.NextInTx(ctx, repos, tenant, inventory.PrefixEquipmentLoan)
	if err != nil {
		return nil, err
	}
	next := &entity.EquipmentLoan{
		ID:               newID(),
		CompanyID:        l.CompanyID,
		Number:           number,
		EquipmentID:      l.EquipmentID,
		Recipient:        l.Recipient,
		Quantity:         l.Quantity,
		LoanedAt:         now,
		ExpectedReturnAt: *payload.ExpectedReturnAt,
		Status:           entity.LoanActivo,
		PersistedStatus:  entity.LoanActivo,
		RenewedFromID:    l.ID,
		CreatedBy:        tenant.UserID,
		Notes:            l.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repos.Loans.Create(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func lockEquipment(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, id string) (*entity.EquipmentPrestable, error) {
	e, err := repos.Equipment.GetForUpdate(ctx, tenant.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("equipo %s: %w", id, domain.ErrNotFound)
	}
	if err := tenant.Owns("equipment", e.ID, e.CompanyID); err != nil {
		return nil, err
	}
	if !tenant.CanAccessWarehouse(e.WarehouseID) {
		return nil, fmt.Errorf("%w: bodega %s fuera del alcance del usuario", domain.ErrForbidden, e.WarehouseID)
	}
	return e, nil
}

func available(e *entity.EquipmentPrestable) decimal.Decimal {
	if e.ControlType == entity.ControlIndividual {
		if e.Available {
			return one
		}
		return decimal.Zero
	}
	return e.AvailableQuantity
}
