package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-minero/internal/application/dto"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

// WarehouseUseCase casos de uso del registro de bodegas. Las bodegas no se eliminan: se retiran.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
	now  func() time.Time
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, now: time.Now}
}

// Create crea una nueva bodega en la empresa del actor.
func (uc *WarehouseUseCase) Create(ctx context.Context, tenant domain.TenantContext, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := requireAdmin(tenant); err != nil {
		return nil, err
	}
	kind := entity.WarehouseKind(in.Kind)
	if kind == "" {
		kind = entity.WarehouseMain
	}
	now := uc.now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: tenant.CompanyID,
		Name:      in.Name,
		Kind:      kind,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega de la empresa del actor.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, tenant domain.TenantContext, id string) (*dto.WarehouseResponse, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	w, err := uc.owned(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(w), nil
}

// Update cambia nombre, dirección o retiro de la bodega.
func (uc *WarehouseUseCase) Update(ctx context.Context, tenant domain.TenantContext, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := requireAdmin(tenant); err != nil {
		return nil, err
	}
	w, err := uc.owned(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		w.Name = *in.Name
	}
	if in.Address != nil {
		w.Address = *in.Address
	}
	if in.Retired != nil {
		w.Retired = *in.Retired
	}
	w.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return toWarehouseResponse(w), nil
}

func (uc *WarehouseUseCase) owned(ctx context.Context, tenant domain.TenantContext, id string) (*entity.Warehouse, error) {
	w, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil || w.CompanyID != tenant.CompanyID {
		return nil, domain.ErrNotFound
	}
	return w, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Name:      w.Name,
		Kind:      string(w.Kind),
		Address:   w.Address,
		Retired:   w.Retired,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// requireAdmin el registro solo lo modifica un administrador de la empresa.
func requireAdmin(tenant domain.TenantContext) error {
	if err := tenant.Validate(); err != nil {
		return err
	}
	if tenant.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}
