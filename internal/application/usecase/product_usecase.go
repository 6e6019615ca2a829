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

// ProductUseCase casos de uso del catálogo. Costo y stock se manejan vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// Create crea un nuevo producto. El SKU es único por empresa.
func (uc *ProductUseCase) Create(ctx context.Context, tenant domain.TenantContext, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := requireAdmin(tenant); err != nil {
		return nil, err
	}
	if in.MinimumStock.IsNegative() {
		return nil, domain.NewValidationError("minimum_stock", "no puede ser negativo")
	}
	if in.ShelfLifeDays < 0 {
		return nil, domain.NewValidationError("shelf_life_days", "no puede ser negativo")
	}
	existing, err := uc.repo.GetByCompanyAndSKU(ctx, tenant.CompanyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewValidationError("sku", "ya existe en la empresa")
	}
	if in.UnitOfMeasure == "" {
		in.UnitOfMeasure = "UN"
	}
	now := uc.now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		CompanyID:     tenant.CompanyID,
		SKU:           in.SKU,
		Name:          in.Name,
		UnitOfMeasure: in.UnitOfMeasure,
		MinimumStock:  in.MinimumStock,
		ShelfLifeDays: in.ShelfLifeDays,
		IsEPP:         in.IsEPP,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa del actor.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenant domain.TenantContext, id string) (*dto.ProductResponse, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	product, err := uc.owned(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. Retirar no borra el kardex: solo impide movimientos nuevos.
func (uc *ProductUseCase) Update(ctx context.Context, tenant domain.TenantContext, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := requireAdmin(tenant); err != nil {
		return nil, err
	}
	product, err := uc.owned(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.UnitOfMeasure != nil {
		product.UnitOfMeasure = *in.UnitOfMeasure
	}
	if in.MinimumStock != nil {
		if in.MinimumStock.IsNegative() {
			return nil, domain.NewValidationError("minimum_stock", "no puede ser negativo")
		}
		product.MinimumStock = *in.MinimumStock
	}
	if in.ShelfLifeDays != nil {
		product.ShelfLifeDays = *in.ShelfLifeDays
	}
	if in.Retired != nil {
		product.Retired = *in.Retired
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

func (uc *ProductUseCase) owned(ctx context.Context, tenant domain.TenantContext, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != tenant.CompanyID {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		SKU:           p.SKU,
		Name:          p.Name,
		UnitOfMeasure: p.UnitOfMeasure,
		MinimumStock:  p.MinimumStock,
		ShelfLifeDays: p.ShelfLifeDays,
		IsEPP:         p.IsEPP,
		Retired:       p.Retired,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
