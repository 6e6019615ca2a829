package repository

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// ListWithMinimum productos vigentes de la empresa con stock mínimo definido, ordenados por SKU.
	ListWithMinimum(ctx context.Context, companyID string) ([]*entity.Product, error)
}
