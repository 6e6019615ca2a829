package repository

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// El registro de empresas es externo; el núcleo solo lo lee.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}
