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

// CompanyUseCase alta y lectura del registro de empresas.
type CompanyUseCase struct {
	repo repository.CompanyRepository
	now  func() time.Time
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, now: time.Now}
}

// Create da de alta una empresa. El método de costeo queda fijo desde aquí.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	method := entity.ValuationMethod(in.ValuationMethod)
	if !method.IsValid() {
		return nil, domain.NewValidationError("valuation_method", "debe ser WEIGHTED_AVERAGE o FIFO")
	}
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	now := uc.now()
	company := &entity.Company{
		ID:              uuid.New().String(),
		Name:            in.Name,
		TaxID:           in.TaxID,
		ValuationMethod: method,
		Status:          "active",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// GetCurrent empresa del actor.
func (uc *CompanyUseCase) GetCurrent(ctx context.Context, tenant domain.TenantContext) (*dto.CompanyResponse, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	company, err := uc.repo.GetByID(ctx, tenant.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return toCompanyResponse(company), nil
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		TaxID:           c.TaxID,
		ValuationMethod: string(c.ValuationMethod),
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
