package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	UnitOfMeasure string          `json:"unit_of_measure" validate:"max=20"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	ShelfLifeDays int             `json:"shelf_life_days" validate:"min=0"`
	IsEPP         bool            `json:"is_epp"`
}

// UpdateProductRequest entrada para actualizar un producto (sin costo ni stock).
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	UnitOfMeasure *string          `json:"unit_of_measure" validate:"omitempty,max=20"`
	MinimumStock  *decimal.Decimal `json:"minimum_stock"`
	ShelfLifeDays *int             `json:"shelf_life_days" validate:"omitempty,min=0"`
	Retired       *bool            `json:"retired"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	ShelfLifeDays int             `json:"shelf_life_days"`
	IsEPP         bool            `json:"is_epp"`
	Retired       bool            `json:"retired"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
