package dto

import "time"

// CreateCompanyRequest entrada para dar de alta una empresa del registro.
type CreateCompanyRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=200"`
	TaxID           string `json:"tax_id" validate:"required,min=1,max=20"`
	ValuationMethod string `json:"valuation_method" validate:"required,oneof=WEIGHTED_AVERAGE FIFO"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TaxID           string    `json:"tax_id"`
	ValuationMethod string    `json:"valuation_method"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
