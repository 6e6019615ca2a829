package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product ítem del catálogo. Nunca se elimina si tiene kardex: se retira (Retired).
type Product struct {
	ID            string
	CompanyID     string
	SKU           string // código único por empresa
	Name          string
	UnitOfMeasure string
	MinimumStock  decimal.Decimal
	ShelfLifeDays int // vida útil para EPP; 0 = sin vencimiento
	IsEPP         bool
	Retired       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExpiresAt fecha de vencimiento para una entrega hecha en issuedAt. Sin vida útil devuelve nil.
func (p *Product) ExpiresAt(issuedAt time.Time) *time.Time {
	if p.ShelfLifeDays <= 0 {
		return nil
	}
	t := issuedAt.AddDate(0, 0, p.ShelfLifeDays)
	return &t
}
