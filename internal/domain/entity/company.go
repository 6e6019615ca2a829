package entity

import "time"

// ValuationMethod método de costeo de la empresa; se fija al crearla y no cambia.
type ValuationMethod string

const (
	ValuationWeightedAverage ValuationMethod = "WEIGHTED_AVERAGE"
	ValuationFIFO            ValuationMethod = "FIFO"
)

// IsValid verifica que el método sea uno de los soportados.
func (m ValuationMethod) IsValid() bool {
	return m == ValuationWeightedAverage || m == ValuationFIFO
}

// UsesLots indica si el método mantiene lotes de costo (PEPS).
func (m ValuationMethod) UsesLots() bool {
	return m == ValuationFIFO
}

// Company representa una empresa/tenant del sistema (multi-tenant).
type Company struct {
	ID              string
	Name            string
	TaxID           string
	ValuationMethod ValuationMethod
	Status          string // active, suspended, inactive
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive indica si la empresa puede operar.
func (c *Company) IsActive() bool {
	return c.Status == "" || c.Status == "active"
}
