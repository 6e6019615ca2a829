package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ControlType forma de controlar la disponibilidad de un equipo prestable.
type ControlType string

const (
	ControlBulk       ControlType = "BULK"       // por cantidad
	ControlIndividual ControlType = "INDIVIDUAL" // serializado, disponible sí/no
)

// EquipmentPrestable herramienta o equipo prestable. Es una segunda dimensión de saldo,
// paralela a StockBalance, con la misma disciplina de bloqueo.
type EquipmentPrestable struct {
	ID                string
	CompanyID         string
	WarehouseID       string
	Code              string
	Name              string
	SerialNumber      string
	ControlType       ControlType
	TotalQuantity     decimal.Decimal
	AvailableQuantity decimal.Decimal
	Available         bool
	Retired           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanLend verifica disponibilidad para prestar qty.
func (e *EquipmentPrestable) CanLend(qty decimal.Decimal) bool {
	if e.Retired {
		return false
	}
	if e.ControlType == ControlIndividual {
		return e.Available && qty.Equal(decimal.NewFromInt(1))
	}
	return e.AvailableQuantity.GreaterThanOrEqual(qty)
}

// Lend descuenta la disponibilidad. El llamador debe haber verificado CanLend.
func (e *EquipmentPrestable) Lend(qty decimal.Decimal) {
	if e.ControlType == ControlIndividual {
		e.Available = false
		return
	}
	e.AvailableQuantity = e.AvailableQuantity.Sub(qty)
}

// Release devuelve disponibilidad, nunca por encima de TotalQuantity.
func (e *EquipmentPrestable) Release(qty decimal.Decimal) {
	if e.ControlType == ControlIndividual {
		if !e.Retired {
			e.Available = true
		}
		return
	}
	e.AvailableQuantity = decimal.Min(e.AvailableQuantity.Add(qty), e.TotalQuantity)
}

// WriteOff da de baja qty unidades perdidas o dañadas.
func (e *EquipmentPrestable) WriteOff(qty decimal.Decimal) {
	if e.ControlType == ControlIndividual {
		e.Available = false
		e.Retired = true
		return
	}
	e.TotalQuantity = e.TotalQuantity.Sub(qty)
	if e.TotalQuantity.IsNegative() {
		e.TotalQuantity = decimal.Zero
	}
	if e.AvailableQuantity.GreaterThan(e.TotalQuantity) {
		e.AvailableQuantity = e.TotalQuantity
	}
}
