package entity

import "time"

// WarehouseKind tipo de bodega.
type WarehouseKind string

const (
	WarehouseMain      WarehouseKind = "MAIN"      // bodega central
	WarehouseCamp      WarehouseKind = "CAMP"      // campamento
	WarehouseSatellite WarehouseKind = "SATELLITE" // satélite en faena
)

// Warehouse bodega de una empresa; los saldos siempre se llevan por (empresa, bodega, producto).
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Kind      WarehouseKind
	Address   string
	Retired   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
