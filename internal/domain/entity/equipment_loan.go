package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus estados de un préstamo de equipo.
type LoanStatus string

const (
	LoanActivo   LoanStatus = "ACTIVO"
	LoanVencido  LoanStatus = "VENCIDO"
	LoanDevuelto LoanStatus = "DEVUELTO"
	LoanRenovado LoanStatus = "RENOVADO"
	LoanPerdido  LoanStatus = "PERDIDO"
	LoanDanado   LoanStatus = "DAÑADO"
)

// IsOpen el equipo sigue prestado.
func (s LoanStatus) IsOpen() bool {
	return s == LoanActivo || s == LoanVencido
}

// EquipmentLoan préstamo de un equipo prestable a un receptor.
type EquipmentLoan struct {
	ID               string
	CompanyID        string
	Number           string
	EquipmentID      string
	Recipient        Recipient
	Quantity         decimal.Decimal
	LoanedAt         time.Time
	ExpectedReturnAt time.Time
	ReturnedAt       *time.Time
	Status           LoanStatus
	PersistedStatus  LoanStatus // cache de reportes
	RenewedFromID    string
	RenewedToID      string
	CreatedBy        string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
