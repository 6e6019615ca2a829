package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrIllegalTransition    = errors.New("transición de estado no permitida")
	ErrCrossTenantReference = errors.New("referencia a un recurso de otra empresa")
	ErrConcurrencyConflict  = errors.New("conflicto de concurrencia, reintente la operación")
	// ErrDuplicateNumber lo reintenta el secuenciador; no debe llegar al usuario.
	ErrDuplicateNumber = errors.New("número de documento duplicado")
)

// ValidationError entrada mal formada; no produce efectos.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError lleva el contexto necesario para un mensaje preciso al usuario.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

// Missing cantidad que falta para cubrir la solicitud.
func (e *InsufficientStockError) Missing() decimal.Decimal {
	missing := e.Requested.Sub(e.Available)
	if missing.IsNegative() {
		return decimal.Zero
	}
	return missing
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: producto %s en bodega %s, disponible %s, solicitado %s, faltan %s",
		ErrInsufficientStock.Error(), e.ProductID, e.WarehouseID,
		e.Available.String(), e.Requested.String(), e.Missing().String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// IllegalTransitionError el documento no está en un estado que permita la transición.
type IllegalTransitionError struct {
	Family     string
	Transition string
	Current    string
	Allowed    []string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s.%s desde %s (permitido desde: %s)",
		ErrIllegalTransition.Error(), e.Family, e.Transition, e.Current, strings.Join(e.Allowed, ", "))
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// CrossTenantError error de integridad: indica un bug de autorización aguas arriba.
type CrossTenantError struct {
	Entity string
	ID     string
}

func (e *CrossTenantError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrCrossTenantReference.Error(), e.Entity, e.ID)
}

func (e *CrossTenantError) Unwrap() error { return ErrCrossTenantReference }

// IsBusinessError indica si err es un rechazo de regla de negocio (se devuelve tal cual al usuario).
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrIllegalTransition)
}
