package repository

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos (cabecera + líneas).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Movement, error)
	// GetForUpdate bloquea la cabecera para anularla.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Movement, error)
	MarkVoided(ctx context.Context, movement *entity.Movement) error
}
