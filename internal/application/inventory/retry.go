package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
)

// RetryOnConflict ejecuta fn y, si falla por conflicto de concurrencia, la repite una vez con datos frescos.
func RetryOnConflict(ctx context.Context, log *logger.Logger, m Metrics, fn func() error) error {
	err := fn()
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	logger.FromContext(ctx, log).Warn().Err(err).Msg("conflicto de concurrencia, reintentando")
	if m != nil {
		m.ConflictRetried()
	}
	return fn()
}
