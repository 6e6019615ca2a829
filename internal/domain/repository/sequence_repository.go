package repository

import "context"

// SequenceRepository contadores de numeración por (empresa, prefijo, año).
type SequenceRepository interface {
	// LockCounter crea el contador si no existe, lo bloquea y devuelve su último valor.
	LockCounter(ctx context.Context, companyID, prefix string, year int) (int64, error)
	// MaxIssued mayor correlativo ya emitido para (empresa, prefijo, año).
	MaxIssued(ctx context.Context, companyID, prefix string, year int) (int64, error)
	Exists(ctx context.Context, companyID, number string) (bool, error)
	// Reserve registra el número emitido y avanza el contador; ErrDuplicateNumber si ya existía.
	Reserve(ctx context.Context, companyID, prefix string, year int, seq int64, number string) error
}
