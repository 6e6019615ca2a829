package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores de numeración; LockCounter bloquea la fila del contador hasta el commit.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// LockCounter crea el contador si no existe y lo bloquea con SELECT FOR UPDATE.
func (r *SequenceRepo) LockCounter(ctx context.Context, companyID, prefix string, year int) (int64, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO number_counters (company_id, prefix, year) VALUES ($1, $2, $3)
		ON CONFLICT (company_id, prefix, year) DO NOTHING`, companyID, prefix, year); err != nil {
		return 0, wrap("ensure counter", err)
	}
	var last int64
	err := r.q.QueryRow(ctx, `
		SELECT last_value FROM number_counters
		WHERE company_id = $1 AND prefix = $2 AND year = $3 FOR UPDATE`, companyID, prefix, year).Scan(&last)
	if err != nil {
		return 0, wrap("lock counter", err)
	}
	return last, nil
}

// MaxIssued mayor correlativo registrado para (empresa, prefijo, año).
func (r *SequenceRepo) MaxIssued(ctx context.Context, companyID, prefix string, year int) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM issued_numbers
		WHERE company_id = $1 AND prefix = $2 AND year = $3`, companyID, prefix, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("max issued: %w", err)
	}
	return n, nil
}

// Exists indica si el número ya fue emitido en la empresa.
func (r *SequenceRepo) Exists(ctx context.Context, companyID, number string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM issued_numbers WHERE company_id = $1 AND number = $2)`,
		companyID, number).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("number exists: %w", err)
	}
	return ok, nil
}

// Reserve registra el número y avanza el contador. Sin fila insertada devuelve ErrDuplicateNumber.
func (r *SequenceRepo) Reserve(ctx context.Context, companyID, prefix string, year int, seq int64, number string) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO issued_numbers (company_id, number, prefix, year, seq) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, number) DO NOTHING`, companyID, number, prefix, year, seq)
	if err != nil {
		return wrap("reserve number", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateNumber
	}
	if _, err := r.q.Exec(ctx, `
		UPDATE number_counters SET last_value = GREATEST(last_value, $4)
		WHERE company_id = $1 AND prefix = $2 AND year = $3`, companyID, prefix, year, seq); err != nil {
		return wrap("advance counter", err)
	}
	return nil
}
