package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

// Prefijos de numeración por familia.
const (
	PrefixQuotation     = "COT"
	PrefixPurchaseOrder = "OC"
	PrefixRequisition   = "REQ"
	PrefixExitVoucher   = "VS"
	PrefixEppAssignment = "EPP"
	PrefixEquipmentLoan = "PRE"
	PrefixMovement      = "MOV"
)

const maxReserveAttempts = 5

// FormatNumber {prefijo}-{año}-{correlativo de 4 dígitos}.
func FormatNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// Sequencer emite números de documento únicos por (empresa, prefijo, año).
type Sequencer struct {
	store   TxRunner
	metrics Metrics
	now     func() time.Time
}

// NewSequencer construye el secuenciador.
func NewSequencer(store TxRunner, metrics Metrics, now func() time.Time) *Sequencer {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if now == nil {
		now = time.Now
	}
	return &Sequencer{store: store, metrics: metrics, now: now}
}

// Next emite un número en su propia transacción.
func (s *Sequencer) Next(ctx context.Context, tenant domain.TenantContext, prefix string) (string, error) {
	var number string
	err := s.store.Run(ctx, func(repos repository.Repos) error {
		n, err := s.NextInTx(ctx, repos, tenant, prefix)
		number = n
		return err
	})
	return number, err
}

// NextInTx emite un número dentro de la transacción del llamador. Con el contador bloqueado parte de
// max(contador, mayor emitido)+1 y avanza mientras el candidato ya exista; un duplicado al reservar
// se reintenta sin llegar al llamador.
func (s *Sequencer) NextInTx(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, prefix string) (string, error) {
	if err := tenant.Validate(); err != nil {
		return "", err
	}
	if prefix == "" {
		return "", domain.NewValidationError("prefix", "es obligatorio")
	}
	year := s.now().Year()

	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		counter, err := repos.Sequences.LockCounter(ctx, tenant.CompanyID, prefix, year)
		if err != nil {
			return "", err
		}
		issued, err := repos.Sequences.MaxIssued(ctx, tenant.CompanyID, prefix, year)
		if err != nil {
			return "", err
		}
		seq := max(counter, issued) + 1
		number := FormatNumber(prefix, year, seq)
		for {
			exists, err := repos.Sequences.Exists(ctx, tenant.CompanyID, number)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
			seq++
			number = FormatNumber(prefix, year, seq)
		}

		err = repos.Sequences.Reserve(ctx, tenant.CompanyID, prefix, year, seq, number)
		if errors.Is(err, domain.ErrDuplicateNumber) {
			s.metrics.SequenceCollision()
			continue
		}
		if err != nil {
			return "", err
		}
		return number, nil
	}
	return "", fmt.Errorf("%w: no se pudo reservar número %s", domain.ErrConcurrencyConflict, prefix)
}
