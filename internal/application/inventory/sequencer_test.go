package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSequencer_Formato(t *testing.T) {
	assert.Equal(t, "OC-2026-0007", inventory.FormatNumber(inventory.PrefixPurchaseOrder, 2026, 7))
	assert.Equal(t, "VS-2026-12345", inventory.FormatNumber(inventory.PrefixExitVoucher, 2026, 12345))
}

func TestSequencer_ConcurrenteSinDuplicados(t *testing.T) {
	store := memory.New()
	seq := inventory.NewSequencer(store, nil, clock())
	tenant := domain.TenantContext{CompanyID: "c1", UserID: "u1"}

	const n = 40
	var mu sync.Mutex
	seen := make(map[string]struct{}, n)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			num, err := seq.Next(ctx, tenant, inventory.PrefixRequisition)
			if err != nil {
				return err
			}
			mu.Lock()
			seen[num] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, seen, n)
	assert.Contains(t, seen, "REQ-2026-0001")
	assert.Contains(t, seen, "REQ-2026-0040")
}

func TestSequencer_PorEmpresaYPrefijo(t *testing.T) {
	store := memory.New()
	seq := inventory.NewSequencer(store, nil, clock())
	ctx := context.Background()

	a, err := seq.Next(ctx, domain.TenantContext{CompanyID: "c1", UserID: "u"}, inventory.PrefixQuotation)
	require.NoError(t, err)
	b, err := seq.Next(ctx, domain.TenantContext{CompanyID: "c2", UserID: "u"}, inventory.PrefixQuotation)
	require.NoError(t, err)
	c, err := seq.Next(ctx, domain.TenantContext{CompanyID: "c1", UserID: "u"}, inventory.PrefixEquipmentLoan)
	require.NoError(t, err)

	assert.Equal(t, "COT-2026-0001", a)
	assert.Equal(t, "COT-2026-0001", b)
	assert.Equal(t, "PRE-2026-0001", c)
}

func TestSequencer_ReiniciaPorAnio(t *testing.T) {
	store := memory.New()
	now := time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)
	seq := inventory.NewSequencer(store, nil, func() time.Time { return now })
	tenant := domain.TenantContext{CompanyID: "c1", UserID: "u"}

	n1, err := seq.Next(context.Background(), tenant, inventory.PrefixEppAssignment)
	require.NoError(t, err)
	now = now.Add(2 * time.Hour)
	n2, err := seq.Next(context.Background(), tenant, inventory.PrefixEppAssignment)
	require.NoError(t, err)

	assert.Equal(t, "EPP-2026-0001", n1)
	assert.Equal(t, "EPP-2027-0001", n2)
}

func TestSequencer_SaltaNumerosEmitidos(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	// número emitido fuera del contador (p. ej. migración) con correlativo mayor
	require.NoError(t, store.Repos().Sequences.Reserve(ctx, "c1", "OC", 2026, 5, "OC-2026-0005"))

	seq := inventory.NewSequencer(store, nil, clock())
	n, err := seq.Next(ctx, domain.TenantContext{CompanyID: "c1", UserID: "u"}, inventory.PrefixPurchaseOrder)
	require.NoError(t, err)
	assert.Equal(t, "OC-2026-0006", n)
}

func TestSequencer_NumeroSeRevierteConLaTransaccion(t *testing.T) {
	store := memory.New()
	seq := inventory.NewSequencer(store, nil, clock())
	tenant := domain.TenantContext{CompanyID: "c1", UserID: "u"}
	ctx := context.Background()

	err := store.Run(ctx, func(repos repository.Repos) error {
		if _, err := seq.NextInTx(ctx, repos, tenant, inventory.PrefixQuotation); err != nil {
			return err
		}
		return domain.ErrInvalidInput
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := seq.Next(ctx, tenant, inventory.PrefixQuotation)
	require.NoError(t, err)
	assert.Equal(t, "COT-2026-0001", n)
}
