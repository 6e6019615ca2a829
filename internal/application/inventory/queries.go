package inventory

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultKardexLimit = 50
	maxKardexLimit     = 500
)

// BalanceView saldo expuesto por GetBalance.
type BalanceView struct {
	ProductID    string
	WarehouseID  string
	Quantity     decimal.Decimal
	AverageCost  decimal.Decimal
	TotalCost    decimal.Decimal
	MinimumStock decimal.Decimal
	BelowMinimum bool
	UpdatedAt    time.Time
}

// KardexQuery filtro de GetKardex. Cursor es el valor opaco devuelto por la página anterior.
type KardexQuery struct {
	ProductID   string
	WarehouseID string
	From        *time.Time
	To          *time.Time
	Cursor      string
	Limit       int
}

// KardexPage página de asientos ordenados por (OccurredAt, Seq).
type KardexPage struct {
	Entries    []*entity.KardexEntry
	NextCursor string // vacío en la última página
}

// QueryService lecturas sin bloqueo sobre saldos y kardex.
type QueryService struct {
	store Store
	cache BalanceCache
}

// NewQueryService construye el servicio de consultas. cache puede ser nil.
func NewQueryService(store Store, cache BalanceCache) *QueryService {
	if cache == nil {
		cache = nopCache{}
	}
	return &QueryService{store: store, cache: cache}
}

// GetBalance saldo de un producto en una bodega; cero si no hay movimientos.
func (s *QueryService) GetBalance(ctx context.Context, tenant domain.TenantContext, productID, warehouseID string) (*BalanceView, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	product, err := s.ownedProduct(ctx, repos, tenant, productID)
	if err != nil {
		return nil, err
	}
	if err := s.checkWarehouse(ctx, repos, tenant, warehouseID); err != nil {
		return nil, err
	}

	key := entity.BalanceKey{CompanyID: tenant.CompanyID, ProductID: productID, WarehouseID: warehouseID}
	bal, ok := s.cache.Get(ctx, key)
	if !ok {
		bal, err = repos.Balances.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, bal)
	}
	return &BalanceView{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		Quantity:     bal.Quantity,
		AverageCost:  bal.AverageCost,
		TotalCost:    bal.TotalCost,
		MinimumStock: product.MinimumStock,
		BelowMinimum: product.MinimumStock.IsPositive() && bal.Quantity.LessThan(product.MinimumStock),
		UpdatedAt:    bal.UpdatedAt,
	}, nil
}

// GetKardex una página del kardex de la empresa.
func (s *QueryService) GetKardex(ctx context.Context, tenant domain.TenantContext, q KardexQuery) (*KardexPage, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	if q.ProductID != "" {
		if _, err := s.ownedProduct(ctx, repos, tenant, q.ProductID); err != nil {
			return nil, err
		}
	}
	warehouseID := q.WarehouseID
	if warehouseID == "" && tenant.Restricted() {
		warehouseID = tenant.WarehouseID
	}
	if warehouseID != "" {
		if err := s.checkWarehouse(ctx, repos, tenant, warehouseID); err != nil {
			return nil, err
		}
	}
	after, err := DecodeKardexCursor(q.Cursor)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultKardexLimit
	}
	if limit > maxKardexLimit {
		limit = maxKardexLimit
	}

	// Se pide uno más para saber si hay página siguiente.
	entries, err := repos.Kardex.List(ctx, repository.KardexFilter{
		CompanyID:   tenant.CompanyID,
		ProductID:   q.ProductID,
		WarehouseID: warehouseID,
		From:        q.From,
		To:          q.To,
		After:       after,
		Limit:       limit + 1,
	})
	if err != nil {
		return nil, err
	}
	page := &KardexPage{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		page.NextCursor = EncodeKardexCursor(repository.KardexCursor{OccurredAt: last.OccurredAt, Seq: last.Seq})
	}
	return page, nil
}

// NewKardexReader lector perezoso y reiniciable sobre GetKardex.
func (s *QueryService) NewKardexReader(tenant domain.TenantContext, q KardexQuery) *KardexReader {
	return &KardexReader{svc: s, tenant: tenant, query: q, start: q.Cursor, cursor: q.Cursor}
}

// KardexReader recorre el kardex por páginas. Es finito: Next devuelve done=true tras la última página.
type KardexReader struct {
	svc    *QueryService
	tenant domain.TenantContext
	query  KardexQuery
	start  string
	cursor string
	done   bool
}

// Next siguiente página; done indica que no quedan más.
func (r *KardexReader) Next(ctx context.Context) (entries []*entity.KardexEntry, done bool, err error) {
	if r.done {
		return nil, true, nil
	}
	q := r.query
	q.Cursor = r.cursor
	page, err := r.svc.GetKardex(ctx, r.tenant, q)
	if err != nil {
		return nil, false, err
	}
	r.cursor = page.NextCursor
	r.done = page.NextCursor == ""
	return page.Entries, r.done, nil
}

// Cursor posición actual, para reanudar con otro lector.
func (r *KardexReader) Cursor() string { return r.cursor }

// Reset vuelve al inicio de la lectura.
func (r *KardexReader) Reset() {
	r.cursor = r.start
	r.done = false
}

// EncodeKardexCursor serializa la posición como texto opaco.
func EncodeKardexCursor(c repository.KardexCursor) string {
	raw := strconv.FormatInt(c.OccurredAt.UnixNano(), 10) + ":" + strconv.FormatInt(c.Seq, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeKardexCursor inverso de EncodeKardexCursor; vacío = desde el inicio.
func DecodeKardexCursor(s string) (*repository.KardexCursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.NewValidationError("cursor", "cursor inválido")
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, domain.NewValidationError("cursor", "cursor inválido")
	}
	nanos, err1 := strconv.ParseInt(parts[0], 10, 64)
	seq, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return nil, domain.NewValidationError("cursor", "cursor inválido")
	}
	return &repository.KardexCursor{OccurredAt: time.Unix(0, nanos).UTC(), Seq: seq}, nil
}

func (s *QueryService) ownedProduct(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	p, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	if err := tenant.Owns("product", p.ID, p.CompanyID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *QueryService) checkWarehouse(ctx context.Context, repos repository.Repos, tenant domain.TenantContext, warehouseID string) error {
	if warehouseID == "" {
		return domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	w, err := repos.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("bodega %s: %w", warehouseID, domain.ErrNotFound)
	}
	if err := tenant.Owns("warehouse", w.ID, w.CompanyID); err != nil {
		return err
	}
	if !tenant.CanAccessWarehouse(w.ID) {
		return fmt.Errorf("%w: bodega %s fuera del alcance del usuario", domain.ErrForbidden, w.ID)
	}
	return nil
}
