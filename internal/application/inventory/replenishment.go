package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// idealFactor stock ideal = mínimo × 1.5.
var idealFactor = decimal.RequireFromString("1.5")

// ReplenishmentSuggestion producto bajo su stock mínimo con la cantidad sugerida de reposición.
type ReplenishmentSuggestion struct {
	ProductID     string
	SKU           string
	ProductName   string
	CurrentStock  decimal.Decimal
	MinimumStock  decimal.Decimal
	IdealStock    decimal.Decimal
	SuggestedQty  decimal.Decimal
	AverageCost   decimal.Decimal
	EstimatedCost decimal.Decimal
	Priority      int // 1 = más urgente
}

// Replenishment lista de reposición de una bodega: productos bajo mínimo ordenados por déficit relativo.
// Un usuario restringido a una bodega consulta la suya si no indica otra.
func (s *QueryService) Replenishment(ctx context.Context, tenant domain.TenantContext, warehouseID string) ([]ReplenishmentSuggestion, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if warehouseID == "" && tenant.Restricted() {
		warehouseID = tenant.WarehouseID
	}
	repos := s.store.Repos()
	if err := s.checkWarehouse(ctx, repos, tenant, warehouseID); err != nil {
		return nil, err
	}
	products, err := repos.Products.ListWithMinimum(ctx, tenant.CompanyID)
	if err != nil {
		return nil, err
	}

	out := make([]ReplenishmentSuggestion, 0, len(products))
	for _, p := range products {
		key := entity.BalanceKey{CompanyID: tenant.CompanyID, ProductID: p.ID, WarehouseID: warehouseID}
		bal, ok := s.cache.Get(ctx, key)
		if !ok {
			if bal, err = repos.Balances.Get(ctx, key); err != nil {
				return nil, err
			}
			s.cache.Set(ctx, bal)
		}
		if !bal.Quantity.LessThan(p.MinimumStock) {
			continue
		}
		ideal := p.MinimumStock.Mul(idealFactor)
		suggested := ideal.Sub(bal.Quantity)
		out = append(out, ReplenishmentSuggestion{
			ProductID:     p.ID,
			SKU:           p.SKU,
			ProductName:   p.Name,
			CurrentStock:  bal.Quantity,
			MinimumStock:  p.MinimumStock,
			IdealStock:    ideal,
			SuggestedQty:  suggested,
			AverageCost:   bal.AverageCost,
			EstimatedCost: suggested.Mul(bal.AverageCost).Round(2),
		})
	}

	// Mayor déficit relativo primero; luego mayor déficit absoluto; luego SKU.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		defA, defB := a.MinimumStock.Sub(a.CurrentStock), b.MinimumStock.Sub(b.CurrentStock)
		relA, relB := defA.Div(a.MinimumStock), defB.Div(b.MinimumStock)
		if !relA.Equal(relB) {
			return relA.GreaterThan(relB)
		}
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.SKU < b.SKU
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
