package inventory

import (
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// FIFO primeras entradas, primeras salidas (PEPS) sobre la cola de lotes abiertos.
type FIFO struct{}

// Method implementa CostingEngine.
func (FIFO) Method() entity.ValuationMethod { return entity.ValuationFIFO }

// Inbound abre un lote por la cantidad que excede el déficit del saldo (si lo hay).
func (FIFO) Inbound(bal *entity.StockBalance, in Inbound) Valuation {
	unit := RoundUnit(in.UnitCost)
	total := LineTotal(in.Quantity, unit)
	if in.TotalCost != nil {
		total = RoundTotal(*in.TotalCost)
	}
	lotQty := in.Quantity
	if bal.Quantity.IsNegative() {
		lotQty = decimal.Max(in.Quantity.Add(bal.Quantity), decimal.Zero)
	}
	return Valuation{
		UnitCost:    unit,
		TotalCost:   total,
		Average:     averageAfter(bal, in.Quantity, total, unit),
		LotQuantity: lotQty,
	}
}

// Outbound consume lotes del más antiguo al más reciente, partiendo el último si sobra.
// Costo unitario = valor consumido / cantidad (4 decimales); total = Σ cantLote*costoLote (2 decimales).
func (FIFO) Outbound(bal *entity.StockBalance, out Outbound) (Valuation, error) {
	need := out.Quantity
	value := decimal.Zero
	var consumed []LotConsumption
	var lastCost *decimal.Decimal
	for _, lot := range out.Lots {
		if !need.IsPositive() {
			break
		}
		if !lot.IsOpen() {
			continue
		}
		take := decimal.Min(lot.RemainingQuantity, need)
		consumed = append(consumed, LotConsumption{Lot: lot, Quantity: take, UnitCost: lot.UnitCost})
		value = value.Add(take.Mul(lot.UnitCost))
		c := lot.UnitCost
		lastCost = &c
		need = need.Sub(take)
	}

	if out.Fixed != nil {
		if need.IsPositive() {
			return Valuation{}, ErrLotsExhausted
		}
		total := RoundTotal(out.Fixed.TotalCost)
		return Valuation{
			UnitCost:  out.Fixed.UnitCost,
			TotalCost: total,
			Average:   averageAfter(bal, out.Quantity.Neg(), total.Neg(), bal.AverageCost),
			Consumed:  consumed,
		}, nil
	}

	uncovered := decimal.Zero
	if need.IsPositive() {
		if !out.AllowNegative {
			return Valuation{}, ErrLotsExhausted
		}
		price := bal.AverageCost
		if lastCost != nil {
			price = *lastCost
		}
		value = value.Add(need.Mul(price))
		uncovered = need
	}

	total := RoundTotal(value)
	unit := RoundUnit(value.Div(out.Quantity))
	return Valuation{
		UnitCost:  unit,
		TotalCost: total,
		Average:   averageAfter(bal, out.Quantity.Neg(), total.Neg(), unit),
		Consumed:  consumed,
		Uncovered: uncovered,
	}, nil
}

// averageAfter promedio informativo del saldo FIFO: valorización / cantidad cuando queda existencia.
func averageAfter(bal *entity.StockBalance, deltaQty, deltaTotal, fallback decimal.Decimal) decimal.Decimal {
	qty := bal.Quantity.Add(deltaQty)
	if !qty.IsPositive() {
		if bal.AverageCost.IsZero() {
			return fallback
		}
		return bal.AverageCost
	}
	return RoundUnit(bal.TotalCost.Add(deltaTotal).Div(qty))
}
