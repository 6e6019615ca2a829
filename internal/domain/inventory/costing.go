package inventory

import (
	"errors"
	"fmt"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrLotsExhausted los lotes abiertos no cubren la salida solicitada.
var ErrLotsExhausted = errors.New("lotes FIFO insuficientes para la salida")

// Inbound entrada a valorizar (recepción, ajuste positivo, saldo inicial o contra-asiento de una salida).
type Inbound struct {
	Quantity decimal.Decimal // positiva
	UnitCost decimal.Decimal
	// TotalCost importe exacto a usar en lugar de Quantity*UnitCost (destino de traspaso, contra-asiento).
	TotalCost *decimal.Decimal
}

// Outbound salida a valorizar.
type Outbound struct {
	Quantity decimal.Decimal // positiva
	// Lots lotes abiertos del saldo, del más antiguo al más reciente (solo FIFO).
	Lots []*entity.CostLot
	// AllowNegative la parte no cubierta se valoriza en lugar de rechazarse (ajuste forzado).
	AllowNegative bool
	// Fixed contra-asiento de una entrada: mismo costo unitario y total exacto.
	Fixed *FixedCost
}

// FixedCost costo impuesto por el asiento original que se revierte.
type FixedCost struct {
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal // magnitud
}

// LotConsumption porción de un lote consumida por una salida.
type LotConsumption struct {
	Lot      *entity.CostLot
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// Valuation resultado de valorizar una entrada o salida contra el saldo bloqueado.
type Valuation struct {
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal // magnitud, 2 decimales
	Average   decimal.Decimal // nuevo costo promedio del saldo
	// Consumed lotes tocados por una salida FIFO.
	Consumed []LotConsumption
	// Uncovered cantidad sin lote que la respalde (solo con AllowNegative).
	Uncovered decimal.Decimal
	// LotQuantity cantidad del nuevo lote que abre una entrada FIFO (cero si solo cubre déficit).
	LotQuantity decimal.Decimal
}

// CostingEngine calcula costo unitario y valorización según el método de la empresa.
// Opera sobre el saldo ya bloqueado; no modifica sus argumentos.
type CostingEngine interface {
	Method() entity.ValuationMethod
	Inbound(bal *entity.StockBalance, in Inbound) Valuation
	Outbound(bal *entity.StockBalance, out Outbound) (Valuation, error)
}

// NewCostingEngine devuelve la estrategia del método de valorización.
func NewCostingEngine(method entity.ValuationMethod) (CostingEngine, error) {
	switch method {
	case entity.ValuationWeightedAverage:
		return WeightedAverage{}, nil
	case entity.ValuationFIFO:
		return FIFO{}, nil
	}
	return nil, fmt.Errorf("método de valorización desconocido: %q", method)
}

// WeightedAverage costo promedio ponderado.
type WeightedAverage struct{}

// Method implementa CostingEngine.
func (WeightedAverage) Method() entity.ValuationMethod { return entity.ValuationWeightedAverage }

// Inbound recalcula el promedio con CostCalculator.
func (WeightedAverage) Inbound(bal *entity.StockBalance, in Inbound) Valuation {
	unit := RoundUnit(in.UnitCost)
	total := LineTotal(in.Quantity, unit)
	if in.TotalCost != nil {
		total = RoundTotal(*in.TotalCost)
	}
	return Valuation{
		UnitCost:  unit,
		TotalCost: total,
		Average:   CostCalculator(bal.Quantity, bal.AverageCost, in.Quantity, unit),
	}
}

// Outbound salida al promedio vigente; el promedio no cambia salvo en contra-asientos de entradas.
func (WeightedAverage) Outbound(bal *entity.StockBalance, out Outbound) (Valuation, error) {
	if out.Fixed != nil {
		return Valuation{
			UnitCost:  out.Fixed.UnitCost,
			TotalCost: RoundTotal(out.Fixed.TotalCost),
			Average:   ReverseReceiptAverage(bal.Quantity, bal.AverageCost, out.Quantity, out.Fixed.UnitCost),
		}, nil
	}
	unit := bal.AverageCost
	total := LineTotal(out.Quantity, unit)
	// La salida que agota el saldo se lleva la valorización acumulada completa.
	if bal.Quantity.Equal(out.Quantity) && bal.TotalCost.IsPositive() {
		total = bal.TotalCost
	}
	v := Valuation{UnitCost: unit, TotalCost: total, Average: bal.AverageCost}
	if out.Quantity.GreaterThan(bal.Quantity) {
		v.Uncovered = out.Quantity.Sub(decimal.Max(bal.Quantity, decimal.Zero))
	}
	return v, nil
}
