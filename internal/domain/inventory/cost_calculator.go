package inventory

import "github.com/shopspring/decimal"

// Escalas de redondeo del libro de valorización.
const (
	UnitCostScale int32 = 4
	TotalScale    int32 = 2
)

// RoundUnit redondea un costo unitario a 4 decimales.
func RoundUnit(d decimal.Decimal) decimal.Decimal { return d.Round(UnitCostScale) }

// RoundTotal redondea un importe a 2 decimales.
func RoundTotal(d decimal.Decimal) decimal.Decimal { return d.Round(TotalScale) }

// LineTotal importe de qty * unitCost redondeado a 2 decimales.
func LineTotal(qty, unitCost decimal.Decimal) decimal.Decimal {
	return RoundTotal(qty.Mul(unitCost))
}

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con saldo previo cero o negativo (ajuste forzado) el promedio pasa a ser el costo de la entrada.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if !stockActual.IsPositive() || sum.LessThanOrEqual(decimal.Zero) {
		return RoundUnit(costoEntrada)
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return RoundUnit(num.Div(sum))
}

// ReverseReceiptAverage promedio tras retirar una entrada previamente promediada (contra-asiento).
// (StockActual * CostoActual - Cant * Costo) / (StockActual - Cant); si el resultado no es
// positivo o el saldo queda en cero, se conserva el promedio actual.
func ReverseReceiptAverage(stockActual, costoActual, cant, costo decimal.Decimal) decimal.Decimal {
	rest := stockActual.Sub(cant)
	if rest.LessThanOrEqual(decimal.Zero) {
		return costoActual
	}
	num := stockActual.Mul(costoActual).Sub(cant.Mul(costo))
	if !num.IsPositive() {
		return costoActual
	}
	return RoundUnit(num.Div(rest))
}
