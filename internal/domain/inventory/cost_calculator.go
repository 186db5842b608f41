package inventory

import "github.com/shopspring/decimal"

// RoundTo2 redondea a 2 decimales, mitad lejos de cero. Se aplica tras cada cálculo monetario,
// nunca sobre intermedios sin redondear. Con aritmética decimal exacta no hace falta el épsilon
// que usaba el cálculo en coma flotante.
func RoundTo2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// ClosingBalance saldo final = inicial + comprado - usado, redondeado a 2 decimales.
func ClosingBalance(opening, purchased, used decimal.Decimal) decimal.Decimal {
	return RoundTo2(opening.Add(purchased).Sub(used))
}

// NewWeightedAverage implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// El numerador no se redondea: solo el cociente final va a 2 decimales.
// Devuelve cero si StockActual + CantEntrada <= 0.
func NewWeightedAverage(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return RoundTo2(num.Div(sum))
}

// MovementValue valor de un movimiento: cantidad * costo unitario, 2 decimales.
func MovementValue(quantity, unitCost decimal.Decimal) decimal.Decimal {
	return RoundTo2(quantity.Mul(unitCost))
}

// QuantityScale decimales admitidos en una cantidad (NUMERIC(18,4) en la base).
const QuantityScale = 4

// ValidQuantity cantidad positiva representable sin pérdida con QuantityScale decimales.
func ValidQuantity(q decimal.Decimal) bool {
	return q.IsPositive() && q.Equal(q.Truncate(QuantityScale))
}
