// Package quant holds the fixed-point primitives shared by the engine and its drivers.
// Quantities are scaled integers; prices are whole ticks; rates are basis points.
package quant

import "github.com/shopspring/decimal"

// QtyScale is the fixed-point factor for quantities: 1 real unit = 1,000,000 Qty.
const QtyScale = 1_000_000

// Qty is a scaled quantity. Positive means long for positions.
type Qty int64

// PriceTicks is an unscaled price expressed in whole ticks.
type PriceTicks int64

// TimeStamp is Unix milliseconds.
type TimeStamp int64

// Bps is a rate in basis points (1 bp = 0.01%).
type Bps float64

// Float returns the descaled real quantity.
func (q Qty) Float() float64 {
	return float64(q) / QtyScale
}

// Abs returns the magnitude of q.
func (q Qty) Abs() Qty {
	if q < 0 {
		return -q
	}
	return q
}

// Decimal returns the descaled quantity without binary rounding.
func (q Qty) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -6)
}

// QtyFromDecimal scales a real quantity, truncating anything finer than 1e-6.
func QtyFromDecimal(d decimal.Decimal) Qty {
	return Qty(d.Shift(6).Truncate(0).IntPart())
}

// QtyFromFloat scales a real quantity. The float is routed through its shortest
// decimal form so 0.1 becomes exactly 100000.
func QtyFromFloat(f float64) Qty {
	return QtyFromDecimal(decimal.NewFromFloat(f))
}

// Apply returns v * b / 10000. The multiplication happens first to keep whole-bp
// rates on whole values exact.
func (b Bps) Apply(v float64) float64 {
	return v * float64(b) / 10000
}
