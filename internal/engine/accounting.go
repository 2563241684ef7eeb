package engine

import (
	"backtest_go/internal/domain"
	"backtest_go/pkg/quant"
	"backtest_go/pkg/safe"
)

// account is the mutable bookkeeping of one engine.
// Fields are ordered hot first.
type account struct {
	position  quant.Qty
	avgEntry  float64 // Ticks. Zero while flat.
	cash      float64
	realized  float64
	lastPrice quant.PriceTicks
	ts        quant.TimeStamp
}

func (a *account) reset(initialCash float64) {
	*a = account{cash: initialCash}
}

// fee returns notional * rate / 1e4.
func fee(notional float64, rate quant.Bps) float64 {
	return rate.Apply(notional)
}

// apply books one full fill of o at price and returns the resulting Fill.
// Realized PnL is gross: fees only ever touch cash.
func (a *account) apply(cfg *domain.Config, o *domain.Order, price quant.PriceTicks, maker bool) domain.Fill {
	qty := o.Qty
	notional := float64(price) * cfg.TickSize * qty.Float()

	rate := cfg.TakerFeeBps
	if maker {
		rate = cfg.MakerFeeBps
	}
	f := fee(notional, rate)

	old := a.position
	var next quant.Qty
	if o.Side == domain.SideBuy {
		next = safe.SafeAdd(old, qty)
		a.cash -= notional + f
	} else {
		next = safe.SafeSub(old, qty)
		a.cash += notional - f
	}

	fill := domain.Fill{
		OrderID:    o.ID,
		Kind:       o.Kind,
		Side:       o.Side,
		Qty:        qty,
		PriceTicks: price,
		Notional:   notional,
		Fee:        f,
		Maker:      maker,
	}

	switch {
	case old == 0:
		a.avgEntry = float64(price)

	case (old > 0) == (o.Side == domain.SideBuy):
		// Adding: weight by magnitudes so shorts average the same way longs do.
		oldAbs, nextAbs := safe.SafeAbs(old), safe.SafeAbs(next)
		a.avgEntry = (float64(oldAbs)*a.avgEntry + float64(qty)*float64(price)) / float64(nextAbs)

	default:
		closing := min(safe.SafeAbs(old), qty)
		exitValue := closing.Float() * float64(price) * cfg.TickSize
		entryValue := closing.Float() * a.avgEntry * cfg.TickSize

		pnl := exitValue - entryValue
		if old < 0 {
			pnl = entryValue - exitValue
		}
		a.realized += pnl
		fill.Closing = true
		fill.RealizedPnL = pnl

		switch {
		case next == 0:
			a.avgEntry = 0
		case (next > 0) != (old > 0):
			// Flipped: the remainder opened a new position at this price.
			a.avgEntry = float64(price)
		}
	}

	a.position = next
	return fill
}

// unrealized marks the open position to the last tick price.
func (a *account) unrealized(tickSize float64) float64 {
	if a.position == 0 {
		return 0
	}
	return a.position.Float() * (float64(a.lastPrice) - a.avgEntry) * tickSize
}
