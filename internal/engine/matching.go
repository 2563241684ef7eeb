package engine

import (
	"math"

	"backtest_go/internal/domain"
	"backtest_go/pkg/quant"
)

// eligible reports whether o fills against a tick at price p.
// Market orders always fill; limits fill once the market trades through them.
func eligible(o *domain.Order, p quant.PriceTicks) bool {
	if o.Kind == domain.OrderKindMarket {
		return true
	}
	if o.Side == domain.SideBuy {
		return p <= o.PriceTicks
	}
	return p >= o.PriceTicks
}

// referencePrice is the tick price for market orders and the limit price for limits.
func referencePrice(o *domain.Order, p quant.PriceTicks) quant.PriceTicks {
	if o.Kind == domain.OrderKindMarket {
		return p
	}
	return o.PriceTicks
}

// applySpread worsens price for the taker side: buys pay ceil(price*bps/1e4)
// ticks more, sells receive the same number of ticks less.
func applySpread(price quant.PriceTicks, side domain.Side, spread quant.Bps) quant.PriceTicks {
	ticks := quant.PriceTicks(math.Ceil(spread.Apply(float64(price))))
	if side == domain.SideBuy {
		return price + ticks
	}
	return price - ticks
}
