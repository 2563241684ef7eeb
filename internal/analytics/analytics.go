// Package analytics summarizes a finished replay into performance figures.
package analytics

import (
	"math"

	"backtest_go/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	// DefaultInitialEquity stands in when the first snapshot has zero equity.
	DefaultInitialEquity = 10000.0

	// MaxProfitFactor is reported when there are winning trades but no losing ones.
	MaxProfitFactor = 999.99

	tradingDaysPerYear = 252
)

// Report holds the summary figures of one run. Ratios are decimals (0.05 is 5%).
type Report struct {
	TotalReturn  float64 `json:"total_return"`
	MaxDrawdown  float64 `json:"max_drawdown"` // Zero or negative.
	Sharpe       float64 `json:"sharpe_ratio"`
	WinRate      float64 `json:"win_rate"`
	TotalTrades  int     `json:"total_trades"`
	AvgTrade     float64 `json:"avg_trade"`
	ProfitFactor float64 `json:"profit_factor"`
}

// Compute derives a Report from the per-tick snapshot history and the fills
// of a run. Only closing fills count as trades; their gross realized PnL is
// the trade result. An empty history yields the zero Report.
func Compute(history []domain.Snapshot, fills []domain.Fill) Report {
	if len(history) == 0 {
		return Report{}
	}

	initial := history[0].Equity
	if initial == 0 {
		initial = DefaultInitialEquity
	}

	var r Report
	if initial > 0 {
		r.TotalReturn = round((history[len(history)-1].Equity-initial)/initial, 4)
	}
	r.MaxDrawdown = round(maxDrawdown(history), 4)
	r.Sharpe = round(sharpe(history), 2)

	var pnls []float64
	for _, f := range fills {
		if f.Closing {
			pnls = append(pnls, f.RealizedPnL)
		}
	}
	if len(pnls) == 0 {
		return r
	}

	var wins int
	var sum, grossProfit, grossLoss float64
	for _, p := range pnls {
		sum += p
		switch {
		case p > 0:
			wins++
			grossProfit += p
		case p < 0:
			grossLoss -= p
		}
	}

	r.TotalTrades = len(pnls)
	r.WinRate = round(float64(wins)/float64(len(pnls)), 4)
	if initial > 0 {
		r.AvgTrade = round(sum/float64(len(pnls))/initial, 6)
	}
	switch {
	case grossLoss > 0:
		r.ProfitFactor = round(grossProfit/grossLoss, 2)
	case grossProfit > 0:
		r.ProfitFactor = MaxProfitFactor
	}
	return r
}

// maxDrawdown is the deepest fall from a running equity peak, as a fraction
// of that peak. Non-positive peaks are skipped.
func maxDrawdown(history []domain.Snapshot) float64 {
	peak := history[0].Equity
	var worst float64
	for _, s := range history {
		if s.Equity > peak {
			peak = s.Equity
		}
		if peak <= 0 {
			continue
		}
		if dd := (s.Equity - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

// sharpe annualizes the mean over the population standard deviation of
// snapshot-to-snapshot returns. Steps from zero equity are skipped.
func sharpe(history []domain.Snapshot) float64 {
	returns := make([]float64, 0, len(history))
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (history[i].Equity-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, x := range returns {
		mean += x
	}
	mean /= float64(len(returns))

	var variance float64
	for _, x := range returns {
		variance += (x - mean) * (x - mean)
	}
	std := math.Sqrt(variance / float64(len(returns)))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

// round rounds half away from zero to places decimals. Non-finite input gives 0.
func round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}
