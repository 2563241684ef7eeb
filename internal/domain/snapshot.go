package domain

import "backtest_go/pkg/quant"

// Snapshot is a read-only projection of account state.
type Snapshot struct {
	Ts            quant.TimeStamp `json:"ts"`
	Cash          float64         `json:"cash"`
	Position      quant.Qty       `json:"position"`
	AvgEntryPrice float64         `json:"avg_entry_price"` // In ticks. Zero while flat.
	RealizedPnL   float64         `json:"realized_pnl"`
	UnrealizedPnL float64         `json:"unrealized_pnl"`
	Equity        float64         `json:"equity"`
}

// Fill describes one executed order.
type Fill struct {
	Ts         quant.TimeStamp
	OrderID    uint64
	Kind       OrderKind
	Side       Side
	Qty        quant.Qty
	PriceTicks quant.PriceTicks // Effective price after spread.
	Notional   float64
	Fee        float64
	Maker      bool

	// Closing is set when the fill reduced an existing position.
	// RealizedPnL is the gross PnL this fill locked in.
	Closing     bool
	RealizedPnL float64
}
