package domain

import (
	"fmt"
	"strings"

	"backtest_go/pkg/quant"
)

// Side is the direction of an order or a tick. Values match the engine wire format.
type Side uint8

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

// String returns the string representation of Side
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is BUY or SELL.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return 0, fmt.Errorf("invalid side %q: %w", s, ErrInvalidArgument)
	}
}

// OrderKind is limit or market.
type OrderKind uint8

const (
	OrderKindLimit  OrderKind = 0
	OrderKindMarket OrderKind = 1
)

// String returns the string representation of OrderKind
func (k OrderKind) String() string {
	switch k {
	case OrderKindLimit:
		return "LIMIT"
	case OrderKindMarket:
		return "MARKET"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether k is LIMIT or MARKET.
func (k OrderKind) Valid() bool {
	return k == OrderKindLimit || k == OrderKindMarket
}

// ParseOrderKind accepts "limit"/"market" in any case.
func ParseOrderKind(s string) (OrderKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LIMIT":
		return OrderKindLimit, nil
	case "MARKET":
		return OrderKindMarket, nil
	default:
		return 0, fmt.Errorf("invalid order kind %q: %w", s, ErrInvalidArgument)
	}
}

// Order is a caller-issued order. Orders are immutable once placed.
// All quantities are scaled by quant.QtyScale.
type Order struct {
	ID         uint64
	Kind       OrderKind
	Side       Side
	Qty        quant.Qty
	PriceTicks quant.PriceTicks // Limit price. Ignored for market orders.
}

// Validate checks the fields the engine relies on.
func (o *Order) Validate() error {
	if !o.Kind.Valid() {
		return fmt.Errorf("order %d: kind %d: %w", o.ID, o.Kind, ErrInvalidArgument)
	}
	if !o.Side.Valid() {
		return fmt.Errorf("order %d: side %d: %w", o.ID, o.Side, ErrInvalidArgument)
	}
	if o.Qty <= 0 {
		return fmt.Errorf("order %d: qty %d must be positive: %w", o.ID, o.Qty, ErrInvalidArgument)
	}
	return nil
}

// TickEvent is one market price observation. Qty and Side describe the printed
// trade for the data feed and are never consulted for matching.
type TickEvent struct {
	Ts         quant.TimeStamp
	PriceTicks quant.PriceTicks
	Qty        quant.Qty
	Side       Side
}
