package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"backtest_go/pkg/quant"
)

// DefaultBookCapacity is the number of order slots when Config.BookCapacity is zero.
const DefaultBookCapacity = 1024

// FeeMode selects how the maker rate is applied.
type FeeMode string

const (
	// FeeModeAlwaysTaker charges the taker rate on every fill.
	FeeModeAlwaysTaker FeeMode = "always_taker"
	// FeeModeRestingMaker charges the maker rate on limit orders that rested
	// through at least one tick without filling.
	FeeModeRestingMaker FeeMode = "resting_maker"
)

// ParseFeeMode maps "" to FeeModeAlwaysTaker.
func ParseFeeMode(s string) (FeeMode, error) {
	switch FeeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FeeModeAlwaysTaker:
		return FeeModeAlwaysTaker, nil
	case FeeModeRestingMaker:
		return FeeModeRestingMaker, nil
	default:
		return "", &ConfigError{Field: "fee_mode", Err: fmt.Errorf("unknown mode %q", s)}
	}
}

// Config is the immutable parameter set of one engine instance.
type Config struct {
	MakerFeeBps quant.Bps
	TakerFeeBps quant.Bps
	SpreadBps   quant.Bps
	InitialCash float64
	TickSize    float64 // Currency units per price tick.

	BookCapacity int     // Fixed order slots. 0 means DefaultBookCapacity.
	FeeMode      FeeMode // "" means FeeModeAlwaysTaker.
}

// Capacity returns the effective book capacity.
func (c *Config) Capacity() int {
	if c.BookCapacity == 0 {
		return DefaultBookCapacity
	}
	return c.BookCapacity
}

// Validate checks rates are non-negative and the tick size is positive.
func (c *Config) Validate() error {
	rates := []struct {
		field string
		v     quant.Bps
	}{
		{"maker_fee_bps", c.MakerFeeBps},
		{"taker_fee_bps", c.TakerFeeBps},
		{"spread_bps", c.SpreadBps},
	}
	for _, r := range rates {
		if r.v < 0 || math.IsNaN(float64(r.v)) || math.IsInf(float64(r.v), 0) {
			return &ConfigError{Field: r.field, Err: fmt.Errorf("must be a non-negative number, got %v", r.v)}
		}
	}
	if !(c.TickSize > 0) || math.IsInf(c.TickSize, 0) {
		return &ConfigError{Field: "tick_size", Err: fmt.Errorf("must be positive, got %v", c.TickSize)}
	}
	if math.IsNaN(c.InitialCash) || math.IsInf(c.InitialCash, 0) {
		return &ConfigError{Field: "initial_cash", Err: errors.New("must be finite")}
	}
	if c.BookCapacity < 0 {
		return &ConfigError{Field: "book_capacity", Err: fmt.Errorf("must not be negative, got %d", c.BookCapacity)}
	}
	if _, err := ParseFeeMode(string(c.FeeMode)); err != nil {
		return err
	}
	return nil
}
