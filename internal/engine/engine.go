// Package engine is the single-instrument matching and accounting core.
//
// An Engine is driven synchronously by one caller: PlaceOrder and CancelOrder
// edit the order book, StepTick matches every active order against a new price
// observation, and Snapshot projects the account. Nothing here blocks, spawns
// goroutines, logs, or allocates after New.
//
// A nil *Engine stands for an absent handle: mutating calls return
// domain.ErrInvalidArgument and Snapshot returns the zero projection.
package engine

import (
	"fmt"

	"backtest_go/internal/domain"
	"backtest_go/pkg/quant"
)

// FillHandler observes fills as they happen. It runs inside StepTick and must
// not call StepTick or Reset on the same engine.
type FillHandler func(domain.Fill)

// Option configures an Engine at creation.
type Option func(*Engine)

// WithFillHandler registers h to receive every fill.
func WithFillHandler(h FillHandler) Option {
	return func(e *Engine) {
		e.onFill = h
	}
}

// Engine composes the configuration, order book and account of one instrument.
// Not safe for concurrent use.
type Engine struct {
	cfg    domain.Config
	book   *orderBook // nil after Release.
	acct   account
	ticks  uint64 // Tick passes since creation or Reset.
	onFill FillHandler
}

// New creates an engine from cfg. cfg is copied; later edits to it have no effect.
func New(cfg *domain.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config: %w", domain.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: *cfg}
	if e.cfg.FeeMode == "" {
		e.cfg.FeeMode = domain.FeeModeAlwaysTaker
	}
	e.book = newOrderBook(e.cfg.Capacity())
	e.acct.reset(e.cfg.InitialCash)

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Reset reinitializes all dynamic state, keeping the configuration and fill handler.
func (e *Engine) Reset() {
	if e == nil || e.book == nil {
		return
	}
	e.book.reset()
	e.acct.reset(e.cfg.InitialCash)
	e.ticks = 0
}

// Release drops the order book storage. Further mutating calls fail with
// ErrInvalidArgument and Snapshot reports zeros. Safe to call repeatedly.
func (e *Engine) Release() {
	if e == nil {
		return
	}
	e.book = nil
	e.acct = account{}
	e.ticks = 0
	e.onFill = nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() domain.Config {
	if e == nil {
		return domain.Config{}
	}
	return e.cfg
}

// PlaceOrder appends o to the book as active. On error nothing changes.
func (e *Engine) PlaceOrder(o *domain.Order) error {
	if e == nil || e.book == nil || o == nil {
		return fmt.Errorf("place order: %w", domain.ErrInvalidArgument)
	}
	if err := o.Validate(); err != nil {
		return err
	}
	if err := e.book.place(*o, e.ticks); err != nil {
		return fmt.Errorf("place order %d: %w", o.ID, err)
	}
	return nil
}

// CancelOrder deactivates the first active order with id.
func (e *Engine) CancelOrder(id uint64) error {
	if e == nil || e.book == nil {
		return fmt.Errorf("cancel order: %w", domain.ErrInvalidArgument)
	}
	if err := e.book.cancel(id); err != nil {
		return fmt.Errorf("cancel order %d: %w", id, err)
	}
	return nil
}

// StepTick processes one tick: every eligible order fills in book order, each
// fill updating the account before the next is evaluated. The book is
// compacted afterwards.
func (e *Engine) StepTick(t *domain.TickEvent) error {
	if e == nil || e.book == nil || t == nil {
		return fmt.Errorf("step tick: %w", domain.ErrInvalidArgument)
	}

	e.ticks++
	e.acct.ts = t.Ts
	e.acct.lastPrice = t.PriceTicks

	// The range length is fixed here, so orders placed by a fill handler wait
	// for the next tick.
	entries := e.book.entries
	for i := range entries {
		entry := &entries[i]
		if !entry.active || !eligible(&entry.order, t.PriceTicks) {
			continue
		}

		price := applySpread(referencePrice(&entry.order, t.PriceTicks), entry.order.Side, e.cfg.SpreadBps)
		fill := e.acct.apply(&e.cfg, &entry.order, price, e.isMaker(entry))
		e.book.deactivate(entry)

		if e.onFill != nil {
			fill.Ts = t.Ts
			e.onFill(fill)
		}
	}

	e.book.compact()
	return nil
}

// isMaker applies the configured fee mode. Under resting_maker a limit order
// that survived a full tick pass before this one provided liquidity.
func (e *Engine) isMaker(entry *bookEntry) bool {
	if e.cfg.FeeMode != domain.FeeModeRestingMaker {
		return false
	}
	return entry.order.Kind == domain.OrderKindLimit && e.ticks > entry.placedAt+1
}

// OpenOrders returns the number of active orders.
func (e *Engine) OpenOrders() int {
	if e == nil || e.book == nil {
		return 0
	}
	return e.book.active
}

// OpenOrderIDs returns active order ids in fill-priority order.
func (e *Engine) OpenOrderIDs() []uint64 {
	if e == nil || e.book == nil {
		return nil
	}
	return e.book.ids()
}

// LastPrice returns the last observed tick price.
func (e *Engine) LastPrice() quant.PriceTicks {
	if e == nil {
		return 0
	}
	return e.acct.lastPrice
}

// Snapshot projects the current account. Unrealized PnL is recomputed from the
// last tick price.
func (e *Engine) Snapshot() domain.Snapshot {
	if e == nil || e.book == nil {
		return domain.Snapshot{}
	}
	u := e.acct.unrealized(e.cfg.TickSize)
	return domain.Snapshot{
		Ts:            e.acct.ts,
		Cash:          e.acct.cash,
		Position:      e.acct.position,
		AvgEntryPrice: e.acct.avgEntry,
		RealizedPnL:   e.acct.realized,
		UnrealizedPnL: u,
		Equity:        e.acct.cash + u,
	}
}
