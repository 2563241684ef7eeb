package engine

import (
	"errors"
	"slices"
	"testing"

	"backtest_go/internal/domain"
	"backtest_go/pkg/quant"

	"pgregory.net/rapid"
)

func TestProperty_CapacityNeverExceeded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 32).Draw(t, "capacity")
		cfg := domain.Config{InitialCash: 1e6, TickSize: 1, BookCapacity: capacity}
		e, err := New(&cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		nextID := uint64(1)
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				o := &domain.Order{
					ID:         nextID,
					Kind:       domain.OrderKind(rapid.IntRange(0, 1).Draw(t, "kind")),
					Side:       domain.Side(rapid.IntRange(0, 1).Draw(t, "side")),
					Qty:        quant.Qty(rapid.Int64Range(1, 5_000_000).Draw(t, "qty")),
					PriceTicks: quant.PriceTicks(rapid.Int64Range(50, 150).Draw(t, "limit")),
				}
				nextID++
				before := e.OpenOrderIDs()
				if err := e.PlaceOrder(o); errors.Is(err, domain.ErrBookFull) {
					if !slices.Equal(before, e.OpenOrderIDs()) {
						t.Fatalf("BookFull mutated the book")
					}
				} else if err != nil {
					t.Fatalf("PlaceOrder: %v", err)
				}
			case 1:
				if nextID > 1 {
					_ = e.CancelOrder(rapid.Uint64Range(1, nextID-1).Draw(t, "cancel"))
				}
			case 2:
				price := quant.PriceTicks(rapid.Int64Range(50, 150).Draw(t, "price"))
				if err := e.StepTick(&domain.TickEvent{Ts: quant.TimeStamp(i), PriceTicks: price}); err != nil {
					t.Fatalf("StepTick: %v", err)
				}
			}

			if e.OpenOrders() > capacity || len(e.book.entries) > capacity {
				t.Fatalf("book holds %d active / %d slots, capacity %d", e.OpenOrders(), len(e.book.entries), capacity)
			}
		}
	})
}

func TestProperty_FullBookRejectsNextPlacement(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		cfg := domain.Config{InitialCash: 1e6, TickSize: 1, BookCapacity: capacity}
		e, _ := New(&cfg)

		for id := 1; id <= capacity; id++ {
			if err := e.PlaceOrder(&domain.Order{ID: uint64(id), Kind: domain.OrderKindLimit, Side: domain.SideBuy, Qty: 1, PriceTicks: 1}); err != nil {
				t.Fatalf("PlaceOrder(%d): %v", id, err)
			}
		}
		before := e.OpenOrderIDs()
		err := e.PlaceOrder(&domain.Order{ID: 0, Kind: domain.OrderKindMarket, Side: domain.SideSell, Qty: 1})
		if !errors.Is(err, domain.ErrBookFull) {
			t.Fatalf("placement %d = %v, want ErrBookFull", capacity+1, err)
		}
		if !slices.Equal(before, e.OpenOrderIDs()) {
			t.Fatalf("book changed on BookFull")
		}
	})
}

func TestProperty_SpreadDirection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := quant.PriceTicks(rapid.Int64Range(1, 1_000_000_000).Draw(t, "price"))
		spread := quant.Bps(rapid.Float64Range(0.0001, 10000).Draw(t, "spread"))

		buy := applySpread(p, domain.SideBuy, spread)
		sell := applySpread(p, domain.SideSell, spread)
		if buy <= p {
			t.Fatalf("buy fill %d not above %d (spread %v)", buy, p, spread)
		}
		if sell >= p {
			t.Fatalf("sell fill %d not below %d (spread %v)", sell, p, spread)
		}
		if buy-p != p-sell {
			t.Fatalf("asymmetric spread: +%d / -%d", buy-p, p-sell)
		}
	})
}

func TestProperty_FeeMonotonicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		price := quant.PriceTicks(rapid.Int64Range(1, 100_000).Draw(t, "price"))
		qty := quant.Qty(rapid.Int64Range(1, 100).Draw(t, "units")) * one
		low := rapid.IntRange(0, 999).Draw(t, "low")
		high := rapid.IntRange(low+1, 1000).Draw(t, "high")

		cashAfter := func(rate int, side domain.Side) float64 {
			cfg := domain.Config{TakerFeeBps: quant.Bps(rate), InitialCash: 1e6, TickSize: 1}
			e, _ := New(&cfg)
			_ = e.PlaceOrder(&domain.Order{ID: 1, Kind: domain.OrderKindMarket, Side: side, Qty: qty})
			_ = e.StepTick(&domain.TickEvent{Ts: 1, PriceTicks: price})
			return e.Snapshot().Cash
		}

		if !(cashAfter(high, domain.SideBuy) < cashAfter(low, domain.SideBuy)) {
			t.Fatalf("buy: higher taker rate %d did not reduce cash vs %d", high, low)
		}
		if !(cashAfter(high, domain.SideSell) < cashAfter(low, domain.SideSell)) {
			t.Fatalf("sell: higher taker rate %d did not reduce proceeds vs %d", high, low)
		}
	})
}

func TestProperty_FlatRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := domain.Config{
			TakerFeeBps: quant.Bps(rapid.Float64Range(0, 50).Draw(t, "fee")),
			SpreadBps:   quant.Bps(rapid.Float64Range(0, 50).Draw(t, "spread")),
			InitialCash: 1e6,
			TickSize:    rapid.SampledFrom([]float64{0.01, 0.5, 1, 10}).Draw(t, "tickSize"),
		}
		e, _ := New(&cfg)
		q := quant.Qty(rapid.Int64Range(1, 1_000_000_000).Draw(t, "qty"))
		first := rapid.SampledFrom([]domain.Side{domain.SideBuy, domain.SideSell}).Draw(t, "first")
		second := domain.SideSell
		if first == domain.SideSell {
			second = domain.SideBuy
		}

		_ = e.PlaceOrder(&domain.Order{ID: 1, Kind: domain.OrderKindMarket, Side: first, Qty: q})
		_ = e.StepTick(&domain.TickEvent{Ts: 1, PriceTicks: quant.PriceTicks(rapid.Int64Range(1, 100_000).Draw(t, "p1"))})
		_ = e.PlaceOrder(&domain.Order{ID: 2, Kind: domain.OrderKindMarket, Side: second, Qty: q})
		_ = e.StepTick(&domain.TickEvent{Ts: 2, PriceTicks: quant.PriceTicks(rapid.Int64Range(1, 100_000).Draw(t, "p2"))})

		snap := e.Snapshot()
		if snap.Position != 0 || snap.AvgEntryPrice != 0 || snap.UnrealizedPnL != 0 {
			t.Fatalf("not flat after round trip: %+v", snap)
		}
	})
}

func TestProperty_EquityIsCashPlusUnrealized(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := domain.Config{TakerFeeBps: 2, SpreadBps: 1, InitialCash: 1e5, TickSize: 0.25}
		e, _ := New(&cfg)

		n := rapid.IntRange(1, 30).Draw(t, "n")
		for i := 0; i < n; i++ {
			side := domain.Side(rapid.IntRange(0, 1).Draw(t, "side"))
			qty := quant.Qty(rapid.Int64Range(1, 3_000_000).Draw(t, "qty"))
			_ = e.PlaceOrder(&domain.Order{ID: uint64(i), Kind: domain.OrderKindMarket, Side: side, Qty: qty})
			_ = e.StepTick(&domain.TickEvent{Ts: quant.TimeStamp(i), PriceTicks: quant.PriceTicks(rapid.Int64Range(900, 1100).Draw(t, "price"))})

			snap := e.Snapshot()
			if snap.Equity != snap.Cash+snap.UnrealizedPnL {
				t.Fatalf("equity %v != cash %v + unrealized %v", snap.Equity, snap.Cash, snap.UnrealizedPnL)
			}
			if snap.Position == 0 && snap.AvgEntryPrice != 0 {
				t.Fatalf("flat with avg entry %v", snap.AvgEntryPrice)
			}
		}
	})
}
