package engine

import (
	"testing"

	"backtest_go/internal/domain"
	"backtest_go/pkg/quant"
)

// BenchmarkEngine_StepTickRestingBook measures a tick pass over a full book
// where nothing fills. This is the per-tick floor for long sweeps.
func BenchmarkEngine_StepTickRestingBook(b *testing.B) {
	cfg := domain.Config{TakerFeeBps: 2, SpreadBps: 1, InitialCash: 1e6, TickSize: 0.01}
	e, _ := New(&cfg)
	for id := uint64(1); id <= domain.DefaultBookCapacity; id++ {
		_ = e.PlaceOrder(&domain.Order{ID: id, Kind: domain.OrderKindLimit, Side: domain.SideBuy, Qty: 1_000_000, PriceTicks: 1})
	}
	tick := domain.TickEvent{PriceTicks: 50_000}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		tick.Ts = quant.TimeStamp(i)
		_ = e.StepTick(&tick)
	}
}

// BenchmarkEngine_PlaceAndFill measures the place -> fill -> compact cycle.
// Verifies the book never allocates in the hotpath.
func BenchmarkEngine_PlaceAndFill(b *testing.B) {
	cfg := domain.Config{TakerFeeBps: 2, SpreadBps: 1, InitialCash: 1e9, TickSize: 0.01}
	e, _ := New(&cfg)
	buy := domain.Order{ID: 1, Kind: domain.OrderKindMarket, Side: domain.SideBuy, Qty: 100_000}
	sell := domain.Order{ID: 2, Kind: domain.OrderKindMarket, Side: domain.SideSell, Qty: 100_000}
	tick := domain.TickEvent{PriceTicks: 50_000}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			_ = e.PlaceOrder(&buy)
		} else {
			_ = e.PlaceOrder(&sell)
		}
		tick.Ts = quant.TimeStamp(i)
		tick.PriceTicks = quant.PriceTicks(50_000 + i%100)
		_ = e.StepTick(&tick)
	}
}
