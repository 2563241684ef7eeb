package tape

import (
	"errors"
	"strings"
	"testing"

	"backtest_go/internal/domain"
	"backtest_go/internal/event"
)

const sampleTape = `seq,ts,type
# warmup
1,1000,place,1,market,buy,0.1,
2,1000,place,2,limit,sell,2.5,10100

3,2000,tick,10050,0.003,sell
4,2500,cancel,2
`

func TestRead(t *testing.T) {
	events, err := Read(strings.NewReader(sampleTape))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	defer func() {
		for _, ev := range events {
			event.Release(ev)
		}
	}()

	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	for i, ev := range events {
		if ev.GetSeq() != uint64(i+1) {
			t.Errorf("events[%d].Seq = %d, want %d", i, ev.GetSeq(), i+1)
		}
	}

	mkt, ok := events[0].(*event.PlaceOrderEvent)
	if !ok {
		t.Fatalf("events[0] is %T, want *PlaceOrderEvent", events[0])
	}
	wantMkt := domain.Order{ID: 1, Kind: domain.OrderKindMarket, Side: domain.SideBuy, Qty: 100_000}
	if mkt.Order != wantMkt || mkt.Ts != 1000 {
		t.Errorf("market order = %+v at %d, want %+v", mkt.Order, mkt.Ts, wantMkt)
	}

	lim := events[1].(*event.PlaceOrderEvent)
	wantLim := domain.Order{ID: 2, Kind: domain.OrderKindLimit, Side: domain.SideSell, Qty: 2_500_000, PriceTicks: 10100}
	if lim.Order != wantLim {
		t.Errorf("limit order = %+v, want %+v", lim.Order, wantLim)
	}

	tick, ok := events[2].(*event.TickEvent)
	if !ok {
		t.Fatalf("events[2] is %T, want *TickEvent", events[2])
	}
	if tick.PriceTicks != 10050 || tick.Qty != 3000 || tick.Side != domain.SideSell || tick.Ts != 2000 {
		t.Errorf("tick = %+v", tick)
	}

	cancel, ok := events[3].(*event.CancelOrderEvent)
	if !ok || cancel.OrderID != 2 {
		t.Errorf("events[3] = %+v, want cancel of order 2", events[3])
	}
}

func TestRead_Empty(t *testing.T) {
	events, err := Read(strings.NewReader("# nothing here\n\n"))
	if err != nil || len(events) != 0 {
		t.Errorf("Read = (%d events, %v), want none", len(events), err)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		tape string
		line int
		is   error
	}{
		{"bad side", "1,0,tick,100,1,up\n", 1, domain.ErrInvalidArgument},
		{"bad kind", "1,0,place,1,stop,buy,1,100\n", 1, domain.ErrInvalidArgument},
		{"unknown type", "1,0,tick,100,1,buy\n2,0,modify,1\n", 2, nil},
		{"bad qty", "# c\n1,0,tick,100,lots,buy\n", 2, nil},
		{"limit without price", "1,0,place,1,limit,buy,1,\n", 1, nil},
		{"short tick row", "1,0,tick,100\n", 1, nil},
		{"bad seq", "x,0,cancel,1\n", 1, nil},
		{"unterminated quote", "1,0,cancel,\"1\n", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := Read(strings.NewReader(tt.tape))
			if events != nil {
				t.Errorf("expected no events on error, got %d", len(events))
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}
