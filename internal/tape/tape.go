// Package tape reads recorded event streams from CSV.
//
// Each row is one event:
//
//	seq,ts,tick,price,qty,side
//	seq,ts,place,id,kind,side,qty,price
//	seq,ts,cancel,id
//
// qty is a real quantity ("0.25"), price is in whole ticks, side is buy or
// sell, kind is limit or market. The price of a market order may be left
// empty. Blank lines and lines starting with # are skipped, as is a leading
// header row whose first field is "seq".
package tape

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"backtest_go/internal/domain"
	"backtest_go/internal/event"
	"backtest_go/pkg/quant"

	"github.com/shopspring/decimal"
)

// ParseError reports the tape line a row failed on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tape line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Read parses every row of r into pooled events. On error no events are
// returned and those already built go back to the pool.
func Read(r io.Reader) ([]event.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var events []event.Event
	fail := func(err error) ([]event.Event, error) {
		for _, ev := range events {
			event.Release(ev)
		}
		return nil, err
	}

	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return fail(&ParseError{Line: csvErr.Line, Err: csvErr.Err})
			}
			return fail(err)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(rec[0]), "seq") {
				continue
			}
		}

		ev, err := parseRecord(rec)
		if err != nil {
			return fail(&ParseError{Line: line, Err: err})
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseRecord(rec []string) (event.Event, error) {
	if len(rec) < 3 {
		return nil, fmt.Errorf("want at least 3 fields, got %d", len(rec))
	}
	seq, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("seq: %w", err)
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ts: %w", err)
	}
	base := event.BaseEvent{Seq: seq, Ts: quant.TimeStamp(ts)}

	switch typ := strings.ToLower(strings.TrimSpace(rec[2])); typ {
	case "tick":
		if len(rec) != 6 {
			return nil, fmt.Errorf("tick: want 6 fields, got %d", len(rec))
		}
		price, err := parsePrice(rec[3])
		if err != nil {
			return nil, err
		}
		qty, err := parseQty(rec[4])
		if err != nil {
			return nil, err
		}
		side, err := domain.ParseSide(rec[5])
		if err != nil {
			return nil, err
		}
		ev := event.AcquireTickEvent()
		ev.BaseEvent = base
		ev.PriceTicks = price
		ev.Qty = qty
		ev.Side = side
		return ev, nil

	case "place":
		if len(rec) != 8 {
			return nil, fmt.Errorf("place: want 8 fields, got %d", len(rec))
		}
		id, err := parseID(rec[3])
		if err != nil {
			return nil, err
		}
		kind, err := domain.ParseOrderKind(rec[4])
		if err != nil {
			return nil, err
		}
		side, err := domain.ParseSide(rec[5])
		if err != nil {
			return nil, err
		}
		qty, err := parseQty(rec[6])
		if err != nil {
			return nil, err
		}
		var price quant.PriceTicks
		if kind == domain.OrderKindLimit || strings.TrimSpace(rec[7]) != "" {
			if price, err = parsePrice(rec[7]); err != nil {
				return nil, err
			}
		}
		ev := event.AcquirePlaceOrderEvent()
		ev.BaseEvent = base
		ev.Order = domain.Order{ID: id, Kind: kind, Side: side, Qty: qty, PriceTicks: price}
		return ev, nil

	case "cancel":
		if len(rec) != 4 {
			return nil, fmt.Errorf("cancel: want 4 fields, got %d", len(rec))
		}
		id, err := parseID(rec[3])
		if err != nil {
			return nil, err
		}
		ev := event.AcquireCancelOrderEvent()
		ev.BaseEvent = base
		ev.OrderID = id
		return ev, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", typ)
	}
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id: %w", err)
	}
	return id, nil
}

func parsePrice(s string) (quant.PriceTicks, error) {
	p, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price: %w", err)
	}
	return quant.PriceTicks(p), nil
}

// parseQty goes through decimal so "0.1" scales to exactly 100000.
func parseQty(s string) (quant.Qty, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("qty: %w", err)
	}
	return quant.QtyFromDecimal(d), nil
}
