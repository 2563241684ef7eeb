package event

import (
	"backtest_go/internal/domain"
	"backtest_go/pkg/quant"
)

// Type identifies the concrete event.
type Type uint8

const (
	TypeTick Type = iota + 1
	TypePlaceOrder
	TypeCancelOrder
)

// String returns the string representation of Type
func (t Type) String() string {
	switch t {
	case TypeTick:
		return "TICK"
	case TypePlaceOrder:
		return "PLACE_ORDER"
	case TypeCancelOrder:
		return "CANCEL_ORDER"
	default:
		return "UNKNOWN"
	}
}

// Event is one sequenced input to the engine.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
}

// BaseEvent carries the sequence number and timestamp shared by all events.
type BaseEvent struct {
	Seq uint64
	Ts  quant.TimeStamp
}

func (e *BaseEvent) GetSeq() uint64         { return e.Seq }
func (e *BaseEvent) GetTs() quant.TimeStamp { return e.Ts }

// TickEvent is a market price observation.
type TickEvent struct {
	BaseEvent
	PriceTicks quant.PriceTicks
	Qty        quant.Qty
	Side       domain.Side
}

func (e *TickEvent) GetType() Type { return TypeTick }

// Tick converts the event to the engine's tick payload.
func (e *TickEvent) Tick() domain.TickEvent {
	return domain.TickEvent{
		Ts:         e.Ts,
		PriceTicks: e.PriceTicks,
		Qty:        e.Qty,
		Side:       e.Side,
	}
}

// PlaceOrderEvent submits an order.
type PlaceOrderEvent struct {
	BaseEvent
	Order domain.Order
}

func (e *PlaceOrderEvent) GetType() Type { return TypePlaceOrder }

// CancelOrderEvent cancels an active order by id.
type CancelOrderEvent struct {
	BaseEvent
	OrderID uint64
}

func (e *CancelOrderEvent) GetType() Type { return TypeCancelOrder }
