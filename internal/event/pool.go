package event

import (
	"sync"
)

// EventPool provides sync.Pool for high-frequency event allocation.
// Use this to reduce GC pressure when replaying long tapes.
//
// Usage:
//
//	ev := AcquireTickEvent()
//	ev.PriceTicks = 50000
//	// ... apply event ...
//	Release(ev)  // Return to pool after processing
var tickPool = sync.Pool{
	New: func() interface{} {
		return &TickEvent{}
	},
}

// AcquireTickEvent gets a TickEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireTickEvent() *TickEvent {
	return tickPool.Get().(*TickEvent)
}

// ReleaseTickEvent returns a TickEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseTickEvent(ev *TickEvent) {
	if ev == nil {
		return
	}
	*ev = TickEvent{}
	tickPool.Put(ev)
}

// PlaceOrderEvent pool
var placePool = sync.Pool{
	New: func() interface{} {
		return &PlaceOrderEvent{}
	},
}

// AcquirePlaceOrderEvent gets a PlaceOrderEvent from the pool.
func AcquirePlaceOrderEvent() *PlaceOrderEvent {
	return placePool.Get().(*PlaceOrderEvent)
}

// ReleasePlaceOrderEvent returns a PlaceOrderEvent to the pool.
func ReleasePlaceOrderEvent(ev *PlaceOrderEvent) {
	if ev == nil {
		return
	}
	*ev = PlaceOrderEvent{}
	placePool.Put(ev)
}

// CancelOrderEvent pool
var cancelPool = sync.Pool{
	New: func() interface{} {
		return &CancelOrderEvent{}
	},
}

// AcquireCancelOrderEvent gets a CancelOrderEvent from the pool.
func AcquireCancelOrderEvent() *CancelOrderEvent {
	return cancelPool.Get().(*CancelOrderEvent)
}

// ReleaseCancelOrderEvent returns a CancelOrderEvent to the pool.
func ReleaseCancelOrderEvent(ev *CancelOrderEvent) {
	if ev == nil {
		return
	}
	*ev = CancelOrderEvent{}
	cancelPool.Put(ev)
}

// Release returns any pooled event to its pool. Unknown types are ignored.
func Release(ev Event) {
	switch e := ev.(type) {
	case *TickEvent:
		ReleaseTickEvent(e)
	case *PlaceOrderEvent:
		ReleasePlaceOrderEvent(e)
	case *CancelOrderEvent:
		ReleaseCancelOrderEvent(e)
	}
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
// It acquires and releases a batch of events.
func Warmup() {
	const batchSize = 1000

	// Warmup Tick Events
	ticks := make([]*TickEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		ticks = append(ticks, AcquireTickEvent())
	}
	for _, ev := range ticks {
		ReleaseTickEvent(ev)
	}

	// Warmup PlaceOrder Events
	places := make([]*PlaceOrderEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		places = append(places, AcquirePlaceOrderEvent())
	}
	for _, ev := range places {
		ReleasePlaceOrderEvent(ev)
	}
}
