package engine

import "backtest_go/internal/domain"

// bookEntry is one order slot. Cancelled and filled orders stay in their slot
// as inactive until the next compaction.
type bookEntry struct {
	order    domain.Order
	active   bool
	placedAt uint64 // Engine tick count when the order was placed.
}

// orderBook is a fixed-capacity, insertion-ordered set of orders.
// The backing array is allocated once and never grows.
type orderBook struct {
	entries []bookEntry
	active  int
}

func newOrderBook(capacity int) *orderBook {
	return &orderBook{
		entries: make([]bookEntry, 0, capacity),
	}
}

// place appends o as active. Slots held by inactive entries count against
// capacity until compaction reclaims them.
func (b *orderBook) place(o domain.Order, tick uint64) error {
	if len(b.entries) >= cap(b.entries) {
		return domain.ErrBookFull
	}
	b.entries = append(b.entries, bookEntry{order: o, active: true, placedAt: tick})
	b.active++
	return nil
}

// cancel deactivates the first active order with the given id.
func (b *orderBook) cancel(id uint64) error {
	for i := range b.entries {
		e := &b.entries[i]
		if e.active && e.order.ID == id {
			b.deactivate(e)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (b *orderBook) deactivate(e *bookEntry) {
	e.active = false
	b.active--
}

// compact drops inactive entries, shifting the active ones into a contiguous
// prefix in their original relative order.
func (b *orderBook) compact() {
	w := 0
	for r := range b.entries {
		if !b.entries[r].active {
			continue
		}
		if w != r {
			b.entries[w] = b.entries[r]
		}
		w++
	}
	clear(b.entries[w:])
	b.entries = b.entries[:w]
}

func (b *orderBook) reset() {
	clear(b.entries)
	b.entries = b.entries[:0]
	b.active = 0
}

// ids returns active order ids in book order.
func (b *orderBook) ids() []uint64 {
	out := make([]uint64, 0, b.active)
	for i := range b.entries {
		if b.entries[i].active {
			out = append(out, b.entries[i].order.ID)
		}
	}
	return out
}
