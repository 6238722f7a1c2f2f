// Package wrbuf implements the write buffer that fronts the data
// cache: a bounded FIFO of posted writes draining one entry per cycle
// to the bus, decoupling the store's commit at M from the latency of
// actually reaching memory. Entries are never merged; each one becomes
// its own bus write.
package wrbuf

import "github.com/sarchlab/rv32p/bus"

// Entry is one posted write: a word-aligned address, a 4-bit byte
// mask selecting which lanes of Data are live, and the data itself
// (spec: "Write buffer entry. {word_addr, byte_mask (4 bits), data
// (32 bits)}").
type Entry struct {
	WordAddr uint32
	ByteMask uint8
	Data     uint32
}

// Buffer is a fixed-capacity FIFO of Entry, drained in commit order.
type Buffer struct {
	entries  []Entry
	capacity int
	head     int
	count    int

	responder bus.Responder
}

// New builds a write buffer of the given depth, draining into responder.
func New(capacity int, responder bus.Responder) *Buffer {
	return &Buffer{
		entries:   make([]Entry, capacity),
		capacity:  capacity,
		responder: responder,
	}
}

// Ready reports w_rdy: whether a new entry can be enqueued this cycle.
func (b *Buffer) Ready() bool {
	return b.count < b.capacity
}

// Empty reports whether the buffer holds no posted writes, the
// condition FENCE.I's drain-and-stall waits for.
func (b *Buffer) Empty() bool {
	return b.count == 0
}

// Push enqueues a posted write. The caller must check Ready first;
// pushing onto a full buffer panics, since back-pressure is meant to
// prevent X from ever issuing one.
func (b *Buffer) Push(e Entry) {
	if !b.Ready() {
		panic("wrbuf: push onto a full buffer")
	}
	tail := (b.head + b.count) % b.capacity
	b.entries[tail] = e
	b.count++
}

// Tick drains up to one entry to the bus this cycle. It returns true
// once an entry has fully posted (bus Ack observed), freeing a slot.
func (b *Buffer) Tick() bool {
	if b.count == 0 {
		return false
	}

	e := b.entries[b.head]
	resp := b.responder.Step(bus.Transaction{
		Addr: e.WordAddr,
		Sel:  e.ByteMask,
		DatW: e.Data,
		We:   true,
		Cyc:  true,
		Stb:  true,
	})
	if !resp.Ack {
		return false
	}

	b.head = (b.head + 1) % b.capacity
	b.count--
	return true
}
