package core

import "github.com/sarchlab/rv32p/bus"

// Memory is a flat word-addressed bus.Responder backing a Core's
// physical address space: single-cycle Ack on every transaction within
// range, Err outside it. It is the one Responder every Core wires a
// bus.Arbiter's ports into, whether or not a given port goes through a
// cache on the way.
type Memory struct {
	base  uint32
	words []uint32
}

// NewMemory allocates sizeBytes (rounded up to a whole word) of backing
// store starting at base.
func NewMemory(base, sizeBytes uint32) *Memory {
	n := (sizeBytes + 3) / 4
	return &Memory{base: base, words: make([]uint32, n)}
}

// Step implements bus.Responder.
func (m *Memory) Step(req bus.Transaction) bus.Transaction {
	if !req.Cyc || !req.Stb {
		return bus.Transaction{}
	}

	idx, ok := m.index(req.Addr)
	if !ok {
		return bus.Transaction{Err: true}
	}

	if !req.We {
		return bus.Transaction{Ack: true, DatR: m.words[idx]}
	}

	word := m.words[idx]
	for lane := uint8(0); lane < 4; lane++ {
		if req.Sel&(1<<lane) == 0 {
			continue
		}
		shift := lane * 8
		word = word&^(0xFF<<shift) | (req.DatW & (0xFF << shift))
	}
	m.words[idx] = word

	return bus.Transaction{Ack: true}
}

func (m *Memory) index(addr uint32) (int, bool) {
	if addr < m.base {
		return 0, false
	}
	idx := int((addr - m.base) / 4)
	if idx >= len(m.words) {
		return 0, false
	}
	return idx, true
}

// LoadBytes copies data into the backing store starting at addr,
// word-read-modify-writing any partial word at either end. Used to
// stage an ELF segment's file-backed bytes before the first Tick.
func (m *Memory) LoadBytes(addr uint32, data []byte) {
	for i, b := range data {
		a := addr + uint32(i)
		idx, ok := m.index(a)
		if !ok {
			continue
		}
		shift := (a & 0b11) * 8
		m.words[idx] = m.words[idx]&^(0xFF<<shift) | uint32(b)<<shift
	}
}

// ReadWord returns the word at addr without going through the bus
// protocol, for a test harness or debugger inspecting memory directly.
func (m *Memory) ReadWord(addr uint32) uint32 {
	idx, ok := m.index(addr)
	if !ok {
		return 0
	}
	return m.words[idx]
}
