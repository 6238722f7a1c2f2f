// Package lsu implements the load/store unit: address
// generation and alignment checking at X, with bare and cached
// variants behind a common interface selected once at construction.
package lsu

import (
	"github.com/sarchlab/rv32p/bus"
	"github.com/sarchlab/rv32p/cache"
	"github.com/sarchlab/rv32p/isa"
	"github.com/sarchlab/rv32p/wrbuf"
)

// Width identifies the access width of a load or store.
type Width uint8

const (
	WidthByte Width = iota
	WidthHalf
	WidthWord
)

// Address is the result of X-stage address generation: addr=src1+imm,
// the byte-mask and shift for sub-word access, and the misalignment
// check.
type Address struct {
	Addr       uint32
	Width      Width
	Unsigned   bool
	ByteMask   uint8
	Misaligned bool
}

// GenerateAddress computes addr=src1+imm and the byte-mask for a {B,H,W}
// access, and flags misalignment (a half-word address whose low bit is
// set, or a word address whose low two bits are nonzero).
func GenerateAddress(src1, imm uint32, funct3 isa.Funct3) Address {
	addr := src1 + imm

	var width Width
	var unsigned bool
	switch funct3 {
	case isa.F3B:
		width = WidthByte
	case isa.F3BU:
		width, unsigned = WidthByte, true
	case isa.F3H:
		width = WidthHalf
	case isa.F3HU:
		width, unsigned = WidthHalf, true
	default: // F3W
		width = WidthWord
	}

	var misaligned bool
	var size uint8
	switch width {
	case WidthByte:
		size = 1
	case WidthHalf:
		size = 2
		misaligned = addr&0b1 != 0
	case WidthWord:
		size = 4
		misaligned = addr&0b11 != 0
	}

	return Address{
		Addr:       addr,
		Width:      width,
		Unsigned:   unsigned,
		ByteMask:   bus.SelMask(size, uint8(addr&0b11)),
		Misaligned: misaligned,
	}
}

// ShiftStoreData places a sub-word store value into its byte lane(s)
// of a 32-bit bus word, matching ByteMask.
func ShiftStoreData(addr Address, value uint32) uint32 {
	shift := (addr.Addr & 0b11) * 8
	var mask uint32
	switch addr.Width {
	case WidthByte:
		mask = 0xFF
	case WidthHalf:
		mask = 0xFFFF
	default:
		mask = 0xFFFFFFFF
	}
	return (value & mask) << shift
}

// ExtractLoadData pulls the addressed sub-word out of a 32-bit bus
// word and sign- or zero-extends it per Unsigned.
func ExtractLoadData(addr Address, word uint32) uint32 {
	shift := (addr.Addr & 0b11) * 8
	shifted := word >> shift

	switch addr.Width {
	case WidthByte:
		if addr.Unsigned {
			return shifted & 0xFF
		}
		return uint32(int32(int8(shifted & 0xFF)))
	case WidthHalf:
		if addr.Unsigned {
			return shifted & 0xFFFF
		}
		return uint32(int32(int16(shifted & 0xFFFF)))
	default:
		return word
	}
}

// Result is what M reports for a load/store that has resolved.
type Result struct {
	Ready bool
	Data  uint32
	Err   bool
	Fault uint32 // badaddr
}

// Unit is the common load/store-unit interface both variants implement.
type Unit interface {
	// Step drives one access. write selects store vs load; storeData
	// is pre-shifted by ShiftStoreData. fenceI requests a write-buffer
	// drain (stalls until empty) for the cached variant; the bare
	// variant has no buffer to drain.
	Step(addr Address, write bool, storeData uint32, fenceI bool) Result
}

// BareUnit drives the data bus directly.
type BareUnit struct {
	responder bus.Responder
}

// NewBare builds a bare load/store unit over responder.
func NewBare(responder bus.Responder) *BareUnit {
	return &BareUnit{responder: responder}
}

// Step implements Unit. A bare unit has no write buffer to drain, so
// FENCE.I is an immediate no-op.
func (u *BareUnit) Step(addr Address, write bool, storeData uint32, fenceI bool) Result {
	if fenceI {
		return Result{Ready: true}
	}

	resp := u.responder.Step(bus.Transaction{
		Addr: addr.Addr &^ 0b11,
		Sel:  addr.ByteMask,
		DatW: storeData,
		We:   write,
		Cyc:  true,
		Stb:  true,
	})

	if resp.Err {
		return Result{Ready: true, Err: true, Fault: addr.Addr}
	}
	if !resp.Ack {
		return Result{Ready: false}
	}
	if write {
		return Result{Ready: true}
	}
	return Result{Ready: true, Data: ExtractLoadData(addr, resp.DatR)}
}

// CachedUnit routes cacheable reads through a D-cache, posts
// cacheable stores to a write buffer (evicting the matching line
// first), and sends everything else to a bare fallback.
type CachedUnit struct {
	base, limit uint32
	engine      *cache.Engine
	buffer      *wrbuf.Buffer
	bare        *BareUnit

	evicting bool
}

// NewCached builds a cached load/store unit over [base, limit).
func NewCached(base, limit uint32, engine *cache.Engine, buffer *wrbuf.Buffer, bare *BareUnit) *CachedUnit {
	return &CachedUnit{base: base, limit: limit, engine: engine, buffer: buffer, bare: bare}
}

func (u *CachedUnit) cacheable(addr uint32) bool {
	return addr >= u.base && addr < u.limit
}

// Step implements Unit.
func (u *CachedUnit) Step(addr Address, write bool, storeData uint32, fenceI bool) Result {
	if fenceI {
		u.buffer.Tick()
		if !u.buffer.Empty() {
			return Result{Ready: false}
		}
		return Result{Ready: true}
	}

	if !u.cacheable(addr.Addr) {
		return u.bare.Step(addr, write, storeData, false)
	}

	if write {
		return u.stepStore(addr, storeData)
	}
	return u.stepLoad(addr)
}

func (u *CachedUnit) stepLoad(addr Address) Result {
	if u.engine.Busy() {
		u.engine.Tick(cache.Request{})
		return Result{Ready: false}
	}

	r := u.engine.Tick(cache.Request{Op: cache.OpRead, Addr: addr.Addr &^ 0b11})
	if r.Busy {
		return Result{Ready: false}
	}
	if r.Err {
		return Result{Ready: true, Err: true, Fault: addr.Addr}
	}
	return Result{Ready: true, Data: ExtractLoadData(addr, r.Data)}
}

// stepStore evicts the line matching addr (so a later hit never
// observes stale data bypassed by the write buffer), then enqueues
// the posted write.
func (u *CachedUnit) stepStore(addr Address, storeData uint32) Result {
	if !u.evicting {
		if !u.buffer.Ready() {
			return Result{Ready: false}
		}
		u.evicting = true
	}

	if u.engine.Busy() {
		u.engine.Tick(cache.Request{})
		return Result{Ready: false}
	}

	r := u.engine.Tick(cache.Request{Op: cache.OpEvict, Addr: addr.Addr &^ 0b11})
	if r.Busy {
		return Result{Ready: false}
	}

	u.evicting = false
	u.buffer.Push(wrbuf.Entry{
		WordAddr: addr.Addr &^ 0b11,
		ByteMask: addr.ByteMask,
		Data:     storeData,
	})
	return Result{Ready: true}
}
