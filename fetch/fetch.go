// Package fetch implements the bare and cached fetch-unit variants. The
// variant is resolved once at construction (a core.Config either wires
// a BareUnit or a CachedUnit wrapping one) so the pipeline's hot loop
// calls a single Unit.Step without runtime type dispatch.
package fetch

import (
	"github.com/sarchlab/rv32p/bus"
	"github.com/sarchlab/rv32p/cache"
	"github.com/sarchlab/rv32p/isa"
)

// Result is what F reports to D this cycle.
type Result struct {
	Ready       bool
	Instruction uint32
	Err         bool
	FaultAddr   uint32
}

// Unit is the common fetch-unit interface both variants implement.
type Unit interface {
	// Step drives one fetch of pc. flush requests an I-cache flush
	// (FENCE.I at X, or a debug resume); a bare unit ignores it.
	Step(pc uint32, flush bool) Result
}

// BareUnit issues one bus transaction per fetch and holds busy while
// it is outstanding.
type BareUnit struct {
	responder bus.Responder
}

// NewBare builds a bare fetch unit over responder.
func NewBare(responder bus.Responder) *BareUnit {
	return &BareUnit{responder: responder}
}

// Step implements Unit.
func (u *BareUnit) Step(pc uint32, _ bool) Result {
	resp := u.responder.Step(bus.Transaction{
		Addr: pc,
		Sel:  0b1111,
		Cyc:  true,
		Stb:  true,
	})

	if resp.Err {
		// A faulting fetch still presents a valid instruction word
		// downstream so the trap is delivered in-order without a
		// secondary decode fault.
		return Result{Ready: true, Err: true, FaultAddr: pc, Instruction: isa.NopInstruction}
	}
	if !resp.Ack {
		return Result{Ready: false}
	}
	return Result{Ready: true, Instruction: resp.DatR}
}

// CachedUnit routes accesses inside [base, limit) to an I-cache
// engine, everything else to a bare fallback that it calls directly;
// no arbiter sits between the two. The window is used as given:
// nothing checks that limit-base is a power of two or that base is a
// multiple of it.
type CachedUnit struct {
	base, limit uint32
	engine      *cache.Engine
	bare        *BareUnit
}

// NewCached builds a cached fetch unit over [base, limit).
func NewCached(base, limit uint32, engine *cache.Engine, bare *BareUnit) *CachedUnit {
	return &CachedUnit{base: base, limit: limit, engine: engine, bare: bare}
}

func (u *CachedUnit) cacheable(pc uint32) bool {
	return pc >= u.base && pc < u.limit
}

// Step implements Unit. While the I-cache is mid-flush/refill/evict,
// the fetch result stays busy regardless of what pc or flush are this
// cycle, matching "the fetch result is held busy until flush
// completes."
func (u *CachedUnit) Step(pc uint32, flush bool) Result {
	if u.engine.Busy() {
		u.engine.Tick(cache.Request{})
		return Result{Ready: false}
	}

	if flush {
		u.engine.Tick(cache.Request{Op: cache.OpFlush})
		return Result{Ready: false}
	}

	if !u.cacheable(pc) {
		return u.bare.Step(pc, false)
	}

	r := u.engine.Tick(cache.Request{Op: cache.OpRead, Addr: pc})
	if r.Busy {
		return Result{Ready: false}
	}
	if r.Err {
		return Result{Ready: true, Err: true, FaultAddr: pc, Instruction: isa.NopInstruction}
	}
	return Result{Ready: true, Instruction: r.Data}
}
