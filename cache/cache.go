// Package cache implements the two-stage cache engine shared by the
// instruction and data caches: S1 indexes tag and data memory
// combinationally, S2 resolves the access through an explicit
// CHECK/FLUSH/EVICT/REFILL/DONE state machine. Tag, valid,
// and LRU bookkeeping is delegated to Akita's cache directory; this
// package owns only the word-level data array and the state machine
// driving it.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/rv32p/bus"
)

// State names the S2 resolver's FSM state.
type State uint8

const (
	StateCheck State = iota
	StateFlush
	StateEvict
	StateRefill
	StateDone
)

// Op names the operation S1 is staging for S2 to resolve.
type Op uint8

const (
	OpNone Op = iota
	OpRead
	OpEvict
	OpFlush
)

// Config describes one cache instance's geometry: *_nways, *_nlines,
// *_nwords. Whether a cache is built at all is chosen by core.Config.
type Config struct {
	NWays  int // 1 or 2
	NLines int // power of two
	NWords int // line size in 32-bit words: 4, 8, or 16
}

// Request is what S1 stages for S2.
type Request struct {
	Op   Op
	Addr uint32
}

// Result is what S2 reports back to S1/the consumer this cycle.
type Result struct {
	// Busy is the S2 "busy" signal: asserted whenever S2 is
	// doing anything other than CHECK-idle. S1 must not be treated as
	// ready while Busy is set.
	Busy      bool
	Hit       bool
	Data      uint32
	FlushDone bool
	Err       bool
}

// Engine is one instance of the S1/S2 cache pipeline, parameterized by
// Config and backed by a bus.Responder for refill bursts.
type Engine struct {
	cfg Config

	directory *akitacache.DirectoryImpl
	blocks    []*akitacache.Block // flat, indexed by set*NWays+way
	data      [][]uint32          // parallel to blocks, each len NWords

	responder bus.Responder

	state State

	evictBlock *akitacache.Block

	flushLine int

	refillVictim *akitacache.Block
	refillBase   uint32
	refillOffset int
}

// New builds a cache engine over cfg, refilling from responder on a
// miss. Writing lines through it is not needed here: eviction is
// tag-only, since the write buffer, not this engine, owns dirty data
// headed back to memory.
func New(cfg Config, responder bus.Responder) *Engine {
	directory := akitacache.NewDirectory(
		cfg.NLines,
		cfg.NWays,
		cfg.NWords*4,
		akitacache.NewLRUVictimFinder(),
	)

	total := cfg.NLines * cfg.NWays
	data := make([][]uint32, total)
	for i := range data {
		data[i] = make([]uint32, cfg.NWords)
	}

	e := &Engine{cfg: cfg, directory: directory, data: data, responder: responder}
	e.blocks = make([]*akitacache.Block, total)
	for _, set := range directory.GetSets() {
		for _, block := range set.Blocks {
			e.blocks[block.SetID*cfg.NWays+block.WayID] = block
		}
	}

	return e
}

func (e *Engine) lineBytes() uint32 {
	return uint32(e.cfg.NWords * 4)
}

func (e *Engine) blockAddr(addr uint32) uint32 {
	return addr &^ (e.lineBytes() - 1)
}

func (e *Engine) wordOffset(addr uint32) int {
	return int(addr/4) % e.cfg.NWords
}

func (e *Engine) index(block *akitacache.Block) int {
	return block.SetID*e.cfg.NWays + block.WayID
}

// Tick advances the engine by one cycle. req is only consulted while
// the engine is idle (State == StateCheck and not mid-flush/evict/
// refill); a req offered while busy is ignored, matching "S1 must not
// be treated as ready while S2 is busy."
func (e *Engine) Tick(req Request) Result {
	switch e.state {
	case StateCheck:
		return e.stepCheck(req)
	case StateFlush:
		return e.stepFlush()
	case StateEvict:
		return e.stepEvict()
	case StateRefill:
		return e.stepRefill()
	case StateDone:
		e.state = StateCheck
		return Result{Busy: false}
	default:
		return Result{Busy: false}
	}
}

func (e *Engine) stepCheck(req Request) Result {
	switch req.Op {
	case OpNone:
		return Result{Busy: false}

	case OpFlush:
		e.flushLine = len(e.blocks) - 1
		e.state = StateFlush
		return Result{Busy: true}

	case OpEvict:
		blockAddr := e.blockAddr(req.Addr)
		block := e.directory.Lookup(0, blockAddr)
		if block == nil || !block.IsValid {
			return Result{Busy: false}
		}
		e.evictBlock = block
		e.state = StateEvict
		return Result{Busy: true}

	case OpRead:
		blockAddr := e.blockAddr(req.Addr)
		block := e.directory.Lookup(0, blockAddr)
		if block != nil && block.IsValid {
			e.directory.Visit(block)
			word := e.wordOffset(req.Addr)
			return Result{Busy: false, Hit: true, Data: e.data[e.index(block)][word]}
		}

		victim := e.directory.FindVictim(blockAddr)
		if victim == nil {
			return Result{Busy: false, Err: true}
		}
		e.refillVictim = victim
		e.refillBase = blockAddr
		e.refillOffset = 0
		e.state = StateRefill
		return Result{Busy: true}

	default:
		return Result{Busy: false}
	}
}

func (e *Engine) stepFlush() Result {
	block := e.blocks[e.flushLine]
	block.IsValid = false
	block.IsDirty = false

	e.flushLine--
	if e.flushLine < 0 {
		e.state = StateDone
		return Result{Busy: true, FlushDone: true}
	}
	return Result{Busy: true}
}

func (e *Engine) stepEvict() Result {
	if e.evictBlock != nil {
		e.evictBlock.IsValid = false
		e.evictBlock.IsDirty = false
		e.evictBlock = nil
	}
	e.state = StateDone
	return Result{Busy: true}
}

func (e *Engine) stepRefill() Result {
	cti := bus.CycleIncrBurst
	if e.refillOffset == e.cfg.NWords-1 {
		cti = bus.CycleEndOfBurst
	}

	addr := e.refillBase + uint32(e.refillOffset*4)
	resp := e.responder.Step(bus.Transaction{
		Addr: addr,
		Sel:  0b1111,
		Cyc:  true,
		Stb:  true,
		Cti:  cti,
		Bte:  bus.BurstLinear,
	})

	if resp.Err {
		e.state = StateDone
		return Result{Busy: true, Err: true}
	}
	if !resp.Ack {
		return Result{Busy: true}
	}

	e.data[e.index(e.refillVictim)][e.refillOffset] = resp.DatR
	e.refillOffset++

	if e.refillOffset == e.cfg.NWords {
		e.refillVictim.Tag = e.refillBase
		e.refillVictim.IsValid = true
		e.refillVictim.IsDirty = false
		e.directory.Visit(e.refillVictim) // flips LRU for the 2-way case
		e.refillVictim = nil
		e.state = StateDone
	}

	return Result{Busy: true}
}

// Busy reports whether S2 is anything other than CHECK-idle.
func (e *Engine) Busy() bool {
	return e.state != StateCheck
}

// Requesting reports whether this engine needs the backing responder's
// bus this cycle. Only StateRefill actually drives a transaction onto
// it; flush and evict are tag-only and never touch the bus, so a
// shared arbiter should not count them as contending for it.
func (e *Engine) Requesting() bool {
	return e.state == StateRefill
}

// Reset invalidates every line without writeback, the engine's
// power-on and debug-resume state.
func (e *Engine) Reset() {
	e.directory.Reset()
	e.state = StateCheck
}
