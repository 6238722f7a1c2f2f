// Package core assembles a complete machine out of the pipeline,
// memory, bus, cache, and write-buffer packages: exactly the
// variant-selection wiring point the fetch and lsu packages defer to
// their caller, resolved once here from a Config instead of branching
// per access.
package core

import (
	"github.com/sarchlab/rv32p/bus"
	"github.com/sarchlab/rv32p/cache"
	"github.com/sarchlab/rv32p/csr"
	"github.com/sarchlab/rv32p/fetch"
	"github.com/sarchlab/rv32p/gpr"
	"github.com/sarchlab/rv32p/insts"
	"github.com/sarchlab/rv32p/isa"
	"github.com/sarchlab/rv32p/lsu"
	"github.com/sarchlab/rv32p/pipeline"
	"github.com/sarchlab/rv32p/rvfi"
	"github.com/sarchlab/rv32p/wrbuf"
)

// Stats mirrors the pipeline's own retirement counters one level up,
// the shape a driver actually wants to print.
type Stats struct {
	Cycles       uint64
	Instructions uint64
}

// dataArbiterPort adapts one logical requester of the shared data bus
// (a D-cache refill or the write buffer's drain) onto an arbiter port.
// The requesting bitmask for every port on this arbiter is recomputed
// once per Tick, before either requester is stepped, since the two
// calls happen sequentially in Go but must be judged as simultaneous.
type dataArbiterPort struct {
	arbiter    *bus.Arbiter
	port       int
	requesting *uint32
}

func (p *dataArbiterPort) Step(req bus.Transaction) bus.Transaction {
	return p.arbiter.Step(p.port, *p.requesting, req)
}

// Core is a complete RV32IM machine: register and CSR files, a decoder,
// a memory system sized and cached per Config, and the pipeline wired
// over them.
type Core struct {
	cfg Config

	memory *Memory
	gprs   *gpr.File
	csrs   *csr.File

	pipeline *pipeline.Core
	monitor  *rvfi.Monitor

	dcacheEngine *cache.Engine
	wrbuffer     *wrbuf.Buffer
	dataArbiter  *bus.Arbiter
	dataRequest  uint32

	halted   bool
	exitCode uint32

	Stats Stats
}

// New builds a Core from cfg, reset and ready for its first Tick.
func New(cfg Config) *Core {
	c := &Core{cfg: cfg}

	c.memory = NewMemory(cfg.MemBase, cfg.MemSize)
	c.gprs = &gpr.File{}
	c.csrs = csr.New(cfg.WithMulDiv)
	decoder := insts.NewDecoder(cfg.WithMulDiv)

	fetchUnit := c.buildFetchUnit()
	lsuUnit := c.buildLSUUnit()

	if cfg.WithRVFI {
		c.monitor = rvfi.NewMonitor()
	}

	c.pipeline = pipeline.NewCore(
		pipeline.Config{ResetAddr: cfg.ResetAddr, WithMulDiv: cfg.WithMulDiv},
		c.gprs, c.csrs, decoder, fetchUnit, lsuUnit,
	)

	return c
}

func (c *Core) buildFetchUnit() fetch.Unit {
	bare := fetch.NewBare(c.memory)
	if !c.cfg.WithICache {
		return bare
	}
	engine := cache.New(cache.Config{
		NWays:  c.cfg.ICacheNWays,
		NLines: c.cfg.ICacheLines,
		NWords: c.cfg.ICacheWords,
	}, c.memory)
	return fetch.NewCached(c.cfg.ICacheBase, c.cfg.ICacheLimit, engine, bare)
}

// buildLSUUnit wires the data side. With a D-cache, the cache engine's
// refill traffic and the write buffer's background drain both target
// the same physical memory, so they share it through a two-port
// arbiter (port 0: refill, port 1: drain) rather than each holding an
// unmediated reference to it.
func (c *Core) buildLSUUnit() lsu.Unit {
	bare := lsu.NewBare(c.memory)
	if !c.cfg.WithDCache {
		return bare
	}

	c.dataArbiter = bus.NewArbiter(c.memory, 2)
	refillPort := &dataArbiterPort{arbiter: c.dataArbiter, port: 0, requesting: &c.dataRequest}
	drainPort := &dataArbiterPort{arbiter: c.dataArbiter, port: 1, requesting: &c.dataRequest}

	c.dcacheEngine = cache.New(cache.Config{
		NWays:  c.cfg.DCacheNWays,
		NLines: c.cfg.DCacheLines,
		NWords: c.cfg.DCacheWords,
	}, refillPort)
	c.wrbuffer = wrbuf.New(c.cfg.WrbufDepth, drainPort)

	return lsu.NewCached(c.cfg.DCacheBase, c.cfg.DCacheLimit, c.dcacheEngine, c.wrbuffer, bare)
}

// SetTimerInterrupt forwards the machine-mode timer interrupt line to
// the pipeline.
func (c *Core) SetTimerInterrupt(pending bool) { c.pipeline.SetTimerInterrupt(pending) }

// GPR exposes the register file for a debugger or test harness.
func (c *Core) GPR() *gpr.File { return c.gprs }

// CSR exposes the CSR file for a debugger or test harness.
func (c *Core) CSR() *csr.File { return c.csrs }

// Memory exposes the backing store so a loader can stage a program
// before the first Tick.
func (c *Core) Memory() *Memory { return c.memory }

// RVFI returns the formal-interface monitor, or nil if Config.WithRVFI
// was false.
func (c *Core) RVFI() *rvfi.Monitor { return c.monitor }

// Halted reports whether the core has executed an ECALL, the
// bare-metal test-harness convention this design uses as its only
// program-exit signal.
func (c *Core) Halted() bool { return c.halted }

// ExitCode returns the value x10 held at the moment of the halting
// ECALL.
func (c *Core) ExitCode() uint32 { return c.exitCode }

// Tick advances the core by one clock cycle: the write buffer's drain
// and the D-cache engine's refill are arbitrated once up front, then
// the pipeline itself ticks, then a halt condition is latched if an
// ECALL just retired.
func (c *Core) Tick() {
	if c.halted {
		return
	}

	if c.dcacheEngine != nil {
		mask := uint32(0)
		if c.dcacheEngine.Requesting() {
			mask |= 1 << 0
		}
		if !c.wrbuffer.Empty() {
			mask |= 1 << 1
		}
		c.dataRequest = mask
		c.wrbuffer.Tick()
	}

	c.pipeline.Tick()

	c.Stats.Cycles++
	retired := c.pipeline.Retired()
	if retired.Valid && !retired.Trap {
		c.Stats.Instructions++
	}

	if c.monitor != nil {
		c.observe(retired)
	}

	if retired.Valid && retired.Trap && retired.Cause == isa.CauseEcallFromM {
		c.halted = true
		c.exitCode = c.gprs.Read(10)
	}
}

// observe translates one committed boundary register into an
// rvfi.Retirement and feeds it to the monitor.
func (c *Core) observe(mw pipeline.MWReg) {
	if !mw.Valid {
		return
	}

	var rs1Addr, rs2Addr, rdAddr uint8
	var rdWe bool
	if mw.Inst != nil {
		rs1Addr, rs2Addr, rdAddr = mw.Inst.Rs1, mw.Inst.Rs2, mw.Inst.Rd
		rdWe = mw.Inst.RdWe
	}

	var insn uint32
	if mw.Inst != nil {
		insn = mw.Inst.Word
	}

	c.monitor.Observe(rvfi.Retirement{
		Insn:     insn,
		Trap:     mw.Trap,
		Rs1Addr:  rs1Addr,
		Rs2Addr:  rs2Addr,
		Rs1RData: mw.Src1,
		Rs2RData: mw.Src2,
		RdWe:     rdWe,
		RdAddr:   rdAddr,
		RdWData:  mw.Result,
		PCRData:  mw.PC,
		// PCWData needs the resolved next-PC (fall-through, branch
		// target, or trap vector) threaded back onto MWReg, which
		// nothing currently does, so it's left at zero.
		MemAddr: mw.MemAddr,
		MemRMask: loadMask(mw),
		MemWMask: storeMask(mw),
		MemRData: loadData(mw),
		MemWData: storeData(mw),
	})
}

func loadMask(mw pipeline.MWReg) uint8 {
	if mw.Inst != nil && mw.Inst.Load {
		return mw.MemMask
	}
	return 0
}

func storeMask(mw pipeline.MWReg) uint8 {
	if mw.Inst != nil && mw.Inst.Store {
		return mw.MemMask
	}
	return 0
}

func loadData(mw pipeline.MWReg) uint32 {
	if mw.Inst != nil && mw.Inst.Load {
		return mw.MemData
	}
	return 0
}

func storeData(mw pipeline.MWReg) uint32 {
	if mw.Inst != nil && mw.Inst.Store {
		return mw.MemData
	}
	return 0
}

// Run ticks the core until it halts, returning the exit code.
func (c *Core) Run() uint32 {
	for !c.halted {
		c.Tick()
	}
	return c.exitCode
}

// RunCycles ticks the core up to n times, stopping early if it halts.
// It reports whether the core is still running.
func (c *Core) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !c.halted; i++ {
		c.Tick()
	}
	return !c.halted
}
