// Package pipeline implements the six-stage in-order core: address
// generate (A), fetch (F), decode (D), execute (X), memory (M), and
// writeback (W), wired from the gpr, csr, insts, fetch, lsu, alu, and
// predict packages. Every Tick evaluates all six stages
// combinationally from a consistent snapshot of the current boundary
// registers in reverse stage order (W before M before X before D
// before F and A), then commits the next snapshot atomically, so no stage
// ever reads a boundary register another stage has already updated
// this cycle.
package pipeline

import (
	"github.com/sarchlab/rv32p/alu"
	"github.com/sarchlab/rv32p/csr"
	"github.com/sarchlab/rv32p/fetch"
	"github.com/sarchlab/rv32p/gpr"
	"github.com/sarchlab/rv32p/insts"
	"github.com/sarchlab/rv32p/isa"
	"github.com/sarchlab/rv32p/lsu"
	"github.com/sarchlab/rv32p/predict"
)

// Config configures a Core at construction time.
type Config struct {
	ResetAddr  uint32
	WithMulDiv bool
}

// Stats accumulates the core's retirement counters, mirrored into the
// mcycle/minstret CSRs but also exposed directly for a driver's report.
type Stats struct {
	Cycles       uint64
	Instructions uint64
}

// Core is the six-stage pipeline. The fetch.Unit and lsu.Unit are
// supplied already built (bare or cached) by whatever assembles the
// memory system (the core package), so Core itself never branches on
// cacheability.
type Core struct {
	gprs      *gpr.File
	csrs      *csr.File
	decoder   *insts.Decoder
	fetchUnit fetch.Unit
	lsuUnit   lsu.Unit

	resetAddr uint32

	af AFReg
	fd FDReg
	dx DXReg
	xm XMReg
	mw MWReg

	divider     alu.Divider
	dividing    bool
	fenceFlush  bool
	debugHalted bool

	Stats Stats
}

// NewCore builds a Core reset to cfg.ResetAddr, ready for its first Tick.
func NewCore(cfg Config, gprs *gpr.File, csrs *csr.File, decoder *insts.Decoder, fetchUnit fetch.Unit, lsuUnit lsu.Unit) *Core {
	return &Core{
		gprs:      gprs,
		csrs:      csrs,
		decoder:   decoder,
		fetchUnit: fetchUnit,
		lsuUnit:   lsuUnit,
		resetAddr: cfg.ResetAddr,
		af:        AFReg{Valid: true, PC: cfg.ResetAddr},
	}
}

// SetTimerInterrupt drives the microarchitectural timer interrupt line
// a test harness or memory-mapped timer peripheral asserts.
func (c *Core) SetTimerInterrupt(pending bool) {
	mip := c.csrs.Lookup(isa.CSRMip)
	raw := mip.Raw()
	if pending {
		raw |= 1 << csr.MTIEBit
	} else {
		raw &^= 1 << csr.MTIEBit
	}
	_ = mip.Write(raw)
}

// DebugHalt freezes retirement: Tick still runs (so an in-flight bus
// transaction can drain) but nothing commits to the GPR/CSR files.
func (c *Core) DebugHalt() { c.debugHalted = true }

// DebugResume lifts a DebugHalt and requests the same I-cache flush a
// FENCE.I does.
func (c *Core) DebugResume() {
	c.debugHalted = false
	c.fenceFlush = true
}

// PC returns the architectural PC of the instruction currently at D,
// or the next fetch address if the pipeline is empty — the value a
// debugger or RVFI monitor wants to display.
func (c *Core) PC() uint32 {
	if c.fd.Valid {
		return c.fd.PC
	}
	return c.af.PC
}

// GPR exposes the register file for a debugger or test harness.
func (c *Core) GPR() *gpr.File { return c.gprs }

// CSR exposes the CSR file for a debugger or test harness.
func (c *Core) CSR() *csr.File { return c.csrs }

// Retired reports the MWReg latched into the M->W boundary this cycle
// (stepWriteback commits it, or enters its trap, at the start of the
// next Tick), or a zero value with Valid=false if nothing reached W —
// the hook an RVFI monitor taps.
func (c *Core) Retired() MWReg { return c.mw }

// deOut is the D stage's combinational output this cycle.
type deOut struct {
	reg   DXReg
	ready bool // hazard-free: safe for X to accept this as its next input
}

// exOut is the X stage's combinational output this cycle.
type exOut struct {
	reg   XMReg
	ready bool // X's own multi-cycle op (divide) finished
}

// memOut is the M stage's combinational output this cycle.
type memOut struct {
	reg   MWReg
	ready bool // M's bus/cache op finished
}

// Tick advances the core by one clock cycle.
func (c *Core) Tick() {
	c.Stats.Cycles++
	if mcycle := c.csrs.Lookup(isa.CSRMcycle); mcycle != nil {
		_ = mcycle.Write(mcycle.Raw() + 1)
	}

	trapRedirect, mretRedirect, flushAll := c.stepWriteback()

	mem := c.stepMemory(flushAll)
	var mStage Stage
	mStage.StallOn(!mem.ready)
	holdM := mStage.Stall()

	// A trap or MRET leaving M this cycle flushes the pipeline when it
	// reaches W next cycle, so it squashes a CSR write at X as well.
	olderFlush := mem.reg.Valid && (mem.reg.Trap || isMret(mem.reg.Inst))
	ex := c.stepExecute(flushAll || olderFlush)
	var xStage Stage
	xStage.StallOn(holdM)
	xStage.StallOn(!ex.ready)
	holdX := xStage.Stall()

	de := c.stepDecode(ex)

	// mispredicted fires the cycle a branch/jump at X resolves against
	// its D-stage prediction: the two instructions fetched/decoded
	// under that prediction (now sitting in fd and about to land in
	// nextDX via de.reg) are wrong-path and must not be allowed to
	// commit. It only applies once ex.reg is actually about to land in
	// XM (!holdX) and isn't already superseded by an older trap.
	mispredicted := !flushAll && !holdX && ex.reg.Valid && ex.reg.MispredictKind != mispredictNone

	var dStage Stage
	dStage.StallOn(holdX)
	dStage.StallOn(!de.ready)
	dStage.KillOn(mispredicted)
	holdD := dStage.Stall()
	killD := dStage.Kill()

	var fStage Stage
	fStage.KillOn(mispredicted)
	// A taken prediction at D redirects A to the predicted target, so
	// the fall-through word F would fetch this cycle is wrong-path.
	fStage.KillOn(!holdD && !c.fenceFlush && de.reg.Valid && de.reg.PredictTaken)
	killF := fStage.Kill()

	var nextMW MWReg
	if holdM {
		nextMW = MWReg{}
	} else {
		nextMW = mem.reg
	}

	var nextXM XMReg
	switch {
	case holdM:
		nextXM = c.xm // M hasn't vacated; X must hold its content.
	case holdX:
		nextXM = XMReg{} // X's own op (divide) not done yet; nothing to hand off.
	default:
		nextXM = ex.reg
	}

	var nextDX DXReg
	switch {
	case killD:
		nextDX = DXReg{} // wrong-path: voided by this cycle's misprediction.
	case holdX:
		nextDX = c.dx // X not accepting; D holds.
	case holdD:
		nextDX = DXReg{} // hazard at D; insert a bubble into X, hold fd.
	default:
		nextDX = de.reg
	}

	var nextFD FDReg
	var afHeld bool
	switch {
	case killF:
		// wrong-path: voided by this cycle's misprediction or by a taken
		// prediction at D: don't hold
		// it for a later cycle and don't let afHeld suppress the
		// corrected redirect computed below.
		nextFD = FDReg{}
		afHeld = false
	case holdD:
		nextFD = c.fd
		afHeld = true
	case c.fenceFlush:
		res := c.fetchUnit.Step(c.af.PC, true)
		afHeld = true
		if res.Ready {
			c.fenceFlush = false
		}
		nextFD = FDReg{}
	default:
		res := c.fetchUnit.Step(c.af.PC, false)
		if !res.Ready {
			nextFD = FDReg{}
			afHeld = true
		} else {
			nextFD = FDReg{Valid: true, PC: c.af.PC, Instruction: res.Instruction, FetchErr: res.Err, FaultAddr: res.FaultAddr}
			afHeld = false
		}
	}

	nextAF := c.af
	switch {
	case flushAll:
		target := c.af.PC + 4
		if trapRedirect != nil {
			target = *trapRedirect
		} else if mretRedirect != nil {
			target = *mretRedirect
		}
		nextAF = AFReg{Valid: true, PC: target}
		nextFD, nextDX, nextXM, nextMW = FDReg{}, DXReg{}, XMReg{}, MWReg{}
	case afHeld:
		// nextAF already equals c.af.
	default:
		nextAF = AFReg{Valid: true, PC: c.pcMux(ex, de)}
	}

	c.af, c.fd, c.dx, c.xm, c.mw = nextAF, nextFD, nextDX, nextXM, nextMW
}

// pcMux implements the priority mux over this cycle's freshly
// computed stage outputs (trap/mret are handled by the caller before
// this is reached, since they force an unconditional flush).
func (c *Core) pcMux(ex exOut, de deOut) uint32 {
	switch {
	case ex.reg.Valid && ex.reg.MispredictKind == mispredictTakenToNotTaken:
		return ex.reg.PC + 4
	case ex.reg.Valid && ex.reg.MispredictKind == mispredictNotTakenToTaken:
		return ex.reg.BranchTarget
	case c.fenceFlush:
		return c.fd.PC
	case de.reg.Valid && de.reg.PredictTaken:
		return de.reg.PredictTarget
	default:
		return c.af.PC + 4
	}
}

// stepDecode decodes fd (the current F->D boundary register) and
// resolves its source operands against in-flight writers at X, M, and
// W, using ex (this cycle's freshly computed X-stage output, needed
// because an X-resident writer's value is known combinationally this
// same cycle, before it latches into xm).
func (c *Core) stepDecode(ex exOut) deOut {
	if !c.fd.Valid {
		return deOut{ready: true}
	}
	if c.fd.FetchErr {
		return deOut{reg: DXReg{Valid: true, PC: c.fd.PC, Inst: &insts.Instruction{}, Trap: true, Cause: isa.CauseFetchAccessFault, TVal: c.fd.FaultAddr}, ready: true}
	}

	inst := c.decoder.Decode(c.fd.Instruction)
	if inst.Illegal {
		return deOut{reg: DXReg{Valid: true, PC: c.fd.PC, Inst: inst, Trap: true, Cause: isa.CauseIllegalInstruction, TVal: inst.Word}, ready: true}
	}

	writers := c.hazardWriters(ex)

	var src1, src2 uint32
	ready := true

	switch {
	case inst.CSR && inst.CSRFmtI:
		src1 = uint32(inst.Rs1)
	case inst.Rs1Re:
		bp := gpr.Bypass(inst.Rs1, c.gprs.Read(inst.Rs1), writers)
		if !bp.Ready {
			ready = false
		}
		src1 = bp.Value
	}

	if inst.Rs2Re {
		bp := gpr.Bypass(inst.Rs2, c.gprs.Read(inst.Rs2), writers)
		if !bp.Ready {
			ready = false
		}
		src2 = bp.Value
	}

	if inst.CSR && c.csrInFlight() {
		ready = false
	}

	if !ready {
		return deOut{ready: false}
	}

	reg := DXReg{Valid: true, PC: c.fd.PC, Inst: inst, Src1: src1, Src2: src2}

	if inst.Jump || inst.Branch {
		pred := predict.Predict(c.fd.PC, uint32(inst.Immediate), inst.Jump, inst.Rs1Re, inst.Branch)
		reg.PredictTaken = pred.Taken
		reg.PredictTarget = pred.Target
	}

	switch {
	case inst.Ecall:
		reg.Trap, reg.Cause = true, isa.CauseEcallFromM
	case inst.Ebreak:
		reg.Trap, reg.Cause, reg.TVal = true, isa.CauseBreakpoint, c.fd.PC
	}

	return deOut{reg: reg, ready: true}
}

// hazardWriters assembles the in-flight writer list in the youngest-
// first order gpr.Bypass requires: the instruction currently at X
// (c.dx, about to become ex.reg), then at M (c.xm), then at W (c.mw).
func (c *Core) hazardWriters(ex exOut) []gpr.Writer {
	var writers []gpr.Writer

	if c.dx.Valid && c.dx.Inst.RdWe && c.dx.Inst.Rd != 0 {
		inst := c.dx.Inst
		writers = append(writers, gpr.Writer{
			Rd: inst.Rd, Stage: gpr.StageX, BypassX: inst.BypassX, BypassM: inst.BypassM,
			Value: func() (uint32, bool) {
				if ex.reg.Valid {
					return ex.reg.Result, true
				}
				return 0, false
			},
		})
	}

	if c.xm.Valid && c.xm.Inst.RdWe && c.xm.Inst.Rd != 0 {
		inst, result := c.xm.Inst, c.xm.Result
		writers = append(writers, gpr.Writer{
			Rd: inst.Rd, Stage: gpr.StageM, BypassX: inst.BypassX, BypassM: inst.BypassM,
			Value: func() (uint32, bool) { return result, true },
		})
	}

	if c.mw.Valid && c.mw.Inst.RdWe && c.mw.Inst.Rd != 0 {
		result := c.mw.Result
		writers = append(writers, gpr.Writer{
			Rd: c.mw.Inst.Rd, Stage: gpr.StageW,
			Value: func() (uint32, bool) { return result, true },
		})
	}

	return writers
}

// csrInFlight reports whether a CSR instruction is currently anywhere
// in X, M, or W — a coarse hazard that stalls a new CSR decode at D
// rather than tracking per-address conflicts.
func (c *Core) csrInFlight() bool {
	return (c.dx.Valid && c.dx.Inst.CSR) || (c.xm.Valid && c.xm.Inst.CSR) || (c.mw.Valid && c.mw.Inst.CSR)
}

// stepExecute evaluates dx (the current D->X boundary register). A
// divide stalls X for up to 32 cycles via alu.Divider; every other op
// is single-cycle combinational, including multiply (collapsed from a
// genuinely pipelined datapath to one call, since only the
// externally-visible bypass-readiness timing the decoder already
// assigns is observable).
func (c *Core) stepExecute(flushAll bool) exOut {
	if !c.dx.Valid {
		return exOut{ready: true}
	}
	if c.dx.Trap {
		return exOut{reg: XMReg{Valid: true, PC: c.dx.PC, Inst: c.dx.Inst, Src1: c.dx.Src1, Src2: c.dx.Src2, Trap: true, Cause: c.dx.Cause, TVal: c.dx.TVal}, ready: true}
	}

	inst := c.dx.Inst

	if inst.Divide {
		if !c.dividing {
			c.divider.Start(inst.Funct3, c.dx.Src1, c.dx.Src2)
			c.dividing = true
		} else {
			c.divider.Tick()
		}
		if c.divider.Busy() {
			return exOut{ready: false}
		}
		c.dividing = false
		return exOut{reg: XMReg{Valid: true, PC: c.dx.PC, Inst: inst, Src1: c.dx.Src1, Src2: c.dx.Src2, Result: c.divider.Result(inst.Funct3)}, ready: true}
	}

	operand2 := c.dx.Src2
	if !inst.Rs2Re {
		operand2 = uint32(inst.Immediate)
	}

	reg := XMReg{Valid: true, PC: c.dx.PC, Inst: inst, Src1: c.dx.Src1, Src2: c.dx.Src2}

	switch {
	case inst.Adder:
		reg.Result = alu.Add(c.dx.Src1, operand2, inst.AdderSub).Result
	case inst.Logic:
		reg.Result = alu.Logic(inst.Funct3, c.dx.Src1, operand2)
	case inst.Shift:
		reg.Result = alu.Shift(c.dx.Src1, operand2, inst.Direction, inst.Sext)
	case inst.Compare:
		flags := alu.FlagsFromSub(alu.Add(c.dx.Src1, operand2, true))
		reg.Result = alu.SetLessThan(inst.Funct3, flags)
	case inst.Multiply:
		reg.Result = alu.Multiply(inst.Funct3, c.dx.Src1, operand2)
	case inst.Lui:
		reg.Result = uint32(inst.Immediate)
	case inst.Auipc:
		reg.Result = c.dx.PC + uint32(inst.Immediate)
	case inst.Load, inst.Store:
		addr := lsu.GenerateAddress(c.dx.Src1, uint32(inst.Immediate), inst.Funct3)
		if addr.Misaligned {
			reg.Trap, reg.Cause, reg.TVal = true, loadStoreCause(inst.Load, false), addr.Addr
			break
		}
		reg.Addr = addr
		if inst.Store {
			reg.StoreData = lsu.ShiftStoreData(addr, c.dx.Src2)
		}
	case inst.Jump, inst.Branch:
		c.execBranch(&reg, inst)
	case inst.CSR:
		c.execCSR(&reg, inst, flushAll)
	case inst.FenceI:
		reg.FenceIPending = true
	case inst.Mret:
		c.execMret(&reg)
	case inst.Ecall:
		reg.Trap, reg.Cause, reg.TVal = true, isa.CauseEcallFromM, 0
	case inst.Ebreak:
		reg.Trap, reg.Cause, reg.TVal = true, isa.CauseBreakpoint, c.dx.PC
	}

	return exOut{reg: reg, ready: true}
}

// execBranch resolves the actual branch/jump outcome and compares it
// against the D-stage prediction carried on c.dx, filling in the two
// asymmetric mispredict-recovery signals the PC mux consumes.
func (c *Core) execBranch(reg *XMReg, inst *insts.Instruction) {
	var taken bool
	var target uint32

	if inst.Jump {
		taken = true
		reg.Result = c.dx.PC + 4
		if inst.Rs1Re { // JALR
			target = (c.dx.Src1 + uint32(inst.Immediate)) &^ 1
		} else { // JAL
			target = c.dx.PC + uint32(inst.Immediate)
		}
	} else {
		flags := alu.FlagsFromSub(alu.Add(c.dx.Src1, c.dx.Src2, true))
		taken = alu.BranchTaken(inst.Funct3, flags)
		target = c.dx.PC + uint32(inst.Immediate)
	}

	if taken && misaligned(target) {
		reg.Trap, reg.Cause, reg.TVal = true, isa.CauseFetchMisaligned, target
		return
	}

	reg.BranchTaken = taken
	reg.BranchTarget = target

	switch {
	case c.dx.PredictTaken && !taken:
		reg.MispredictKind = mispredictTakenToNotTaken
	case !c.dx.PredictTaken && taken:
		reg.MispredictKind = mispredictNotTakenToTaken
	}
}

// execCSR performs the read-modify-write at X. The write itself is
// skipped when flushAll is set: an older instruction is trapping or
// taking an interrupt this same cycle (or, as Tick passes it, an older
// trap or MRET is leaving M), and this CSR instruction is
// about to be squashed along with it, so its side effect must never
// reach the CSR file. An illegal write or a reference to an
// unimplemented address both raise illegal-instruction, matching the
// RISC-V privileged spec's WLRL rule.
func (c *Core) execCSR(reg *XMReg, inst *insts.Instruction, flushAll bool) {
	old, ok := c.csrs.Read(uint16(inst.CSRAddr))
	if !ok {
		reg.Trap, reg.Cause, reg.TVal = true, isa.CauseIllegalInstruction, inst.Word
		return
	}
	reg.Result = old

	if !inst.CSRWe || flushAll {
		return
	}

	operand := c.dx.Src1
	next := operand
	switch {
	case inst.CSRSet:
		next = old | operand
	case inst.CSRClear:
		next = old &^ operand
	}

	if _, err := c.csrs.Write(uint16(inst.CSRAddr), next); err != nil {
		reg.Trap, reg.Cause, reg.TVal = true, isa.CauseIllegalInstruction, inst.Word
	}
}

// execMret is a recognized no-op at X: the actual privilege-mode
// return sequence (mstatus.mie restored from mpie, PC redirected to
// mepc) applies once the instruction reaches W commit, keyed off
// Inst.Mret directly rather than a dedicated flag on XMReg/MWReg.
func (c *Core) execMret(reg *XMReg) {}

func isMret(inst *insts.Instruction) bool { return inst != nil && inst.Mret }

// stepMemory evaluates xm (the current X->M boundary register),
// draining a load/store through the LSU or a FENCE.I through the
// write buffer, and reports ready=false while the bus/cache operation
// is still outstanding. When flushAll is set, an older instruction is
// trapping or taking an interrupt this same cycle, so xm is about to
// be squashed: the LSU is never stepped, since a store's write must
// not land once it's known to be on the wrong side of an exception.
func (c *Core) stepMemory(flushAll bool) memOut {
	if !c.xm.Valid {
		return memOut{ready: true}
	}
	if flushAll {
		return memOut{ready: true}
	}
	if c.xm.Trap {
		return memOut{reg: MWReg{Valid: true, PC: c.xm.PC, Inst: c.xm.Inst, Src1: c.xm.Src1, Src2: c.xm.Src2, Trap: true, Cause: c.xm.Cause, TVal: c.xm.TVal}, ready: true}
	}

	inst := c.xm.Inst

	switch {
	case inst.Load, inst.Store:
		res := c.lsuUnit.Step(c.xm.Addr, inst.Store, c.xm.StoreData, false)
		if !res.Ready {
			return memOut{ready: false}
		}
		if res.Err {
			return memOut{reg: MWReg{Valid: true, PC: c.xm.PC, Inst: inst, Src1: c.xm.Src1, Src2: c.xm.Src2, Trap: true, Cause: loadStoreCause(inst.Load, true), TVal: res.Fault}, ready: true}
		}
		reg := MWReg{Valid: true, PC: c.xm.PC, Inst: inst, Src1: c.xm.Src1, Src2: c.xm.Src2, Result: res.Data}
		reg.MemAddr, reg.MemMask = c.xm.Addr.Addr, c.xm.Addr.ByteMask
		if inst.Load {
			reg.MemData = res.Data
		} else {
			reg.MemData = c.xm.Src2
		}
		return memOut{reg: reg, ready: true}

	case c.xm.FenceIPending:
		res := c.lsuUnit.Step(lsu.Address{}, false, 0, true)
		if !res.Ready {
			return memOut{ready: false}
		}
		c.fenceFlush = true
		return memOut{reg: MWReg{Valid: true, PC: c.xm.PC, Inst: inst, Src1: c.xm.Src1, Src2: c.xm.Src2}, ready: true}

	default:
		return memOut{reg: MWReg{Valid: true, PC: c.xm.PC, Inst: inst, Src1: c.xm.Src1, Src2: c.xm.Src2, Result: c.xm.Result}, ready: true}
	}
}

// stepWriteback commits mw (the current M->W boundary register) to
// the register/CSR files, or enters a trap if mw carries one, or takes
// a pending interrupt ahead of whatever was about to commit. It
// reports a non-nil redirect and flushAll=true exactly when the whole
// pipeline must be squashed this cycle.
func (c *Core) stepWriteback() (trapRedirect, mretRedirect *uint32, flushAll bool) {
	if cause, ok := c.pendingInterrupt(); ok && c.mw.Valid && !c.debugHalted {
		target := c.enterTrap(isa.Cause(uint32(cause)|isa.InterruptBit), c.mw.PC, 0)
		return &target, nil, true
	}

	if !c.mw.Valid || c.debugHalted {
		return nil, nil, false
	}

	if c.mw.Trap {
		target := c.enterTrap(c.mw.Cause, c.mw.PC, c.mw.TVal)
		return &target, nil, true
	}

	if isMret(c.mw.Inst) {
		target := c.leaveTrap()
		return nil, &target, true
	}

	if c.mw.Inst.RdWe && c.mw.Inst.Rd != 0 {
		c.gprs.Write(c.mw.Inst.Rd, c.mw.Result)
	}

	c.Stats.Instructions++
	if minstret := c.csrs.Lookup(isa.CSRMinstret); minstret != nil {
		_ = minstret.Write(minstret.Raw() + 1)
	}

	return nil, nil, false
}

// pendingInterrupt reads mstatus/mie/mip and applies the fixed interrupt
// priority.
func (c *Core) pendingInterrupt() (isa.Cause, bool) {
	mstatus := c.csrs.Lookup(isa.CSRMstatus)
	mie := c.csrs.Lookup(isa.CSRMie)
	mip := c.csrs.Lookup(isa.CSRMip)
	mieEnabled := mstatus.Raw()>>csr.MstatusMIEBit&1 != 0
	return pendingInterrupt(mieEnabled, mie.Raw(), mip.Raw())
}

// enterTrap performs the machine-mode trap-entry sequence and returns
// the redirect target.
func (c *Core) enterTrap(cause isa.Cause, epc, tval uint32) uint32 {
	mstatus := c.csrs.Lookup(isa.CSRMstatus)
	mie := mstatus.Raw()>>csr.MstatusMIEBit&1 != 0
	raw := mstatus.Raw()
	raw &^= 1 << csr.MstatusMIEBit
	raw &^= 1 << csr.MstatusMPIEBit
	if mie {
		raw |= 1 << csr.MstatusMPIEBit
	}
	_ = mstatus.Write(raw)

	_ = c.csrs.Lookup(isa.CSRMepc).Write(epc)
	_ = c.csrs.Lookup(isa.CSRMcause).Write(uint32(cause))
	_ = c.csrs.Lookup(isa.CSRMtval).Write(tval)

	mtvec := c.csrs.Lookup(isa.CSRMtvec).Raw()
	base := (mtvec >> 2) << 2
	return base
}

// leaveTrap performs MRET's privilege-return sequence and returns mepc.
func (c *Core) leaveTrap() uint32 {
	mstatus := c.csrs.Lookup(isa.CSRMstatus)
	raw := mstatus.Raw()
	mpie := raw >> csr.MstatusMPIEBit & 1
	raw &^= 1 << csr.MstatusMIEBit
	if mpie != 0 {
		raw |= 1 << csr.MstatusMIEBit
	}
	raw |= 1 << csr.MstatusMPIEBit
	_ = mstatus.Write(raw)

	return c.csrs.Lookup(isa.CSRMepc).Raw()
}
