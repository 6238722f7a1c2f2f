package pipeline

import (
	"github.com/sarchlab/rv32p/insts"
	"github.com/sarchlab/rv32p/isa"
	"github.com/sarchlab/rv32p/lsu"
)

// AFReg is the A->F boundary: just the PC the address-generate stage has
// selected for this cycle's fetch.
type AFReg struct {
	Valid bool
	PC    uint32
}

// Clear voids the register for the next cycle.
func (r *AFReg) Clear() { *r = AFReg{} }

// FDReg is the F->D boundary.
type FDReg struct {
	Valid       bool
	PC          uint32
	Instruction uint32
	FetchErr    bool
	FaultAddr   uint32
}

// Clear voids the register for the next cycle.
func (r *FDReg) Clear() { *r = FDReg{} }

// DXReg is the D->X boundary: the decoded micro-op plus its resolved
// source operands.
type DXReg struct {
	Valid bool
	PC    uint32
	Inst  *insts.Instruction
	Src1  uint32
	Src2  uint32

	PredictTaken  bool
	PredictTarget uint32

	Trap  bool
	Cause isa.Cause
	TVal  uint32
}

// Clear voids the register for the next cycle.
func (r *DXReg) Clear() { *r = DXReg{} }

// XMReg is the X->M boundary: the execute result plus anything M needs
// to complete a load or store.
type XMReg struct {
	Valid bool
	PC    uint32
	Inst  *insts.Instruction

	// Src1/Src2 are the resolved operand values X computed on, carried
	// through only so a retired instruction can still report its
	// rs1_rdata/rs2_rdata to an rvfi.Monitor once it reaches W.
	Src1, Src2 uint32

	Result    uint32
	Addr      lsu.Address
	StoreData uint32

	BranchTaken    bool
	BranchTarget   uint32
	MispredictKind mispredictKind

	FenceIPending bool

	Trap  bool
	Cause isa.Cause
	TVal  uint32
}

// Clear voids the register for the next cycle.
func (r *XMReg) Clear() { *r = XMReg{} }

// mispredictKind distinguishes the two asymmetric misprediction
// recovery paths the PC priority mux consumes.
type mispredictKind uint8

const (
	mispredictNone mispredictKind = iota
	// mispredictTakenToNotTaken: predicted taken, actually not taken.
	// Recovered by replaying from the branch's own PC+4.
	mispredictTakenToNotTaken
	// mispredictNotTakenToTaken: predicted not taken, actually taken.
	// Recovered by redirecting to the resolved branch target.
	mispredictNotTakenToTaken
)

// MWReg is the M->W boundary: the value ready to commit to the register
// file or CSR file.
type MWReg struct {
	Valid bool
	PC    uint32
	Inst  *insts.Instruction

	// Src1/Src2 are passed through from XMReg unchanged; a retired
	// instruction's rs1_rdata/rs2_rdata are whatever it read at D/X,
	// regardless of what M or W do afterward.
	Src1, Src2 uint32

	Result uint32

	// MemAddr/MemMask/MemData describe the one memory access a retiring
	// load or store made, if any. MemData holds the loaded word for a
	// load and the raw (unshifted) register value offered to the store
	// for a store; an instruction that is neither Load nor Store leaves
	// these at zero.
	MemAddr uint32
	MemMask uint8
	MemData uint32

	Trap  bool
	Cause isa.Cause
	TVal  uint32
}

// Clear voids the register for the next cycle.
func (r *MWReg) Clear() { *r = MWReg{} }
