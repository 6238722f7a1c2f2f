// Package insts provides RV32IM instruction definitions and decoding.
//
// This package implements decoding of RV32IM machine code into a single
// flattened micro-op record. It supports:
//   - R/I/S/B/U/J instruction formats with correct sign-extension
//   - The integer base (ADD/SUB, logic, shift, compare, branch, jump,
//     LUI/AUIPC, load/store)
//   - The M extension (MUL/MULH/MULHSU/MULHU, DIV/DIVU/REM/REMU)
//   - FENCE.I and the CSR/ECALL/EBREAK/MRET system instructions
package insts

import "github.com/sarchlab/rv32p/isa"

// Format identifies an instruction's encoding format.
type Format uint8

// Instruction formats.
const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// Instruction is the decoded, immutable per-inflight micro-op record.
// Exactly one of the op-group booleans is set, unless Illegal is set
// (in which case none are).
type Instruction struct {
	PC          uint64
	Word        uint32
	Rd          uint8
	Rs1         uint8
	Rs2         uint8
	RdWe        bool
	Rs1Re       bool
	Rs2Re       bool
	Immediate   int32
	Funct3      isa.Funct3
	Format      Format

	// One-hot op group.
	Lui     bool
	Auipc   bool
	Jump    bool
	Branch  bool
	Load    bool
	Store   bool
	Logic   bool
	Adder   bool
	Shift   bool
	Compare bool
	Multiply bool
	Divide   bool
	FenceI   bool
	CSR      bool
	Ecall    bool
	Ebreak   bool
	Mret     bool
	Illegal  bool

	// Sub-controls.
	Direction bool // 1 = right shift
	Sext      bool // arithmetic shift
	AdderSub  bool // 1 = subtract
	BypassX   bool // result known by end of X
	BypassM   bool // result known by end of M

	// CSR sub-controls.
	CSRAddr  isa.CSRAddr
	CSRWe    bool
	CSRSet   bool // CSRRS/CSRRSI
	CSRClear bool // CSRRC/CSRRCI
	CSRFmtI  bool // *I variants source the immediate, not rs1

	// Static branch prediction (filled in by the predictor at D, kept
	// on the micro-op so X can compare against the outcome).
	BranchPredictTaken bool
	BranchTarget       uint64
}

// Decoder is a stateless combinational decoder: one call per fetched
// word, no internal state carried across calls.
type Decoder struct {
	withMulDiv bool
}

// NewDecoder creates a decoder. withMulDiv gates whether MUL/DIV/REM
// opcodes decode as Multiply/Divide or fall through to Illegal,
// matching the core's with_muldiv configuration option.
func NewDecoder(withMulDiv bool) *Decoder {
	return &Decoder{withMulDiv: withMulDiv}
}

func bits(word uint32, hi, lo int) uint32 {
	return (word >> uint(lo)) & ((1 << uint(hi-lo+1)) - 1)
}

func signExtend(v uint32, bit int) int32 {
	shift := uint(31 - bit)
	return int32(v<<shift) >> shift
}

// Decode maps a 32-bit instruction word to a micro-op. word[1:0] must
// be 0b11 for a legal instruction; anything else sets Illegal.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Word: word}

	if word&0b11 != 0b11 {
		inst.Illegal = true
		return inst
	}

	opcode := isa.Opcode(bits(word, 6, 2))
	funct3 := isa.Funct3(bits(word, 14, 12))
	funct7 := isa.Funct7(bits(word, 31, 25))
	funct12 := isa.Funct12(bits(word, 31, 20))

	rd := uint8(bits(word, 11, 7))
	rs1 := uint8(bits(word, 19, 15))
	rs2 := uint8(bits(word, 24, 20))

	inst.Rd = rd
	inst.Rs1 = rs1
	inst.Rs2 = rs2
	inst.Funct3 = funct3

	var format Format
	switch opcode {
	case isa.OpLui, isa.OpAuipc:
		format = FormatU
	case isa.OpJal:
		format = FormatJ
	case isa.OpJalr, isa.OpLoad, isa.OpOpImm, isa.OpMiscMem, isa.OpSystem:
		format = FormatI
	case isa.OpBranch:
		format = FormatB
	case isa.OpStore:
		format = FormatS
	case isa.OpOp:
		format = FormatR
	default:
		inst.Illegal = true
		return inst
	}
	inst.Format = format

	switch format {
	case FormatI:
		inst.Immediate = signExtend(bits(word, 31, 20), 11)
	case FormatS:
		imm := bits(word, 11, 7) | (bits(word, 31, 25) << 5)
		inst.Immediate = signExtend(imm, 11)
	case FormatB:
		imm := (bits(word, 11, 8) << 1) |
			(bits(word, 30, 25) << 5) |
			(bits(word, 7, 7) << 11) |
			(bits(word, 31, 31) << 12)
		inst.Immediate = signExtend(imm, 12)
	case FormatU:
		inst.Immediate = int32(bits(word, 31, 12) << 12)
	case FormatJ:
		imm := (bits(word, 30, 21) << 1) |
			(bits(word, 20, 20) << 11) |
			(bits(word, 19, 12) << 12) |
			(bits(word, 31, 31) << 20)
		inst.Immediate = signExtend(imm, 20)
	}

	inst.RdWe = format == FormatR || format == FormatI || format == FormatU || format == FormatJ
	inst.Rs1Re = format == FormatR || format == FormatI || format == FormatS || format == FormatB
	inst.Rs2Re = format == FormatR || format == FormatS || format == FormatB

	matchCompare := (opcode == isa.OpOpImm && (funct3 == isa.F3Slt || funct3 == isa.F3Sltu)) ||
		(opcode == isa.OpOp && funct7 == isa.F7Add && (funct3 == isa.F3Slt || funct3 == isa.F3Sltu))
	matchBranch := opcode == isa.OpBranch
	matchAdder := (opcode == isa.OpOpImm && funct3 == isa.F3Add) ||
		(opcode == isa.OpOp && funct3 == isa.F3Add && (funct7 == isa.F7Add || funct7 == isa.F7Sub))
	matchLogic := (opcode == isa.OpOpImm && (funct3 == isa.F3Xor || funct3 == isa.F3Or || funct3 == isa.F3And)) ||
		(opcode == isa.OpOp && funct7 == isa.F7Add && (funct3 == isa.F3Xor || funct3 == isa.F3Or || funct3 == isa.F3And))
	matchShift := (opcode == isa.OpOpImm && (funct3 == isa.F3Sll || (funct3 == isa.F3Sr && (funct7 == isa.F7Srl || funct7 == isa.F7Sra)))) ||
		(opcode == isa.OpOp && (funct3 == isa.F3Sll || funct3 == isa.F3Sr) && (funct7 == isa.F7Srl || funct7 == isa.F7Sra))
	matchMultiply := d.withMulDiv && opcode == isa.OpOp && funct7 == isa.F7MulDiv &&
		(funct3 == isa.F3Mul || funct3 == isa.F3Mulh || funct3 == isa.F3Mulhsu || funct3 == isa.F3Mulhu)
	matchDivide := d.withMulDiv && opcode == isa.OpOp && funct7 == isa.F7MulDiv &&
		(funct3 == isa.F3Div || funct3 == isa.F3Divu || funct3 == isa.F3Rem || funct3 == isa.F3Remu)
	matchLui := opcode == isa.OpLui
	matchAuipc := opcode == isa.OpAuipc
	matchJump := opcode == isa.OpJal || (opcode == isa.OpJalr && funct3 == 0)
	matchLoad := opcode == isa.OpLoad &&
		(funct3 == isa.F3B || funct3 == isa.F3BU || funct3 == isa.F3H || funct3 == isa.F3HU || funct3 == isa.F3W)
	matchStore := opcode == isa.OpStore &&
		(funct3 == isa.F3B || funct3 == isa.F3H || funct3 == isa.F3W)
	matchFenceI := opcode == isa.OpMiscMem && funct3 == isa.F3FenceI
	matchCSR := opcode == isa.OpSystem &&
		(funct3 == isa.F3Csrrw || funct3 == isa.F3Csrrs || funct3 == isa.F3Csrrc ||
			funct3 == isa.F3Csrrwi || funct3 == isa.F3Csrrsi || funct3 == isa.F3Csrrci)
	matchPriv := opcode == isa.OpSystem && funct3 == isa.F3Priv
	matchEcall := matchPriv && funct12 == isa.F12Ecall
	matchEbreak := matchPriv && funct12 == isa.F12Ebreak
	matchMret := matchPriv && funct12 == isa.F12Mret

	inst.Compare = matchCompare
	inst.Branch = matchBranch
	inst.Adder = matchAdder
	inst.AdderSub = inst.Rs2Re && funct7 == isa.F7Sub
	inst.Logic = matchLogic
	inst.Shift = matchShift
	inst.Direction = funct3 == isa.F3Sr
	inst.Sext = funct7 == isa.F7Sra
	inst.Multiply = matchMultiply
	inst.Divide = matchDivide
	inst.Lui = matchLui
	inst.Auipc = matchAuipc
	inst.Jump = matchJump
	inst.Load = matchLoad
	inst.Store = matchStore
	inst.FenceI = matchFenceI
	inst.CSR = matchCSR
	inst.Ecall = matchEcall
	inst.Ebreak = matchEbreak
	inst.Mret = matchMret

	if matchCSR {
		inst.CSRAddr = isa.CSRAddr(bits(word, 31, 20))
		inst.CSRFmtI = funct3&0b100 != 0
		// csr_we = ~funct3[1] | (rs1 != 0): CSRRW/CSRRWI always write;
		// CSRRS/CSRRC/CSRRSI/CSRRCI only write when rs1 (or the
		// immediate-mode "rs1" field) is nonzero.
		inst.CSRWe = funct3&0b010 == 0 || rs1 != 0
		inst.CSRSet = funct3&0b011 == 0b010
		inst.CSRClear = funct3&0b011 == 0b011
	}

	inst.BypassX = inst.Adder || inst.Logic || inst.Lui || inst.Auipc || inst.CSR
	inst.BypassM = inst.Compare || inst.Divide || inst.Shift

	inst.Illegal = !(inst.Compare || inst.Branch || inst.Adder || inst.Logic ||
		inst.Multiply || inst.Divide || inst.Shift || inst.Lui || inst.Auipc ||
		inst.Jump || inst.Load || inst.Store || inst.CSR || inst.Ecall ||
		inst.Ebreak || inst.Mret || inst.FenceI)

	return inst
}
