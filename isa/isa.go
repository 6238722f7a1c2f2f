// Package isa defines the RV32IM instruction encoding constants and the
// machine-mode CSR addresses and trap cause codes used throughout the core.
package isa

// Opcode holds the 5-bit opcode extracted from instruction bits [6:2].
// Bits [1:0] are always 0b11 for a legal 32-bit RV32 instruction; the
// decoder checks that separately.
type Opcode uint8

// RV32I/M opcodes.
const (
	OpLoad    Opcode = 0b00000
	OpMiscMem Opcode = 0b00011
	OpOpImm   Opcode = 0b00100
	OpAuipc   Opcode = 0b00101
	OpStore   Opcode = 0b01000
	OpOp      Opcode = 0b01100
	OpLui     Opcode = 0b01101
	OpBranch  Opcode = 0b11000
	OpJalr    Opcode = 0b11001
	OpJal     Opcode = 0b11011
	OpSystem  Opcode = 0b11100
)

// Funct3 holds the 3-bit funct3 field, shared across many meanings
// depending on the opcode it accompanies.
type Funct3 uint8

const (
	F3Beq  Funct3 = 0b000
	F3Bne  Funct3 = 0b001
	F3Blt  Funct3 = 0b100
	F3Bge  Funct3 = 0b101
	F3Bltu Funct3 = 0b110
	F3Bgeu Funct3 = 0b111

	F3B  Funct3 = 0b000
	F3H  Funct3 = 0b001
	F3W  Funct3 = 0b010
	F3BU Funct3 = 0b100
	F3HU Funct3 = 0b101

	F3Add  Funct3 = 0b000
	F3Sll  Funct3 = 0b001
	F3Slt  Funct3 = 0b010
	F3Sltu Funct3 = 0b011
	F3Xor  Funct3 = 0b100
	F3Sr   Funct3 = 0b101
	F3Or   Funct3 = 0b110
	F3And  Funct3 = 0b111

	F3Fence   Funct3 = 0b000
	F3FenceI  Funct3 = 0b001

	F3Priv   Funct3 = 0b000
	F3Csrrw  Funct3 = 0b001
	F3Csrrs  Funct3 = 0b010
	F3Csrrc  Funct3 = 0b011
	F3Csrrwi Funct3 = 0b101
	F3Csrrsi Funct3 = 0b110
	F3Csrrci Funct3 = 0b111

	F3Mul    Funct3 = 0b000
	F3Mulh   Funct3 = 0b001
	F3Mulhsu Funct3 = 0b010
	F3Mulhu  Funct3 = 0b011
	F3Div    Funct3 = 0b100
	F3Divu   Funct3 = 0b101
	F3Rem    Funct3 = 0b110
	F3Remu   Funct3 = 0b111
)

// Funct7 holds the 7-bit funct7 field distinguishing ADD/SUB, SRL/SRA,
// and the M-extension's MULDIV group from the base integer group.
type Funct7 uint8

const (
	F7Add    Funct7 = 0b0000000
	F7Srl    Funct7 = 0b0000000
	F7MulDiv Funct7 = 0b0000001
	F7Sub    Funct7 = 0b0100000
	F7Sra    Funct7 = 0b0100000
)

// Funct12 holds the 12-bit immediate field of SYSTEM/PRIV instructions
// (ECALL, EBREAK, MRET).
type Funct12 uint16

const (
	F12Ecall  Funct12 = 0x000
	F12Ebreak Funct12 = 0x001
	F12Mret   Funct12 = 0x302
)

// CSRAddr is a 12-bit CSR address.
type CSRAddr uint16

// Machine-mode CSR addresses, plus the microarchitectural IRQ_MASK /
// IRQ_PENDING pair this core exposes for the fast-interrupt lines, and
// the mcycle/minstret performance counters.
const (
	CSRMstatus    CSRAddr = 0x300
	CSRMisa       CSRAddr = 0x301
	CSRMie        CSRAddr = 0x304
	CSRMtvec      CSRAddr = 0x305
	CSRMscratch   CSRAddr = 0x340
	CSRMepc       CSRAddr = 0x341
	CSRMcause     CSRAddr = 0x342
	CSRMtval      CSRAddr = 0x343
	CSRMip        CSRAddr = 0x344
	CSRIrqMask    CSRAddr = 0x330
	CSRIrqPending CSRAddr = 0x360
	CSRMcycle     CSRAddr = 0xB00
	CSRMinstret   CSRAddr = 0xB02
)

// Cause identifies the reason for a trap, encoded into mcause. Exception
// causes occupy the low bits with the interrupt bit (bit 31) clear;
// interrupt causes set that bit (represented here by OR-ing InterruptBit
// at the call site, matching RISC-V mcause convention).
type Cause uint32

const (
	CauseFetchMisaligned    Cause = 0
	CauseFetchAccessFault   Cause = 1
	CauseIllegalInstruction Cause = 2
	CauseBreakpoint         Cause = 3
	CauseLoadMisaligned     Cause = 4
	CauseLoadAccessFault    Cause = 5
	CauseStoreMisaligned    Cause = 6
	CauseStoreAccessFault   Cause = 7
	CauseEcallFromM         Cause = 11
)

const (
	CauseMSoftwareInterrupt Cause = 3
	CauseMTimerInterrupt    Cause = 7
	CauseMExternalInterrupt Cause = 11
)

// InterruptBit is ORed into mcause for interrupt causes (bit 31 of a
// 32-bit mcause register).
const InterruptBit uint32 = 1 << 31

// NopInstruction is the canonical RV32 NOP (ADDI x0, x0, 0), substituted
// downstream of a faulting fetch so the trap is delivered in-order
// without a secondary decode fault.
const NopInstruction uint32 = 0x00000013
