package alu

import "github.com/sarchlab/rv32p/isa"

// Flags carries the condition bits the comparator consumes from the
// adder, which always runs src1-src2 alongside a branch or set-less-than
// instruction so these flags are available for free.
type Flags struct {
	Zero     bool // src1 - src2 == 0
	Negative bool // bit 31 of src1 - src2
	Overflow bool // signed overflow of src1 - src2
	Carry    bool // borrow out of src1 - src2 (unsigned src1 < src2)
}

// FlagsFromSub derives Flags from a subtraction's AdderResult.
func FlagsFromSub(r AdderResult) Flags {
	return Flags{
		Zero:     r.Result == 0,
		Negative: r.Result>>31&1 != 0,
		Overflow: r.Overflow,
		Carry:    r.Carry,
	}
}

// BranchTaken evaluates a branch condition from funct3 and the flags of
// src1-src2, matching minerva's compare unit.
func BranchTaken(funct3 isa.Funct3, f Flags) bool {
	switch funct3 {
	case isa.F3Beq:
		return f.Zero
	case isa.F3Bne:
		return !f.Zero
	case isa.F3Blt:
		return f.Negative != f.Overflow
	case isa.F3Bge:
		return f.Negative == f.Overflow
	case isa.F3Bltu:
		return !f.Zero && f.Carry
	case isa.F3Bgeu:
		return !f.Carry
	default:
		return false
	}
}

// SetLessThan evaluates SLT/SLTU from funct3 and the flags of src1-src2.
func SetLessThan(funct3 isa.Funct3, f Flags) uint32 {
	var taken bool
	switch funct3 {
	case isa.F3Slt:
		taken = f.Negative != f.Overflow
	case isa.F3Sltu:
		taken = f.Carry
	}
	if taken {
		return 1
	}
	return 0
}
