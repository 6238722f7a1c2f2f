package alu

import "github.com/sarchlab/rv32p/isa"

// Logic selects XOR/OR/AND by funct3.
func Logic(funct3 isa.Funct3, src1, src2 uint32) uint32 {
	switch funct3 {
	case isa.F3Xor:
		return src1 ^ src2
	case isa.F3Or:
		return src1 | src2
	case isa.F3And:
		return src1 & src2
	default:
		return 0
	}
}
