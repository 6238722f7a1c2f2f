package alu

import "github.com/sarchlab/rv32p/isa"

// Multiply computes the 64-bit product of src1 and src2, each sign- or
// zero-extended to 33 bits per funct3, and selects the low or high
// 32 bits of the result. The extra bit lets one signed 64-bit
// product serve MUL, MULH, and MULHSU; MULHU takes its own unsigned
// 64-bit path.
func Multiply(funct3 isa.Funct3, src1, src2 uint32) uint32 {
	if funct3 == isa.F3Mulhu {
		// Both operands unsigned: the product can exceed int64's range,
		// so this case alone is done in native uint64 arithmetic.
		product := uint64(src1) * uint64(src2)
		return uint32(product >> 32)
	}

	var a, b int64

	switch funct3 {
	case isa.F3Mul, isa.F3Mulh:
		a = int64(int32(src1))
		b = int64(int32(src2))
	default: // F3Mulhsu
		a = int64(int32(src1))
		b = int64(uint64(src2))
	}

	product := a * b

	if funct3 == isa.F3Mul {
		return uint32(product)
	}
	return uint32(uint64(product) >> 32)
}
