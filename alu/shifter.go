package alu

import "math/bits"

// Shift implements the shifter unit: a right-shift engine of width 32,
// where a left shift is realized by bit-reversing the input, shifting
// right, and bit-reversing the result. direction selects
// right (true) vs left (false); arithmetic selects sign-fill for a
// right shift (SRA); amount is masked to 5 bits (RV32 shamt width).
func Shift(src1 uint32, amount uint32, direction, arithmetic bool) uint32 {
	shamt := amount & 0x1F

	if direction {
		if arithmetic {
			return uint32(int32(src1) >> shamt)
		}
		return src1 >> shamt
	}

	// Left shift: bit-reverse, logical-right-shift, bit-reverse back.
	reversed := bits.Reverse32(src1)
	shifted := reversed >> shamt
	return bits.Reverse32(shifted)
}
