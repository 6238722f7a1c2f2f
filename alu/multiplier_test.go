package alu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/alu"
	"github.com/sarchlab/rv32p/isa"
)

var _ = Describe("Multiply", func() {
	It("MUL returns the low 32 bits regardless of sign", func() {
		Expect(alu.Multiply(isa.F3Mul, 6, 7)).To(Equal(uint32(42)))
		Expect(alu.Multiply(isa.F3Mul, ^uint32(0), 2)).To(Equal(uint32(0xFFFFFFFE))) // -1*2
	})

	It("MULH returns the high 32 bits of a signed*signed product", func() {
		Expect(alu.Multiply(isa.F3Mulh, ^uint32(0), ^uint32(0))).To(Equal(uint32(0))) // -1*-1=1
		Expect(alu.Multiply(isa.F3Mulh, 0x80000000, 0x80000000)).To(Equal(uint32(0x40000000)))
	})

	It("MULHSU treats src1 as signed and src2 as unsigned", func() {
		Expect(alu.Multiply(isa.F3Mulhsu, ^uint32(0), 2)).To(Equal(uint32(0xFFFFFFFF))) // -1*2 high bits
	})

	It("MULHU treats both operands as unsigned", func() {
		Expect(alu.Multiply(isa.F3Mulhu, 0xFFFFFFFF, 0xFFFFFFFF)).To(Equal(uint32(0xFFFFFFFE)))
	})
})
