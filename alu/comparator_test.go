package alu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/alu"
	"github.com/sarchlab/rv32p/isa"
)

func flagsOf(src1, src2 uint32) alu.Flags {
	return alu.FlagsFromSub(alu.Add(src1, src2, true))
}

var _ = Describe("BranchTaken", func() {
	It("BEQ/BNE compare for equality", func() {
		Expect(alu.BranchTaken(isa.F3Beq, flagsOf(5, 5))).To(BeTrue())
		Expect(alu.BranchTaken(isa.F3Bne, flagsOf(5, 5))).To(BeFalse())
		Expect(alu.BranchTaken(isa.F3Bne, flagsOf(5, 6))).To(BeTrue())
	})

	It("BLT/BGE compare as signed", func() {
		Expect(alu.BranchTaken(isa.F3Blt, flagsOf(^uint32(0), 1))).To(BeTrue()) // -1 < 1
		Expect(alu.BranchTaken(isa.F3Bge, flagsOf(1, ^uint32(0)))).To(BeTrue()) // 1 >= -1
	})

	It("BLTU/BGEU compare as unsigned", func() {
		Expect(alu.BranchTaken(isa.F3Bltu, flagsOf(1, ^uint32(0)))).To(BeTrue()) // 1 < 0xFFFFFFFF
		Expect(alu.BranchTaken(isa.F3Bgeu, flagsOf(^uint32(0), 1))).To(BeTrue())
		Expect(alu.BranchTaken(isa.F3Bltu, flagsOf(5, 5))).To(BeFalse())
	})
})

var _ = Describe("SetLessThan", func() {
	It("SLT compares as signed", func() {
		Expect(alu.SetLessThan(isa.F3Slt, flagsOf(^uint32(0), 0))).To(Equal(uint32(1)))
		Expect(alu.SetLessThan(isa.F3Slt, flagsOf(0, ^uint32(0)))).To(Equal(uint32(0)))
	})

	It("SLTU compares as unsigned", func() {
		Expect(alu.SetLessThan(isa.F3Sltu, flagsOf(0, ^uint32(0)))).To(Equal(uint32(1)))
		Expect(alu.SetLessThan(isa.F3Sltu, flagsOf(^uint32(0), 0))).To(Equal(uint32(0)))
	})
})
