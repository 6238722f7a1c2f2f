package alu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/alu"
)

var _ = Describe("Shift", func() {
	It("shifts right logically, masking the shift amount to 5 bits", func() {
		Expect(alu.Shift(0x80000000, 4, true, false)).To(Equal(uint32(0x08000000)))
		Expect(alu.Shift(0x80000000, 32+4, true, false)).To(Equal(uint32(0x08000000)))
	})

	It("shifts right arithmetically, filling with the sign bit", func() {
		Expect(alu.Shift(0x80000000, 4, true, true)).To(Equal(uint32(0xF8000000)))
		Expect(alu.Shift(0x7FFFFFFF, 4, true, true)).To(Equal(uint32(0x07FFFFFF)))
	})

	It("shifts left via the bit-reverse trick", func() {
		Expect(alu.Shift(0x00000001, 4, false, false)).To(Equal(uint32(0x00000010)))
		Expect(alu.Shift(0xFFFFFFFF, 31, false, false)).To(Equal(uint32(0x80000000)))
	})

	It("is a no-op for a zero shift amount in every mode", func() {
		Expect(alu.Shift(0xDEADBEEF, 0, true, false)).To(Equal(uint32(0xDEADBEEF)))
		Expect(alu.Shift(0xDEADBEEF, 0, true, true)).To(Equal(uint32(0xDEADBEEF)))
		Expect(alu.Shift(0xDEADBEEF, 0, false, false)).To(Equal(uint32(0xDEADBEEF)))
	})
})
