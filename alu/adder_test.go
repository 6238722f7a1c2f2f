package alu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/alu"
)

var _ = Describe("Add", func() {
	It("adds two operands and reports carry out", func() {
		r := alu.Add(0xFFFFFFFF, 1, false)
		Expect(r.Result).To(Equal(uint32(0)))
		Expect(r.Carry).To(BeTrue())
		Expect(r.Overflow).To(BeFalse())
	})

	It("subtracts when sub is set, reporting borrow as carry", func() {
		r := alu.Add(1, 2, true)
		Expect(r.Result).To(Equal(uint32(0xFFFFFFFF)))
		Expect(r.Carry).To(BeTrue())
	})

	It("reports no borrow when the minuend is not less than the subtrahend", func() {
		r := alu.Add(5, 2, true)
		Expect(r.Result).To(Equal(uint32(3)))
		Expect(r.Carry).To(BeFalse())
	})

	It("detects signed overflow on addition of two positives", func() {
		r := alu.Add(0x7FFFFFFF, 1, false)
		Expect(r.Overflow).To(BeTrue())
	})

	It("detects signed overflow on subtraction of a negative from a positive", func() {
		r := alu.Add(0x7FFFFFFF, 0x80000000, true)
		Expect(r.Overflow).To(BeTrue())
	})

	It("reports no overflow for ordinary operations", func() {
		r := alu.Add(1, 1, false)
		Expect(r.Overflow).To(BeFalse())
	})
})
