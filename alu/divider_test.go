package alu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/alu"
	"github.com/sarchlab/rv32p/isa"
)

func runDivider(funct3 isa.Funct3, dividend, divisor uint32) *alu.Divider {
	d := &alu.Divider{}
	d.Start(funct3, dividend, divisor)
	for !d.Tick() {
	}
	return d
}

var _ = Describe("Divider", func() {
	It("computes unsigned quotient and remainder over 32 cycles", func() {
		d := &alu.Divider{}
		d.Start(isa.F3Divu, 7, 2)
		Expect(d.Busy()).To(BeTrue())

		cycles := 0
		for !d.Tick() {
			cycles++
			Expect(cycles).To(BeNumerically("<", 32))
		}
		Expect(cycles).To(Equal(31))
		Expect(d.Quotient()).To(Equal(uint32(3)))
		Expect(d.Remainder()).To(Equal(uint32(1)))
	})

	It("computes signed quotient and remainder, truncating toward zero", func() {
		d := runDivider(isa.F3Div, uint32(int32(-7)), uint32(int32(2)))
		Expect(int32(d.Quotient())).To(Equal(int32(-3)))
		Expect(int32(d.Remainder())).To(Equal(int32(-1)))
	})

	It("resolves divide-by-zero immediately without iterating", func() {
		d := &alu.Divider{}
		d.Start(isa.F3Divu, 42, 0)
		Expect(d.Busy()).To(BeFalse())
		Expect(d.Quotient()).To(Equal(uint32(0xFFFFFFFF)))
		Expect(d.Remainder()).To(Equal(uint32(42)))
	})

	It("resolves the signed overflow case MIN_INT/-1 immediately", func() {
		d := &alu.Divider{}
		d.Start(isa.F3Div, 0x80000000, 0xFFFFFFFF)
		Expect(d.Busy()).To(BeFalse())
		Expect(d.Quotient()).To(Equal(uint32(0x80000000)))
		Expect(d.Remainder()).To(Equal(uint32(0)))
	})

	It("selects quotient or remainder by funct3 via Result", func() {
		d := runDivider(isa.F3Div, 7, 2)
		Expect(d.Result(isa.F3Div)).To(Equal(d.Quotient()))
		Expect(d.Result(isa.F3Rem)).To(Equal(d.Remainder()))
	})
})
