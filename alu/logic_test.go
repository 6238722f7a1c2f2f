package alu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/alu"
	"github.com/sarchlab/rv32p/isa"
)

var _ = Describe("Logic", func() {
	It("selects XOR, OR, AND by funct3", func() {
		Expect(alu.Logic(isa.F3Xor, 0b1100, 0b1010)).To(Equal(uint32(0b0110)))
		Expect(alu.Logic(isa.F3Or, 0b1100, 0b1010)).To(Equal(uint32(0b1110)))
		Expect(alu.Logic(isa.F3And, 0b1100, 0b1010)).To(Equal(uint32(0b1000)))
	})
})
