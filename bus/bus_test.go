package bus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/bus"
)

var _ = Describe("SelMask", func() {
	It("selects a single byte lane for a byte access", func() {
		Expect(bus.SelMask(1, 0)).To(Equal(uint8(0b0001)))
		Expect(bus.SelMask(1, 3)).To(Equal(uint8(0b1000)))
	})

	It("selects a half-word pair of lanes, aligned to the even lane", func() {
		Expect(bus.SelMask(2, 0)).To(Equal(uint8(0b0011)))
		Expect(bus.SelMask(2, 2)).To(Equal(uint8(0b1100)))
	})

	It("selects all four lanes for a word access", func() {
		Expect(bus.SelMask(4, 0)).To(Equal(uint8(0b1111)))
	})
})
