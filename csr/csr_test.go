package csr_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/csr"
)

func TestCSR(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CSR Suite")
}

var _ = Describe("Register", func() {
	It("WPRI fields ignore writes and read zero", func() {
		r := csr.NewRegister("x",
			csr.Field{Name: "wpri", Offset: 0, Width: 8, Access: csr.AccessWPRI},
			csr.Field{Name: "rw", Offset: 8, Width: 8, Access: csr.AccessWARL},
		)
		Expect(r.Write(0xFFFF)).To(Succeed())
		Expect(r.Read()).To(Equal(uint32(0xFF00)))
	})

	It("WARL legalizes silently instead of rejecting", func() {
		r := csr.NewRegister("x",
			csr.Field{Name: "f", Offset: 0, Width: 2, Access: csr.AccessWARL,
				Legalize: func(v uint32) uint32 { return 0 }},
		)
		Expect(r.Write(3)).To(Succeed())
		Expect(r.Read()).To(Equal(uint32(0)))
	})

	It("WLRL rejects an illegal write and reports an error", func() {
		r := csr.NewRegister("x",
			csr.Field{Name: "f", Offset: 0, Width: 2, Access: csr.AccessWLRL,
				Valid: func(v uint32) bool { return v != 3 }},
		)
		Expect(r.Write(3)).To(HaveOccurred())
		Expect(r.Read()).To(Equal(uint32(0)))
	})

	It("leaves the register untouched on a rejected WLRL write", func() {
		r := csr.NewRegister("x",
			csr.Field{Name: "f", Offset: 0, Width: 2, Access: csr.AccessWLRL,
				Valid: func(v uint32) bool { return v != 3 }},
		)
		Expect(r.Write(1)).To(Succeed())
		Expect(r.Write(3)).To(HaveOccurred())
		Expect(r.Read()).To(Equal(uint32(1)))
	})
})

var _ = Describe("File", func() {
	var f *csr.File

	BeforeEach(func() {
		f = csr.New(true)
	})

	It("restores mscratch across a csrrw/csrrw pair", func() {
		// csrrw x,mscratch,y; csrrw z,mscratch,x restores mscratch and z=y.
		ok, err := f.Write(0x340, 0xAAAA) // initial mscratch
		Expect(ok).To(BeTrue())
		Expect(err).NotTo(HaveOccurred())

		// csrrw x, mscratch, y with y = 0xBBBB
		x, ok := f.Read(0x340)
		Expect(ok).To(BeTrue())
		Expect(x).To(Equal(uint32(0xAAAA)))
		ok, err = f.Write(0x340, 0xBBBB)
		Expect(ok).To(BeTrue())
		Expect(err).NotTo(HaveOccurred())

		// csrrw z, mscratch, x
		z, ok := f.Read(0x340)
		Expect(ok).To(BeTrue())
		Expect(z).To(Equal(uint32(0xBBBB)))
		_, err = f.Write(0x340, x)
		Expect(err).NotTo(HaveOccurred())

		restored, _ := f.Read(0x340)
		Expect(restored).To(Equal(uint32(0xAAAA)))
	})

	It("advertises the M extension in misa only when enabled", func() {
		withM := csr.New(true)
		v, ok := withM.Read(0x301)
		Expect(ok).To(BeTrue())
		Expect(v & (1 << 12)).NotTo(BeZero())

		withoutM := csr.New(false)
		v, ok = withoutM.Read(0x301)
		Expect(ok).To(BeTrue())
		Expect(v & (1 << 12)).To(BeZero())
	})

	It("reports mtvec.base shifted left by 2 for the trap vector", func() {
		ok, err := f.Write(0x305, 0x80001000)
		Expect(ok).To(BeTrue())
		Expect(err).NotTo(HaveOccurred())
		v, _ := f.Read(0x305)
		Expect(v & ^uint32(0b11)).To(Equal(uint32(0x80001000)))
	})

	It("returns ok=false for an unimplemented address", func() {
		_, ok := f.Read(0x7FF)
		Expect(ok).To(BeFalse())
	})
})
