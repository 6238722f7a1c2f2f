package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/core"
	"github.com/sarchlab/rv32p/loader"
)

var _ = Describe("NewFromProgram", func() {
	It("resets at the program's entry point, loads segments, and seeds the stack pointer", func() {
		prog := &loader.Program{
			EntryPoint: 0x80000000,
			InitialSP:  0x7FFF0000,
			Segments: []loader.Segment{
				{
					VirtAddr: 0x80000000,
					Data:     []byte{0x13, 0x05, 0x50, 0x00}, // addi x10, x0, 5
					MemSize:  8,                              // 4 extra BSS bytes
				},
			},
		}

		cfg := core.DefaultConfig()
		cfg.MemSize = 4096

		c := core.NewFromProgram(cfg, prog)

		Expect(c.Memory().ReadWord(0x80000000)).To(Equal(uint32(0x00500513)))
		Expect(c.Memory().ReadWord(0x80000004)).To(Equal(uint32(0)))
		Expect(c.GPR().Read(2)).To(Equal(uint32(0x7FFF0000)))

		c.RunCycles(20)
		Expect(c.GPR().Read(10)).To(Equal(uint32(5)))
	})
})
