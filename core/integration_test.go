package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/core"
)

const nop = 0x00000013

const (
	opOpImm  = 0x13
	opOp     = 0x33
	opSystem = 0x73
)

func encR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// newTestCore builds a default-configured Core with prog loaded at
// ResetAddr and the rest of memory filled with NOP, so a pipeline that
// outruns prog doesn't trip an illegal-instruction trap before the
// test gets to inspect it.
func newTestCore(withRVFI bool, prog []uint32) *core.Core {
	cfg := core.DefaultConfig()
	cfg.MemSize = 4096
	cfg.WithRVFI = withRVFI

	c := core.New(cfg)

	nopWord := []byte{0x13, 0x00, 0x00, 0x00}
	for i := uint32(0); i < cfg.MemSize; i += 4 {
		c.Memory().LoadBytes(cfg.MemBase+i, nopWord)
	}
	for i, w := range prog {
		c.Memory().LoadBytes(cfg.MemBase+uint32(i)*4, []byte{
			byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24),
		})
	}

	return c
}

var _ = Describe("Core", func() {
	It("runs a short program to completion and halts on ECALL", func() {
		prog := []uint32{
			encI(opOpImm, 0, 1, 0, 5),     // addi x1, x0, 5
			encI(opOpImm, 0, 2, 0, 7),     // addi x2, x0, 7
			encR(opOp, 0, 0, 3, 1, 2),     // add x3, x1, x2
			encI(opOpImm, 0, 10, 0, 0),    // addi x10, x0, 0
			encI(opSystem, 0, 0, 0, 0x000), // ecall
		}
		c := newTestCore(false, prog)

		c.RunCycles(200)

		Expect(c.Halted()).To(BeTrue())
		Expect(c.ExitCode()).To(Equal(uint32(0)))
		Expect(c.GPR().Read(3)).To(Equal(uint32(12)))
		Expect(c.Stats.Instructions).To(BeNumerically(">", 0))
	})

	It("reports a nonzero exit code taken from x10 at the halting ECALL", func() {
		prog := []uint32{
			encI(opOpImm, 0, 10, 0, 7), // addi x10, x0, 7
			encI(opSystem, 0, 0, 0, 0), // ecall
		}
		c := newTestCore(false, prog)

		c.RunCycles(200)

		Expect(c.Halted()).To(BeTrue())
		Expect(c.ExitCode()).To(Equal(uint32(7)))
	})

	It("stops ticking once halted", func() {
		prog := []uint32{
			encI(opOpImm, 0, 10, 0, 0),
			encI(opSystem, 0, 0, 0, 0),
		}
		c := newTestCore(false, prog)

		c.RunCycles(200)
		cyclesAtHalt := c.Stats.Cycles
		c.Tick()
		c.Tick()

		Expect(c.Stats.Cycles).To(Equal(cyclesAtHalt))
	})

	It("feeds a retirement trace to the RVFI monitor when enabled", func() {
		prog := []uint32{
			encI(opOpImm, 0, 1, 0, 5), // addi x1, x0, 5
			encI(opOpImm, 0, 10, 0, 0),
			encI(opSystem, 0, 0, 0, 0), // ecall
		}
		c := newTestCore(true, prog)

		c.RunCycles(200)

		Expect(c.Halted()).To(BeTrue())
		Expect(c.RVFI().Len()).To(BeNumerically(">", 0))

		traces := c.RVFI().Traces()
		for i := 1; i < len(traces); i++ {
			Expect(traces[i].Order).To(BeNumerically(">", traces[i-1].Order))
		}

		last := traces[len(traces)-1]
		Expect(last.Trap).To(BeTrue())
	})

	It("does not feed the RVFI monitor when disabled", func() {
		prog := []uint32{
			encI(opOpImm, 0, 10, 0, 0),
			encI(opSystem, 0, 0, 0, 0),
		}
		c := newTestCore(false, prog)

		c.RunCycles(200)

		Expect(c.RVFI()).To(BeNil())
	})
})
