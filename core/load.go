package core

import "github.com/sarchlab/rv32p/loader"

// NewFromProgram builds a Core whose reset address is prog's entry
// point, loads every one of prog's segments into memory (zero-filling
// the BSS tail past each segment's file data), and seeds the stack
// pointer (x2) with prog.InitialSP. cfg.ResetAddr is overwritten; every
// other field is taken as given.
//
// The reset address has to be known before construction, since
// pipeline.NewCore latches it into the fetch stage's PC immediately,
// so a Program can't simply be loaded into an already-built Core the
// way raw test images are.
func NewFromProgram(cfg Config, prog *loader.Program) *Core {
	cfg.ResetAddr = prog.EntryPoint
	c := New(cfg)
	c.LoadProgram(prog)
	c.gprs.Write(2, prog.InitialSP)
	return c
}

// LoadProgram copies every segment of prog into the core's memory,
// relative to the segment's own VirtAddr rather than cfg.MemBase, and
// zero-fills the span between a segment's file data and its in-memory
// size (.bss).
func (c *Core) LoadProgram(prog *loader.Program) {
	for _, seg := range prog.Segments {
		c.memory.LoadBytes(seg.VirtAddr, seg.Data)
		for i := uint32(len(seg.Data)); i < seg.MemSize; i++ {
			c.memory.LoadBytes(seg.VirtAddr+i, []byte{0})
		}
	}
}
