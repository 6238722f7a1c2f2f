// Package loader provides ELF binary loading for RV32 executables.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
	"sort"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is the default stack top address, placed just below
// the conventional 0x80000000 machine-mode reset/code region so a
// stack growing down never collides with a program loaded at reset.
const DefaultStackTop = 0x7FFF0000

// DefaultStackSize is the default stack size (1MB, generous for a
// 32-bit address space with no virtual memory backing it).
const DefaultStackSize = 1 * 1024 * 1024

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin — wired
	// directly into a Core's reset PC (pipeline.Config.ResetAddr)
	// rather than a fixed convention, since bare-metal RV32 images
	// place _start wherever their linker script says to.
	EntryPoint uint32
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint32
}

// Load parses a 32-bit RISC-V ELF binary and returns a Program struct
// ready for loading into the core's memory.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		seg := Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		}

		prog.Segments = append(prog.Segments, seg)
	}

	// Order segments by load address and reject any that overlap. On a
	// virtual-memory target the MMU keeps overlapping file segments
	// apart in physical RAM regardless of what the program headers say;
	// this loader places every segment directly into a flat physical
	// address space with no MMU between them, so two overlapping
	// PT_LOAD ranges would silently clobber each other at load time
	// instead of being caught here.
	sort.Slice(prog.Segments, func(i, j int) bool {
		return prog.Segments[i].VirtAddr < prog.Segments[j].VirtAddr
	})
	if err := checkNoOverlap(prog.Segments); err != nil {
		return nil, err
	}

	// RV32IM has no compressed-instruction extension, so every
	// instruction is 4 bytes and must start on a word boundary.
	if prog.EntryPoint&0b11 != 0 {
		return nil, fmt.Errorf("entry point 0x%x is not 4-byte aligned", prog.EntryPoint)
	}

	return prog, nil
}

func checkNoOverlap(segs []Segment) error {
	for i := 1; i < len(segs); i++ {
		prevEnd := segs[i-1].VirtAddr + segs[i-1].MemSize
		if segs[i].VirtAddr < prevEnd {
			return fmt.Errorf("segment at 0x%x overlaps the segment ending at 0x%x", segs[i].VirtAddr, prevEnd)
		}
	}
	return nil
}
