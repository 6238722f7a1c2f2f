// Package csr provides the machine-mode CSR file: field-granular access
// semantics (WARL, WLRL, WPRI), staged D->X reads, and W-stage commit
// with bypass to earlier stages.
package csr

import "fmt"

// Access identifies a CSR field's write/read discipline.
type Access uint8

const (
	// AccessWARL ("Write Any, Read Legal") silently legalizes any write.
	AccessWARL Access = iota
	// AccessWLRL ("Write Legal, Read Legal") rejects illegal writes,
	// reported as an error to the caller.
	AccessWLRL
	// AccessWPRI ("Write Preserve, Read Ignore") ignores writes and
	// always reads zero.
	AccessWPRI
)

// Field describes one bitfield of a register.
type Field struct {
	Name   string
	Offset uint
	Width  uint
	Access Access
	// Legalize maps a raw write value to a legal one (WARL only). If nil,
	// any value in range is already legal.
	Legalize func(uint32) uint32
	// Valid reports whether a raw write value is legal (WLRL only). If
	// nil, all in-range values are accepted.
	Valid func(uint32) bool
}

func (f Field) mask() uint32 {
	if f.Width >= 32 {
		return 0xFFFFFFFF
	}
	return ((uint32(1) << f.Width) - 1) << f.Offset
}

// Register is a named CSR composed of fields.
type Register struct {
	Name   string
	fields []Field
	value  uint32
}

// NewRegister builds a register from its field list, reset to zero.
func NewRegister(name string, fields ...Field) *Register {
	return &Register{Name: name, fields: fields}
}

// Read returns the architectural value: WPRI fields read as zero,
// everything else reads the stored bits.
func (r *Register) Read() uint32 {
	var v uint32
	for _, f := range r.fields {
		if f.Access == AccessWPRI {
			continue
		}
		v |= r.value & f.mask()
	}
	return v
}

// Raw returns the full underlying storage, including WPRI bits that
// read as zero architecturally. Used by the RVFI monitor and tests that
// need to observe implementation state.
func (r *Register) Raw() uint32 {
	return r.value
}

// Write applies a CSR write, field by field, per each field's access
// discipline. A WLRL field whose incoming bits are not legal aborts the
// entire write atomically and returns an error; no partial write is
// applied. WARL fields silently legalize. WPRI fields ignore the
// incoming bits entirely.
func (r *Register) Write(raw uint32) error {
	next := r.value
	for _, f := range r.fields {
		bits := (raw & f.mask()) >> f.Offset
		switch f.Access {
		case AccessWPRI:
			continue
		case AccessWLRL:
			if f.Valid != nil && !f.Valid(bits) {
				return fmt.Errorf("csr %s: illegal write to field %s: 0x%x", r.Name, f.Name, bits)
			}
		case AccessWARL:
			if f.Legalize != nil {
				bits = f.Legalize(bits)
			}
		}
		next = (next &^ f.mask()) | ((bits << f.Offset) & f.mask())
	}
	r.value = next
	return nil
}

// Reset clears the register to zero, the RV32 power-on-reset value for
// every CSR this core implements.
func (r *Register) Reset() {
	r.value = 0
}

// File is the full machine-mode CSR address space: a mapping from a
// 12-bit address to a register.
type File struct {
	regs map[uint16]*Register
}

// New builds the CSR file with the standard trap/status registers,
// plus the microarchitectural IRQ_MASK/IRQ_PENDING pair and the
// mcycle/minstret counters. withMulDiv selects whether misa advertises
// the M extension.
func New(withMulDiv bool) *File {
	bit := func(off uint) Field {
		return Field{Offset: off, Width: 1, Access: AccessWARL}
	}

	mstatus := NewRegister("mstatus",
		bit(3), // mie
		bit(7), // mpie
	)

	extensions := uint32(1 << 8) // 'I' base
	if withMulDiv {
		extensions |= 1 << 12 // 'M' extension
	}
	misa := NewRegister("misa",
		Field{Name: "extensions", Offset: 0, Width: 26, Access: AccessWARL,
			Legalize: func(uint32) uint32 { return extensions }},
		Field{Name: "mxl", Offset: 30, Width: 2, Access: AccessWARL,
			Legalize: func(uint32) uint32 { return 1 }},
	)
	_ = misa.Write(0)

	mie := NewRegister("mie",
		Field{Name: "msie", Offset: 3, Width: 1, Access: AccessWARL},
		Field{Name: "mtie", Offset: 7, Width: 1, Access: AccessWARL},
		Field{Name: "meie", Offset: 11, Width: 1, Access: AccessWARL},
	)

	mtvec := NewRegister("mtvec",
		Field{Name: "mode", Offset: 0, Width: 2, Access: AccessWARL,
			Legalize: func(uint32) uint32 { return 0 }}, // direct mode only
		Field{Name: "base", Offset: 2, Width: 30, Access: AccessWARL},
	)

	mscratch := NewRegister("mscratch",
		Field{Name: "value", Offset: 0, Width: 32, Access: AccessWARL},
	)

	mepc := NewRegister("mepc",
		Field{Name: "base", Offset: 2, Width: 30, Access: AccessWARL},
	)

	mcause := NewRegister("mcause",
		Field{Name: "ecode", Offset: 0, Width: 31, Access: AccessWARL},
		Field{Name: "interrupt", Offset: 31, Width: 1, Access: AccessWARL},
	)

	mtval := NewRegister("mtval",
		Field{Name: "value", Offset: 0, Width: 32, Access: AccessWARL},
	)

	mip := NewRegister("mip",
		Field{Name: "msip", Offset: 3, Width: 1, Access: AccessWARL},
		Field{Name: "mtip", Offset: 7, Width: 1, Access: AccessWARL},
		Field{Name: "meip", Offset: 11, Width: 1, Access: AccessWARL},
	)

	irqMask := NewRegister("irq_mask",
		Field{Name: "value", Offset: 0, Width: 32, Access: AccessWARL},
	)
	irqPending := NewRegister("irq_pending",
		Field{Name: "value", Offset: 0, Width: 32, Access: AccessWLRL,
			Valid: func(uint32) bool { return false }}, // read-only: any write is illegal
	)
	mcycle := NewRegister("mcycle",
		Field{Name: "value", Offset: 0, Width: 32, Access: AccessWARL},
	)
	minstret := NewRegister("minstret",
		Field{Name: "value", Offset: 0, Width: 32, Access: AccessWARL},
	)

	return &File{regs: map[uint16]*Register{
		0x300: mstatus,
		0x301: misa,
		0x304: mie,
		0x305: mtvec,
		0x340: mscratch,
		0x341: mepc,
		0x342: mcause,
		0x343: mtval,
		0x344: mip,
		0x330: irqMask,
		0x360: irqPending,
		0xB00: mcycle,
		0xB02: minstret,
	}}
}

// Lookup returns the register at addr, or nil if unimplemented.
func (f *File) Lookup(addr uint16) *Register {
	return f.regs[addr]
}

// Read reads the register at addr. ok is false for an unimplemented
// address (reads as zero, matching a WPRI-only register).
func (f *File) Read(addr uint16) (value uint32, ok bool) {
	r := f.regs[addr]
	if r == nil {
		return 0, false
	}
	return r.Read(), true
}

// Write writes the register at addr. An unimplemented address is a
// no-op that reports ok=false; the caller decides whether that should
// be treated as illegal.
func (f *File) Write(addr uint16, value uint32) (ok bool, err error) {
	r := f.regs[addr]
	if r == nil {
		return false, nil
	}
	return true, r.Write(value)
}

// MIE/MPIE bit positions within mstatus, exposed for the pipeline's trap
// entry/exit sequencing.
const (
	MstatusMIEBit  = 3
	MstatusMPIEBit = 7
)

// MxIEBit positions within mie/mip for the three standard interrupt
// sources, in their fixed priority order: external, timer, software.
const (
	MSIEBit = 3
	MTIEBit = 7
	MEIEBit = 11
)
