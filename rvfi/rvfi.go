// Package rvfi implements a passive RISC-V Formal Interface trace monitor.
// It never influences timing: a driver calls Observe once per retired
// instruction, after the core has already committed it, and gets back a
// Trace record suitable for feeding a formal lockstep checker.
package rvfi

// Machine-mode, XLEN=32 are the only mode/ixl values this core ever
// reports; RVFI carries them per-trace rather than once per run because
// the formal interface is defined that way.
const (
	ModeMachine uint8 = 3
	IXL32       uint8 = 1
)

// Retirement is what a driver reports to a Monitor for one committed
// instruction. It is deliberately independent of the pipeline package's
// internal register types, so a Monitor can be exercised without
// building a whole Core.
type Retirement struct {
	Insn uint32
	Trap bool
	Halt bool
	Intr bool

	Rs1Addr, Rs2Addr   uint8
	Rs1RData, Rs2RData uint32

	RdWe    bool
	RdAddr  uint8
	RdWData uint32

	PCRData, PCWData uint32

	MemAddr            uint32
	MemRMask, MemWMask uint8
	MemRData, MemWData uint32
}

// Trace is one row of the RVFI trace: everything a formal harness needs
// to lock-step this core against a reference model.
type Trace struct {
	Valid bool
	Order uint64
	Insn  uint32
	Trap  bool
	Halt  bool
	Intr  bool
	Mode  uint8
	IXL   uint8

	Rs1Addr, Rs2Addr   uint8
	Rs1RData, Rs2RData uint32

	RdAddr  uint8
	RdWData uint32

	PCRData, PCWData uint32

	MemAddr            uint32
	MemRMask, MemWMask uint8
	MemRData, MemWData uint32
}

// Monitor accumulates a run's retirement trace. The zero value is ready
// to use.
type Monitor struct {
	order  uint64
	traces []Trace
}

// NewMonitor returns an empty Monitor.
func NewMonitor() *Monitor { return &Monitor{} }

// Observe records one retired instruction and returns the Trace row it
// produced. RdAddr/RdWData are reported only when the instruction
// actually writes a register (RISC-V's x0 write-suppression and
// non-writing instructions both report rd_addr=0/rd_wdata=0, matching
// the RVFI convention of treating "no write" and "wrote x0" the same
// way).
func (m *Monitor) Observe(r Retirement) Trace {
	m.order++

	t := Trace{
		Valid:    true,
		Order:    m.order,
		Insn:     r.Insn,
		Trap:     r.Trap,
		Halt:     r.Halt,
		Intr:     r.Intr,
		Mode:     ModeMachine,
		IXL:      IXL32,
		Rs1Addr:  r.Rs1Addr,
		Rs2Addr:  r.Rs2Addr,
		Rs1RData: r.Rs1RData,
		Rs2RData: r.Rs2RData,
		PCRData:  r.PCRData,
		PCWData:  r.PCWData,
		MemAddr:  r.MemAddr,
		MemRMask: r.MemRMask,
		MemWMask: r.MemWMask,
		MemRData: r.MemRData,
		MemWData: r.MemWData,
	}
	if r.RdWe && r.RdAddr != 0 {
		t.RdAddr, t.RdWData = r.RdAddr, r.RdWData
	}

	m.traces = append(m.traces, t)

	return t
}

// Traces returns every row recorded so far, oldest first.
func (m *Monitor) Traces() []Trace { return m.traces }

// Len reports how many instructions have retired through this monitor.
func (m *Monitor) Len() int { return len(m.traces) }

// Reset clears the trace and restarts order numbering from 1, mirroring
// a core's own Reset.
func (m *Monitor) Reset() {
	m.order = 0
	m.traces = m.traces[:0]
}
