package pipeline

import (
	"github.com/sarchlab/rv32p/csr"
	"github.com/sarchlab/rv32p/isa"
)

// misaligned reports whether a control-transfer target is not
// word-aligned. RV32I with no compressed extension requires word alignment.
func misaligned(target uint32) bool {
	return target&0b11 != 0
}

// pendingInterrupt evaluates the three standard machine-mode interrupt
// sources in fixed priority (external, then timer, then
// software), gated by the global mstatus.mie enable. Only the timer
// line is wired to an external stimulus in this design; the other two
// are evaluated for completeness against mip/mie but have no producer.
func pendingInterrupt(mstatusMIE bool, mieRaw, mipRaw uint32) (isa.Cause, bool) {
	if !mstatusMIE {
		return 0, false
	}
	enabled := mieRaw & mipRaw
	switch {
	case enabled&(1<<csr.MEIEBit) != 0:
		return isa.CauseMExternalInterrupt, true
	case enabled&(1<<csr.MTIEBit) != 0:
		return isa.CauseMTimerInterrupt, true
	case enabled&(1<<csr.MSIEBit) != 0:
		return isa.CauseMSoftwareInterrupt, true
	default:
		return 0, false
	}
}

// loadStoreCause picks between the load- and store-misaligned/fault
// causes a given Instruction should report; a load's address fault
// takes priority over a store's per the Open Question decision recorded
// in DESIGN.md (a load and a store never share one Instruction, so this
// only disambiguates which pair of causes applies).
func loadStoreCause(isLoad, accessFault bool) isa.Cause {
	switch {
	case isLoad && accessFault:
		return isa.CauseLoadAccessFault
	case isLoad:
		return isa.CauseLoadMisaligned
	case accessFault:
		return isa.CauseStoreAccessFault
	default:
		return isa.CauseStoreMisaligned
	}
}
