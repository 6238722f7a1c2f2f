package gpr_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/gpr"
)

func TestGPR(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GPR Suite")
}

var _ = Describe("File", func() {
	var f *gpr.File

	BeforeEach(func() {
		f = &gpr.File{}
	})

	It("reads x0 as zero always", func() {
		Expect(f.Read(0)).To(Equal(uint32(0)))
	})

	It("discards writes to x0", func() {
		f.Write(0, 0xDEADBEEF)
		Expect(f.Read(0)).To(Equal(uint32(0)))
	})

	It("round-trips a write through a later read", func() {
		f.Write(5, 42)
		Expect(f.Read(5)).To(Equal(uint32(42)))
	})
})

var _ = Describe("Bypass", func() {
	It("is ready immediately when no writer is in flight", func() {
		result := gpr.Bypass(3, 99, nil)
		Expect(result.Ready).To(BeTrue())
		Expect(result.Value).To(Equal(uint32(99)))
	})

	It("forwards from X when the X writer is bypass_x-ready", func() {
		writers := []gpr.Writer{
			{Rd: 3, Stage: gpr.StageX, BypassX: true, Value: func() (uint32, bool) { return 7, true }},
		}
		result := gpr.Bypass(3, 0, writers)
		Expect(result.Ready).To(BeTrue())
		Expect(result.Forwarded).To(BeTrue())
		Expect(result.Value).To(Equal(uint32(7)))
	})

	It("stalls when the X writer is a load (not bypass_x/bypass_m ready)", func() {
		writers := []gpr.Writer{
			{Rd: 3, Stage: gpr.StageX, BypassX: false, BypassM: false},
		}
		result := gpr.Bypass(3, 0, writers)
		Expect(result.Ready).To(BeFalse())
	})

	It("forwards from M when the M writer is bypass_m-ready", func() {
		writers := []gpr.Writer{
			{Rd: 3, Stage: gpr.StageM, BypassM: true, Value: func() (uint32, bool) { return 11, true }},
		}
		result := gpr.Bypass(3, 0, writers)
		Expect(result.Ready).To(BeTrue())
		Expect(result.Value).To(Equal(uint32(11)))
	})

	It("is always ready at W", func() {
		writers := []gpr.Writer{
			{Rd: 3, Stage: gpr.StageW, Value: func() (uint32, bool) { return 13, true }},
		}
		result := gpr.Bypass(3, 0, writers)
		Expect(result.Ready).To(BeTrue())
		Expect(result.Value).To(Equal(uint32(13)))
	})

	It("never reports a writer for x0", func() {
		writers := []gpr.Writer{
			{Rd: 0, Stage: gpr.StageX, BypassX: false},
		}
		result := gpr.Bypass(0, 0, writers)
		Expect(result.Ready).To(BeTrue())
		Expect(result.Value).To(Equal(uint32(0)))
	})

	It("picks the youngest writer when the list is ordered X, M, W", func() {
		writers := []gpr.Writer{
			{Rd: 3, Stage: gpr.StageX, BypassX: true, Value: func() (uint32, bool) { return 1, true }},
			{Rd: 3, Stage: gpr.StageM, BypassM: true, Value: func() (uint32, bool) { return 2, true }},
		}
		result := gpr.Bypass(3, 0, writers)
		Expect(result.Value).To(Equal(uint32(1)))
	})
})
