package predict_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/predict"
)

func TestPredict(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Branch Predictor Suite")
}

var _ = Describe("Predict", func() {
	It("always predicts a direct jump taken", func() {
		p := predict.Predict(0x1000, 16, true, false, false)
		Expect(p.Taken).To(BeTrue())
		Expect(p.Target).To(Equal(uint32(0x1010)))
	})

	It("never predicts JALR taken, since its target is not known at D", func() {
		p := predict.Predict(0x1000, 16, true, true, false)
		Expect(p.Taken).To(BeFalse())
	})

	It("predicts a backward conditional branch taken", func() {
		p := predict.Predict(0x1000, uint32(int32(-16)), false, false, true)
		Expect(p.Taken).To(BeTrue())
		Expect(p.Target).To(Equal(uint32(0xFF0)))
	})

	It("predicts a forward conditional branch not-taken", func() {
		p := predict.Predict(0x1000, 16, false, false, true)
		Expect(p.Taken).To(BeFalse())
	})

	It("does not predict a non-branch, non-jump instruction taken", func() {
		p := predict.Predict(0x1000, 16, false, false, false)
		Expect(p.Taken).To(BeFalse())
	})

	It("squashes the prediction when the target would be misaligned", func() {
		p := predict.Predict(0x1000, 14, true, false, false) // target = 0x100E
		Expect(p.Taken).To(BeFalse())
	})
})
