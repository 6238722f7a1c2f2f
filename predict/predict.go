// Package predict implements the static direction/target branch
// predictor evaluated at D: direct jumps always predict
// taken, conditional branches predict by the sign of their offset
// (backward taken, forward not-taken), and a misaligned target
// squashes the prediction rather than committing to one, deferring
// the fault to X.
package predict

// Prediction is what D attaches to an in-flight branch/jump micro-op.
type Prediction struct {
	Taken  bool
	Target uint32
}

// Predict evaluates the static predictor for an instruction at pc with
// sign-extended immediate imm. jump and rs1Re identify JALR (jump with
// rs1_re) vs JAL (jump without); branch identifies a conditional
// branch. For anything else the prediction is always not-taken.
func Predict(pc uint32, imm uint32, jump, rs1Re, branch bool) Prediction {
	target := pc + imm

	if misaligned(target) {
		return Prediction{Taken: false, Target: target}
	}

	switch {
	case jump && !rs1Re:
		return Prediction{Taken: true, Target: target}
	case branch:
		return Prediction{Taken: backward(imm), Target: target}
	default:
		return Prediction{Taken: false, Target: target}
	}
}

func backward(imm uint32) bool {
	return int32(imm) < 0
}

func misaligned(target uint32) bool {
	return target&0b11 != 0
}
