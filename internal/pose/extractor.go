package pose

import "math"

// minBodyScale guards the normalization against degenerate landmark
// geometry (e.g. both shoulders reported at the same point).
const minBodyScale = 1e-6

// FeatureExtractor converts a raw LandmarkSet into the scalar posture
// feature. It is stateless; Extract is a pure function of its input.
type FeatureExtractor struct {
	minConfidence float64
}

// NewFeatureExtractor creates a feature extractor with the given minimum
// per-landmark confidence.
func NewFeatureExtractor(minConfidence float64) *FeatureExtractor {
	return &FeatureExtractor{minConfidence: minConfidence}
}

// Extract computes the normalized vertical head-shoulder offset for one
// frame. It requires an ear and a shoulder on at least one side, each at or
// above the confidence floor; anything less yields Detected=false, which is
// the expected "no usable pose" outcome rather than an error.
//
// The head reference is the mean Y of the confidently detected head points
// (nose plus the ears of usable sides), the shoulder reference the mean Y of
// the usable shoulders. The offset is divided by a body-scale proxy -
// shoulder width when both shoulders are visible, the ear-shoulder span of
// the visible side otherwise - so the feature does not depend on how far the
// subject sits from the camera.
func (fx *FeatureExtractor) Extract(ls LandmarkSet) Feature {
	leftEar, leftEarOK := ls.get(LeftEar, fx.minConfidence)
	rightEar, rightEarOK := ls.get(RightEar, fx.minConfidence)
	leftShoulder, leftOK := ls.get(LeftShoulder, fx.minConfidence)
	rightShoulder, rightOK := ls.get(RightShoulder, fx.minConfidence)

	leftSide := leftEarOK && leftOK
	rightSide := rightEarOK && rightOK
	if !leftSide && !rightSide {
		return Feature{}
	}

	var headSum float64
	var headCount int
	if nose, ok := ls.get(Nose, fx.minConfidence); ok {
		headSum += nose.Y
		headCount++
	}
	if leftSide {
		headSum += leftEar.Y
		headCount++
	}
	if rightSide {
		headSum += rightEar.Y
		headCount++
	}
	headY := headSum / float64(headCount)

	var shoulderSum float64
	var shoulderCount int
	if leftSide {
		shoulderSum += leftShoulder.Y
		shoulderCount++
	}
	if rightSide {
		shoulderSum += rightShoulder.Y
		shoulderCount++
	}
	shoulderY := shoulderSum / float64(shoulderCount)

	scale := fx.bodyScale(leftSide, rightSide, leftEar, rightEar, leftShoulder, rightShoulder)
	if scale < minBodyScale {
		return Feature{}
	}

	return Feature{
		Value:    (headY - shoulderY) / scale,
		Detected: true,
	}
}

// bodyScale picks the normalization reference: shoulder width when both
// sides are usable, otherwise the ear-shoulder span of the visible side.
func (fx *FeatureExtractor) bodyScale(leftSide, rightSide bool, leftEar, rightEar, leftShoulder, rightShoulder Landmark) float64 {
	if leftSide && rightSide {
		return math.Hypot(leftShoulder.X-rightShoulder.X, leftShoulder.Y-rightShoulder.Y)
	}
	if leftSide {
		return math.Hypot(leftEar.X-leftShoulder.X, leftEar.Y-leftShoulder.Y)
	}
	return math.Hypot(rightEar.X-rightShoulder.X, rightEar.Y-rightShoulder.Y)
}
