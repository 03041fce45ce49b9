package pose

// Landmark is a single named 2D body keypoint as reported by the external
// pose detector. Coordinates are normalized to [0,1] image space with the
// origin at the top-left corner, so a larger Y is lower in the frame.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// LandmarkSet maps landmark names to their detected positions for one frame.
// It is produced once per frame and never mutated afterwards.
type LandmarkSet map[string]Landmark

// Landmark names used by the feature extractor. These follow the MoveNet
// keypoint naming; detectors with different vocabularies are mapped to these
// names by the detector client.
const (
	Nose          = "nose"
	LeftEye       = "left_eye"
	RightEye      = "right_eye"
	LeftEar       = "left_ear"
	RightEar      = "right_ear"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
)

// get returns the named landmark only when it was detected with at least the
// given confidence.
func (ls LandmarkSet) get(name string, minConfidence float64) (Landmark, bool) {
	lm, ok := ls[name]
	if !ok || lm.Confidence < minConfidence {
		return Landmark{}, false
	}
	return lm, true
}
