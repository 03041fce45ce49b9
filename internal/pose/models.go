package pose

import "time"

// Feature is the per-frame scalar geometric quantity the evaluator consumes:
// the vertical offset of the head relative to the shoulder line, normalized
// by a body-scale proxy so it is invariant to camera distance. Positive
// values mean the head sits lower (further forward) relative to the
// shoulders. Detected is false when the frame had no usable pose; Value is
// meaningless in that case.
type Feature struct {
	Value    float64
	Detected bool
}

// State is the evaluator's lifecycle phase.
type State string

const (
	// StateCalibrating is the initial phase during which a personal
	// baseline is accumulated.
	StateCalibrating State = "calibrating"
	// StateMonitoring is the steady phase in which live frames are scored
	// against the baseline.
	StateMonitoring State = "monitoring"
)

// Result is the per-frame output of the evaluator. It is a value object:
// handed to the caller and discarded.
type Result struct {
	Detected bool
	State    State

	// Scoring fields, meaningful only when Detected is true and State is
	// StateMonitoring.
	Score            float64
	IsSlouched       bool
	Alerting         bool
	VerticalDistance float64
	Baseline         float64

	// CalibrationCompleted is true on the single frame whose evaluation
	// closed the calibration window and established the baseline.
	CalibrationCompleted bool
	// CalibrationRemaining is how much of the calibration window is left,
	// zero outside StateCalibrating.
	CalibrationRemaining time.Duration

	Message string
}
