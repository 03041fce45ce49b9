package pose

import (
	"fmt"
	"time"

	apperrors "go-posture-guard/internal/errors"
)

// Options provides the tuning knobs of the posture pipeline. All values are
// validated at evaluator construction; a session never starts with an
// out-of-range configuration.
type Options struct {
	// MinLandmarkConfidence is the minimum per-landmark detection
	// confidence for the landmark to participate in feature extraction.
	MinLandmarkConfidence float64

	// CalibrationDuration is the wall-clock length of the calibration
	// window, measured from the first evaluated frame.
	CalibrationDuration time.Duration

	// MinCalibrationSamples is the minimum number of detected frames the
	// calibration window must accumulate; fewer means the calibration
	// failed.
	MinCalibrationSamples int

	// SmoothingWindowSize is the capacity of the smoothing ring buffer.
	SmoothingWindowSize int

	// SlouchThreshold is the smoothed-deviation magnitude beyond which a
	// frame is classified as slouched, in normalized feature units.
	// The default 0.15 corresponds to roughly 15 degrees of forward head
	// lean at a typical ear-shoulder geometry.
	SlouchThreshold float64

	// ScoreSaturationFactor scales the deviation at which the score
	// saturates to zero: score hits 0 at |deviation| == factor*threshold.
	ScoreSaturationFactor float64

	// SlouchAlertAfter is how long the smoothed deviation must stay beyond
	// the threshold before the result escalates to an alert. Zero alerts
	// immediately.
	SlouchAlertAfter time.Duration
}

// DefaultOptions returns the documented pipeline defaults.
func DefaultOptions() Options {
	return Options{
		MinLandmarkConfidence: 0.3,
		CalibrationDuration:   3 * time.Second,
		MinCalibrationSamples: 1,
		SmoothingWindowSize:   5,
		SlouchThreshold:       0.15,
		ScoreSaturationFactor: 2.0,
		SlouchAlertAfter:      3 * time.Second,
	}
}

// WithThreshold returns options with a custom slouch threshold
func (o Options) WithThreshold(threshold float64) Options {
	o.SlouchThreshold = threshold
	return o
}

// WithSmoothingWindow returns options with a custom smoothing window size
func (o Options) WithSmoothingWindow(size int) Options {
	o.SmoothingWindowSize = size
	return o
}

// WithCalibration returns options with a custom calibration window
func (o Options) WithCalibration(duration time.Duration, minSamples int) Options {
	o.CalibrationDuration = duration
	o.MinCalibrationSamples = minSamples
	return o
}

// Validate rejects out-of-range option values.
func (o Options) Validate() error {
	if o.MinLandmarkConfidence <= 0 || o.MinLandmarkConfidence > 1 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("min landmark confidence must be in (0,1], got %g", o.MinLandmarkConfidence), nil)
	}
	if o.CalibrationDuration <= 0 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("calibration duration must be positive, got %s", o.CalibrationDuration), nil)
	}
	if o.MinCalibrationSamples < 1 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("min calibration samples must be at least 1, got %d", o.MinCalibrationSamples), nil)
	}
	if o.SmoothingWindowSize < 1 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("smoothing window size must be at least 1, got %d", o.SmoothingWindowSize), nil)
	}
	if o.SlouchThreshold <= 0 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("slouch threshold must be positive, got %g", o.SlouchThreshold), nil)
	}
	if o.ScoreSaturationFactor < 1 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("score saturation factor must be >= 1, got %g", o.ScoreSaturationFactor), nil)
	}
	if o.SlouchAlertAfter < 0 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("slouch alert delay must not be negative, got %s", o.SlouchAlertAfter), nil)
	}
	return nil
}
