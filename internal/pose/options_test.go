package pose

import (
	"testing"
	"time"

	apperrors "go-posture-guard/internal/errors"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.MinLandmarkConfidence != 0.3 {
		t.Errorf("Expected MinLandmarkConfidence 0.3, got %f", opts.MinLandmarkConfidence)
	}
	if opts.CalibrationDuration != 3*time.Second {
		t.Errorf("Expected CalibrationDuration 3s, got %s", opts.CalibrationDuration)
	}
	if opts.MinCalibrationSamples != 1 {
		t.Errorf("Expected MinCalibrationSamples 1, got %d", opts.MinCalibrationSamples)
	}
	if opts.SmoothingWindowSize != 5 {
		t.Errorf("Expected SmoothingWindowSize 5, got %d", opts.SmoothingWindowSize)
	}
	if opts.SlouchThreshold != 0.15 {
		t.Errorf("Expected SlouchThreshold 0.15, got %f", opts.SlouchThreshold)
	}
	if opts.ScoreSaturationFactor != 2.0 {
		t.Errorf("Expected ScoreSaturationFactor 2.0, got %f", opts.ScoreSaturationFactor)
	}

	if err := opts.Validate(); err != nil {
		t.Errorf("Expected default options to validate, got %v", err)
	}
}

func TestOptions_Builders(t *testing.T) {
	opts := DefaultOptions().
		WithThreshold(0.25).
		WithSmoothingWindow(10).
		WithCalibration(5*time.Second, 3)

	if opts.SlouchThreshold != 0.25 {
		t.Errorf("Expected threshold 0.25, got %f", opts.SlouchThreshold)
	}
	if opts.SmoothingWindowSize != 10 {
		t.Errorf("Expected window 10, got %d", opts.SmoothingWindowSize)
	}
	if opts.CalibrationDuration != 5*time.Second {
		t.Errorf("Expected calibration duration 5s, got %s", opts.CalibrationDuration)
	}
	if opts.MinCalibrationSamples != 3 {
		t.Errorf("Expected min samples 3, got %d", opts.MinCalibrationSamples)
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		valid  bool
	}{
		{"defaults", func(o *Options) {}, true},
		{"zero confidence", func(o *Options) { o.MinLandmarkConfidence = 0 }, false},
		{"confidence above one", func(o *Options) { o.MinLandmarkConfidence = 1.5 }, false},
		{"zero calibration duration", func(o *Options) { o.CalibrationDuration = 0 }, false},
		{"zero min samples", func(o *Options) { o.MinCalibrationSamples = 0 }, false},
		{"zero window", func(o *Options) { o.SmoothingWindowSize = 0 }, false},
		{"negative window", func(o *Options) { o.SmoothingWindowSize = -5 }, false},
		{"zero threshold", func(o *Options) { o.SlouchThreshold = 0 }, false},
		{"negative threshold", func(o *Options) { o.SlouchThreshold = -0.1 }, false},
		{"saturation below one", func(o *Options) { o.ScoreSaturationFactor = 0.5 }, false},
		{"negative alert delay", func(o *Options) { o.SlouchAlertAfter = -time.Second }, false},
		{"zero alert delay", func(o *Options) { o.SlouchAlertAfter = 0 }, true},
		{"window of one", func(o *Options) { o.SmoothingWindowSize = 1 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)

			err := opts.Validate()
			if tc.valid && err != nil {
				t.Errorf("Expected valid options, got %v", err)
			}
			if !tc.valid {
				if err == nil {
					t.Fatal("Expected validation error")
				}
				if !apperrors.IsType(err, apperrors.ErrorTypeConfiguration) {
					t.Errorf("Expected configuration error type, got %v", err)
				}
			}
		})
	}
}
