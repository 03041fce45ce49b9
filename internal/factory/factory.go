package factory

import (
	"fmt"

	"go-posture-guard/internal/config"
	"go-posture-guard/internal/detector"
	"go-posture-guard/internal/pose"
	"go-posture-guard/internal/strategy"
)

// DetectorType represents the kind of pose-detector backend
type DetectorType string

const (
	// HTTPDetector calls an external pose-detection service
	HTTPDetector DetectorType = "http"
)

// NewPoseDetector builds a pose detector of the given type.
func NewPoseDetector(detectorType DetectorType, cfg *config.Config) (detector.PoseDetector, error) {
	switch detectorType {
	case HTTPDetector:
		return detector.NewHTTPPoseDetector(cfg.DetectorURL, cfg.DetectorTimeout), nil
	default:
		return nil, fmt.Errorf("unknown detector type %q", detectorType)
	}
}

// EvaluatorOptions maps the loaded configuration onto the pipeline options.
func EvaluatorOptions(cfg *config.Config) pose.Options {
	return pose.Options{
		MinLandmarkConfidence: cfg.MinLandmarkConfidence,
		CalibrationDuration:   cfg.CalibrationDuration,
		MinCalibrationSamples: cfg.MinCalibrationSamples,
		SmoothingWindowSize:   cfg.SmoothingWindowSize,
		SlouchThreshold:       cfg.SlouchThreshold,
		ScoreSaturationFactor: cfg.ScoreSaturationFactor,
		SlouchAlertAfter:      cfg.SlouchAlertAfter,
	}
}

// NewEvaluatorFactory returns a factory producing one evaluator per session,
// all sharing the configured options and scoring strategy.
func NewEvaluatorFactory(cfg *config.Config) (func() (*pose.Evaluator, error), error) {
	scorer, err := strategy.ForName(cfg.ScoringStrategy)
	if err != nil {
		return nil, err
	}

	opts := EvaluatorOptions(cfg)
	// Fail fast: surface bad option values at startup, not at the first
	// session creation.
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return func() (*pose.Evaluator, error) {
		return pose.NewEvaluator(opts, scorer, nil)
	}, nil
}
