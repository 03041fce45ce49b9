package strategy

import (
	"fmt"
	"math"
)

// ScoringStrategy maps a smoothed deviation magnitude to a 0-100 posture
// score. Implementations must be monotonically non-increasing in the
// deviation, continuous, bounded to [0,100], and return exactly 100 at zero
// deviation. The boolean slouch classification is made independently of the
// score, so the score is smooth across the threshold.
type ScoringStrategy interface {
	Score(deviation, threshold, saturation float64) float64
	Name() string
}

// LinearScorer implements the documented default mapping:
// score = clamp(100 * (1 - deviation/(saturation*threshold)), 0, 100).
// The score reaches 0 once the deviation hits saturation*threshold.
type LinearScorer struct{}

// NewLinearScorer creates the default linear scoring strategy
func NewLinearScorer() ScoringStrategy {
	return LinearScorer{}
}

// Score maps the deviation linearly onto [0,100]
func (LinearScorer) Score(deviation, threshold, saturation float64) float64 {
	span := saturation * threshold
	if span <= 0 {
		return 0
	}
	score := 100 * (1 - deviation/span)
	return math.Min(100, math.Max(0, score))
}

// Name returns the strategy name
func (LinearScorer) Name() string { return "linear" }

// ExponentialScorer decays the score exponentially with the deviation:
// score = 100 * exp(-deviation/(saturation*threshold)). Softer than the
// linear mapping near the baseline, never quite reaches 0.
type ExponentialScorer struct{}

// NewExponentialScorer creates the exponential scoring strategy
func NewExponentialScorer() ScoringStrategy {
	return ExponentialScorer{}
}

// Score maps the deviation onto (0,100] with exponential decay
func (ExponentialScorer) Score(deviation, threshold, saturation float64) float64 {
	span := saturation * threshold
	if span <= 0 {
		return 0
	}
	return 100 * math.Exp(-deviation/span)
}

// Name returns the strategy name
func (ExponentialScorer) Name() string { return "exponential" }

// ForName returns the scoring strategy registered under the given name.
func ForName(name string) (ScoringStrategy, error) {
	switch name {
	case "linear":
		return NewLinearScorer(), nil
	case "exponential":
		return NewExponentialScorer(), nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy %q", name)
	}
}
