package pose

import (
	"math"
	"time"

	apperrors "go-posture-guard/internal/errors"
	"go-posture-guard/internal/strategy"
)

// Scorer maps a smoothed deviation magnitude to a 0-100 posture score.
// Implementations must be monotonically non-increasing in the deviation,
// bounded to [0,100], continuous, and return 100 at zero deviation.
type Scorer interface {
	Score(deviation, threshold, saturation float64) float64
	Name() string
}

// Evaluator is the per-session posture state machine. It owns all temporal
// state: the calibration accumulator, the baseline, and the smoothing
// buffer. It performs no I/O and never blocks; the calibration timer is
// wall-clock state sampled on each Evaluate call, not a waiting goroutine.
//
// An Evaluator is not safe for concurrent use. Callers evaluating frames for
// the same session concurrently must serialize access (the session layer
// does this).
//
// Calibration timing discipline: the window runs on the wall clock from the
// first Evaluate call, whether or not that frame had a usable pose. Only
// detected frames contribute samples. The first Evaluate at or after the end
// of the window closes it; if fewer than MinCalibrationSamples accumulated,
// the session fails calibration and keeps reporting the failure until Reset.
type Evaluator struct {
	opts   Options
	scorer Scorer
	now    func() time.Time

	state             State
	calibrationStart  time.Time
	calibrationFailed bool
	sampleCount       int
	sampleSum         float64
	sampleSumSq       float64

	baseline         float64
	baselineVariance float64
	buffer           *ringBuffer
	slouchSince      time.Time
}

// NewEvaluator creates an evaluator in the calibrating state. The scorer and
// clock are injectable; pass nil to use the linear default and time.Now.
// Option values are validated here so a session can never start
// misconfigured.
func NewEvaluator(opts Options, scorer Scorer, now func() time.Time) (*Evaluator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		scorer = strategy.NewLinearScorer()
	}
	if now == nil {
		now = time.Now
	}
	return &Evaluator{
		opts:   opts,
		scorer: scorer,
		now:    now,
		state:  StateCalibrating,
		buffer: newRingBuffer(opts.SmoothingWindowSize),
	}, nil
}

// State returns the current lifecycle phase.
func (e *Evaluator) State() State {
	return e.state
}

// Baseline returns the calibrated reference feature and its variance.
// Meaningful only in StateMonitoring.
func (e *Evaluator) Baseline() (mean, variance float64) {
	return e.baseline, e.baselineVariance
}

// Reset returns the evaluator to the calibrating state, discarding the
// baseline, the smoothing buffer, and any calibration failure. Safe to call
// from any state, any number of times.
func (e *Evaluator) Reset() {
	e.state = StateCalibrating
	e.calibrationStart = time.Time{}
	e.calibrationFailed = false
	e.sampleCount = 0
	e.sampleSum = 0
	e.sampleSumSq = 0
	e.baseline = 0
	e.baselineVariance = 0
	e.buffer.reset()
	e.slouchSince = time.Time{}
}

// Evaluate processes one frame's feature and returns the posture result.
// The only error it can return is the session-level calibration failure;
// frames without a usable pose are reported as data (Detected=false), never
// as errors.
func (e *Evaluator) Evaluate(f Feature) (Result, error) {
	now := e.now()

	if e.state == StateCalibrating {
		res, done, err := e.calibrate(f, now)
		if !done {
			return res, err
		}
		// The frame that closed the window is also the first monitored
		// frame.
		res = e.monitor(f, now)
		res.CalibrationCompleted = true
		return res, nil
	}

	return e.monitor(f, now), nil
}

// calibrate advances the calibration window. done=true means the window just
// closed successfully and the frame should continue into monitoring.
func (e *Evaluator) calibrate(f Feature, now time.Time) (Result, bool, error) {
	if e.calibrationFailed {
		return Result{Detected: f.Detected, State: StateCalibrating, Message: MessageCalibrationFailed},
			false,
			apperrors.NewCalibrationError("calibration window elapsed without enough usable samples", nil)
	}

	if e.calibrationStart.IsZero() {
		e.calibrationStart = now
	}

	elapsed := now.Sub(e.calibrationStart)
	if elapsed < e.opts.CalibrationDuration {
		if f.Detected {
			e.sampleCount++
			e.sampleSum += f.Value
			e.sampleSumSq += f.Value * f.Value
		}
		return Result{
			Detected:             f.Detected,
			State:                StateCalibrating,
			CalibrationRemaining: e.opts.CalibrationDuration - elapsed,
			Message:              MessageCalibrating,
		}, false, nil
	}

	if e.sampleCount < e.opts.MinCalibrationSamples {
		e.calibrationFailed = true
		return Result{Detected: f.Detected, State: StateCalibrating, Message: MessageCalibrationFailed},
			false,
			apperrors.NewCalibrationError("calibration window elapsed without enough usable samples", nil)
	}

	mean := e.sampleSum / float64(e.sampleCount)
	e.baseline = mean
	if e.sampleCount > 1 {
		e.baselineVariance = math.Max(0, e.sampleSumSq/float64(e.sampleCount)-mean*mean)
	}
	e.sampleCount = 0
	e.sampleSum = 0
	e.sampleSumSq = 0
	e.buffer.reset()
	e.state = StateMonitoring
	return Result{}, true, nil
}

// monitor scores one frame against the established baseline. Frames without
// a usable pose leave the smoothing buffer untouched so stale data cannot
// decay the average while the subject is out of frame.
func (e *Evaluator) monitor(f Feature, now time.Time) Result {
	if !f.Detected {
		return Result{Detected: false, State: StateMonitoring, Message: MessageNoPose}
	}

	e.buffer.push(f.Value)
	smoothed := e.buffer.mean()
	deviation := smoothed - e.baseline

	// Boundary rule: a deviation exactly at the threshold is not slouched.
	slouched := math.Abs(deviation) > e.opts.SlouchThreshold
	if slouched {
		if e.slouchSince.IsZero() {
			e.slouchSince = now
		}
	} else {
		e.slouchSince = time.Time{}
	}
	alerting := slouched && now.Sub(e.slouchSince) >= e.opts.SlouchAlertAfter

	msg := MessageGoodPosture
	if alerting {
		msg = MessageSlouchAlert
	} else if slouched {
		msg = MessageSlouching
	}

	return Result{
		Detected:         true,
		State:            StateMonitoring,
		Score:            e.scorer.Score(math.Abs(deviation), e.opts.SlouchThreshold, e.opts.ScoreSaturationFactor),
		IsSlouched:       slouched,
		Alerting:         alerting,
		VerticalDistance: smoothed,
		Baseline:         e.baseline,
		Message:          msg,
	}
}

// Result messages surfaced to callers.
const (
	MessageCalibrating       = "calibrating, hold an upright posture"
	MessageCalibrationFailed = "calibration failed, no usable pose seen; reset to retry"
	MessageNoPose            = "no pose detected"
	MessageGoodPosture       = "good posture"
	MessageSlouching         = "slouching detected"
	MessageSlouchAlert       = "bad posture, straighten up"
)
