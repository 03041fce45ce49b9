package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PostureEvent represents one event in a session's lifecycle or frame
// pipeline.
type PostureEvent struct {
	EventType      EventType     `json:"event_type"`
	Timestamp      time.Time     `json:"timestamp"`
	SessionID      string        `json:"session_id"`
	State          string        `json:"state,omitempty"`
	Detected       bool          `json:"detected"`
	Score          float64       `json:"score,omitempty"`
	IsSlouched     bool          `json:"is_slouched,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// EventType represents the type of posture event
type EventType string

const (
	// SessionCreated when a new session starts calibrating
	SessionCreated EventType = "session_created"
	// SessionReset when calibration is explicitly restarted
	SessionReset EventType = "session_reset"
	// CalibrationCompleted when a baseline is established
	CalibrationCompleted EventType = "calibration_completed"
	// CalibrationFailed when the window elapsed without usable samples
	CalibrationFailed EventType = "calibration_failed"
	// EvaluationCompleted when a frame was evaluated
	EvaluationCompleted EventType = "evaluation_completed"
	// SlouchAlert when the slouch grace period has been exceeded
	SlouchAlert EventType = "slouch_alert"
	// DetectorFailed when the external pose detector errored out
	DetectorFailed EventType = "detector_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PostureEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PostureEvent)
}

// LoggingObserver logs posture events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles posture events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event PostureEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"session_id": event.SessionID,
	}
	if event.State != "" {
		fields["state"] = event.State
	}
	if event.ProcessingTime > 0 {
		fields["processing_time"] = event.ProcessingTime
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	switch event.EventType {
	case SessionCreated:
		o.logger.WithFields(fields).Info("Posture session created")
	case SessionReset:
		o.logger.WithFields(fields).Info("Posture session reset to calibration")
	case CalibrationCompleted:
		o.logger.WithFields(fields).Info("Calibration baseline established")
	case CalibrationFailed:
		o.logger.WithFields(fields).Warn("Calibration failed, no usable pose samples")
	case SlouchAlert:
		fields["score"] = event.Score
		o.logger.WithFields(fields).Warn("Sustained bad posture detected")
	case EvaluationCompleted:
		fields["detected"] = event.Detected
		if event.Detected {
			fields["score"] = event.Score
			fields["is_slouched"] = event.IsSlouched
		}
		o.logger.WithFields(fields).Debug("Frame evaluated")
	case DetectorFailed:
		o.logger.WithFields(fields).Error("Pose detector request failed")
	default:
		o.logger.WithFields(fields).Info("Posture event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver aggregates counters from posture events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalEvaluations    int64
	detectedFrames      int64
	slouchedFrames      int64
	calibrationFailures int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() Observer {
	return &MetricsObserver{}
}

// OnEvent handles posture events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event PostureEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case EvaluationCompleted:
		o.totalEvaluations++
		o.totalProcessingTime += event.ProcessingTime
		if event.Detected {
			o.detectedFrames++
		}
		if event.IsSlouched {
			o.slouchedFrames++
		}
	case CalibrationFailed:
		o.calibrationFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.totalEvaluations > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.totalEvaluations)
	}

	return map[string]interface{}{
		"total_evaluations":    o.totalEvaluations,
		"detected_frames":      o.detectedFrames,
		"slouched_frames":      o.slouchedFrames,
		"calibration_failures": o.calibrationFailures,
		"avg_processing_time":  avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PostureEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
