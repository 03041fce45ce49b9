package service

import (
	"context"
	"time"

	"go-posture-guard/internal/detector"
	apperrors "go-posture-guard/internal/errors"
	"go-posture-guard/internal/observer"
	"go-posture-guard/internal/pose"
	"go-posture-guard/internal/repository"
	"go-posture-guard/pkg/models"
	"go-posture-guard/pkg/validation"
)

// PostureService orchestrates one frame's trip through the pipeline: resolve
// landmarks (external detector or client-supplied), extract the geometric
// feature, and evaluate it against the session's state machine.
type PostureService interface {
	CreateSession(ctx context.Context) (*models.SessionResponse, error)
	GetSession(ctx context.Context, id string) (*models.SessionResponse, error)
	DeleteSession(ctx context.Context, id string) error
	ResetCalibration(ctx context.Context, id string) error

	// AnalyzeFrame evaluates one frame for the session. Exactly one of
	// image or landmarks must be supplied.
	AnalyzeFrame(ctx context.Context, sessionID, image string, landmarks map[string]models.LandmarkPayload) (*models.PostureResponse, error)
}

type postureService struct {
	sessions  repository.SessionRepository
	detector  detector.PoseDetector
	extractor *pose.FeatureExtractor
	validator *validation.LandmarkValidator
	events    observer.Subject
}

// NewPostureService creates the posture analysis service.
func NewPostureService(
	sessions repository.SessionRepository,
	poseDetector detector.PoseDetector,
	extractor *pose.FeatureExtractor,
	events observer.Subject,
) PostureService {
	return &postureService{
		sessions:  sessions,
		detector:  poseDetector,
		extractor: extractor,
		validator: validation.NewLandmarkValidator(),
		events:    events,
	}
}

// CreateSession starts a fresh session in the calibrating state.
func (s *postureService) CreateSession(ctx context.Context) (*models.SessionResponse, error) {
	session, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, observer.PostureEvent{
		EventType: observer.SessionCreated,
		Timestamp: time.Now(),
		SessionID: session.ID,
		State:     string(session.State()),
	})
	return sessionResponse(session), nil
}

// GetSession describes an existing session.
func (s *postureService) GetSession(ctx context.Context, id string) (*models.SessionResponse, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return sessionResponse(session), nil
}

// DeleteSession removes a session.
func (s *postureService) DeleteSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return apperrors.NewNotFoundError("unknown session", err)
	}
	return nil
}

// ResetCalibration returns a session to the calibrating state, clearing its
// baseline and smoothing buffer. Idempotent.
func (s *postureService) ResetCalibration(ctx context.Context, id string) error {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	session.Reset()

	s.publish(ctx, observer.PostureEvent{
		EventType: observer.SessionReset,
		Timestamp: time.Now(),
		SessionID: id,
		State:     string(pose.StateCalibrating),
	})
	return nil
}

// AnalyzeFrame evaluates one frame for the session
func (s *postureService) AnalyzeFrame(ctx context.Context, sessionID, image string, landmarks map[string]models.LandmarkPayload) (*models.PostureResponse, error) {
	start := time.Now()

	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	landmarkSet, err := s.resolveLandmarks(ctx, sessionID, image, landmarks)
	if err != nil {
		return nil, err
	}

	feature := s.extractor.Extract(landmarkSet)
	result, err := session.Evaluate(feature)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeCalibration) {
			s.publish(ctx, observer.PostureEvent{
				EventType:    observer.CalibrationFailed,
				Timestamp:    time.Now(),
				SessionID:    sessionID,
				State:        string(result.State),
				ErrorMessage: err.Error(),
			})
		}
		return nil, err
	}

	s.publishResultEvents(ctx, sessionID, result, time.Since(start))
	return postureResponse(sessionID, result, start), nil
}

func (s *postureService) lookup(ctx context.Context, id string) (*repository.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFoundError("unknown session", err)
	}
	return session, nil
}

// resolveLandmarks turns the request payload into a LandmarkSet, either by
// converting client-supplied landmarks or by calling the external detector.
func (s *postureService) resolveLandmarks(ctx context.Context, sessionID, image string, landmarks map[string]models.LandmarkPayload) (pose.LandmarkSet, error) {
	if len(landmarks) > 0 {
		points := make(map[string]validation.Point, len(landmarks))
		for name, lm := range landmarks {
			points[name] = validation.Point{X: lm.X, Y: lm.Y, Confidence: lm.Confidence}
		}
		if issues := s.validator.Validate(points); len(issues) > 0 {
			messages := s.validator.ConvertIssuesToMessages(issues)
			return nil, apperrors.NewValidationError("invalid landmarks: "+messages[0], nil)
		}

		ls := make(pose.LandmarkSet, len(landmarks))
		for name, lm := range landmarks {
			ls[name] = pose.Landmark{X: lm.X, Y: lm.Y, Confidence: lm.Confidence}
		}
		return ls, nil
	}

	if image == "" {
		return nil, apperrors.NewValidationError("frame must carry either an image or a landmark set", nil)
	}

	ls, err := s.detector.Detect(ctx, image)
	if err != nil {
		s.publish(ctx, observer.PostureEvent{
			EventType:    observer.DetectorFailed,
			Timestamp:    time.Now(),
			SessionID:    sessionID,
			ErrorMessage: err.Error(),
		})
		return nil, err
	}
	return ls, nil
}

func (s *postureService) publishResultEvents(ctx context.Context, sessionID string, result pose.Result, elapsed time.Duration) {
	now := time.Now()
	if result.CalibrationCompleted {
		s.publish(ctx, observer.PostureEvent{
			EventType: observer.CalibrationCompleted,
			Timestamp: now,
			SessionID: sessionID,
			State:     string(result.State),
		})
	}
	if result.Alerting {
		s.publish(ctx, observer.PostureEvent{
			EventType:  observer.SlouchAlert,
			Timestamp:  now,
			SessionID:  sessionID,
			State:      string(result.State),
			Score:      result.Score,
			IsSlouched: true,
		})
	}
	s.publish(ctx, observer.PostureEvent{
		EventType:      observer.EvaluationCompleted,
		Timestamp:      now,
		SessionID:      sessionID,
		State:          string(result.State),
		Detected:       result.Detected,
		Score:          result.Score,
		IsSlouched:     result.IsSlouched,
		ProcessingTime: elapsed,
	})
}

func (s *postureService) publish(ctx context.Context, event observer.PostureEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}

func sessionResponse(session *repository.Session) *models.SessionResponse {
	return &models.SessionResponse{
		SessionID: session.ID,
		State:     string(session.State()),
		CreatedAt: session.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// postureResponse converts an evaluator result to the wire response. Scoring
// fields are set only when the frame was detected in the monitoring state;
// callers must treat them as absent otherwise.
func postureResponse(sessionID string, result pose.Result, start time.Time) *models.PostureResponse {
	resp := &models.PostureResponse{
		SessionID:         sessionID,
		State:             string(result.State),
		Detected:          result.Detected,
		Alerting:          result.Alerting,
		Message:           result.Message,
		Timestamp:         start.UTC().Format(time.RFC3339),
		ProcessingTimeSec: time.Since(start).Seconds(),
	}

	if result.State == pose.StateCalibrating {
		remaining := result.CalibrationRemaining.Seconds()
		resp.CalibrationRemainingSec = &remaining
		return resp
	}

	if result.Detected {
		score := result.Score
		slouched := result.IsSlouched
		distance := result.VerticalDistance
		baseline := result.Baseline
		resp.Score = &score
		resp.IsSlouched = &slouched
		resp.VerticalDistance = &distance
		resp.Baseline = &baseline
	}
	return resp
}
