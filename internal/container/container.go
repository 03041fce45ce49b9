package container

import (
	"net/http"

	"go-posture-guard/internal/config"
	"go-posture-guard/internal/factory"
	"go-posture-guard/internal/logger"
	"go-posture-guard/internal/observer"
	"go-posture-guard/internal/pose"
	"go-posture-guard/internal/repository"
	"go-posture-guard/internal/service"
	"go-posture-guard/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	sessions       repository.SessionRepository
	postureService service.PostureService
	metrics        *observer.MetricsObserver
	handler        http.Handler
}

// NewContainer builds the dependency graph for the posture service.
func NewContainer(cfg *config.Config) (*Container, error) {
	poseDetector, err := factory.NewPoseDetector(factory.HTTPDetector, cfg)
	if err != nil {
		return nil, err
	}

	evaluatorFactory, err := factory.NewEvaluatorFactory(cfg)
	if err != nil {
		return nil, err
	}

	sessions := repository.NewMemorySessionRepository(repository.EvaluatorFactory(evaluatorFactory))
	extractor := pose.NewFeatureExtractor(cfg.MinLandmarkConfidence)

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	metrics := observer.NewMetricsObserver().(*observer.MetricsObserver)
	events.Subscribe(metrics)

	postureService := service.NewPostureService(sessions, poseDetector, extractor, events)
	handler := transport.NewHandler(postureService, metrics, cfg)

	return &Container{
		config:         cfg,
		sessions:       sessions,
		postureService: postureService,
		metrics:        metrics,
		handler:        handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Sessions returns the session repository, for housekeeping
func (c *Container) Sessions() repository.SessionRepository {
	return c.sessions
}

// Metrics returns the aggregated pipeline metrics observer
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
