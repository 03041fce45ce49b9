package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-posture-guard/internal/config"
	apperrors "go-posture-guard/internal/errors"
	"go-posture-guard/internal/logger"
	"go-posture-guard/internal/observer"
	"go-posture-guard/internal/service"
	"go-posture-guard/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewHandler wires the HTTP routes for the posture service.
func NewHandler(svc service.PostureService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		corsMiddleware(),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", pipelineMetrics(metrics))
	r.POST("/sessions", createSession(svc))
	r.GET("/sessions/:id", getSession(svc))
	r.DELETE("/sessions/:id", deleteSession(svc))
	r.POST("/sessions/:id/reset", resetCalibration(svc))
	r.GET("/sessions/:id/stream", streamFrames(svc))
	r.POST("/analyze", analyzeFrame(svc))

	return r
}

func pipelineMetrics(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func createSession(svc service.PostureService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svc.CreateSession(c.Request.Context())
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to create session", err)
			return
		}

		logger.WithSession(session.SessionID).Info("Posture session created")
		c.JSON(http.StatusCreated, session)
	}
}

func getSession(svc service.PostureService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svc.GetSession(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "unknown session", err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func deleteSession(svc service.PostureService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "unknown session", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func resetCalibration(svc service.PostureService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := svc.ResetCalibration(c.Request.Context(), id); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to reset calibration", err)
			return
		}

		logger.WithSession(id).Info("Calibration reset")
		c.JSON(http.StatusOK, gin.H{"session_id": id, "state": "calibrating"})
	}
}

func analyzeFrame(svc service.PostureService) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := svc.AnalyzeFrame(c.Request.Context(), req.SessionID, req.Image, req.Landmarks)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "posture analysis failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"session_id":         req.SessionID,
			"state":              result.State,
			"detected":           result.Detected,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Frame analyzed")

		c.JSON(http.StatusOK, result)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: "1.0.0",
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// corsMiddleware allows browser camera-capture clients on any origin to post
// frames.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
