package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "go-posture-guard/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the full configuration surface: HTTP server, external pose
// detector client, the posture pipeline tuning knobs, and session lifetime.
type Config struct {
	Host               string        `validate:"required"`
	Port               string        `validate:"required"`
	RequestTimeout     time.Duration `validate:"gt=0"`
	MaxRequestBodySize int64         `validate:"gt=0"`

	// External pose detector service
	DetectorURL     string        `validate:"required,url"`
	DetectorTimeout time.Duration `validate:"gt=0"`

	// Posture pipeline
	MinLandmarkConfidence float64       `validate:"gt=0,lte=1"`
	CalibrationDuration   time.Duration `validate:"gt=0"`
	MinCalibrationSamples int           `validate:"gte=1"`
	SmoothingWindowSize   int           `validate:"gte=1"`
	SlouchThreshold       float64       `validate:"gt=0"`
	ScoreSaturationFactor float64       `validate:"gte=1"`
	SlouchAlertAfter      time.Duration `validate:"gte=0"`
	ScoringStrategy       string        `validate:"oneof=linear exponential"`

	// Session housekeeping
	SessionTTL           time.Duration `validate:"gt=0"`
	SessionPruneInterval time.Duration `validate:"gt=0"`
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv builds the configuration from environment variables, applying
// defaults where unset. A .env file in the working directory is honoured when
// present. Out-of-range values are rejected here, before any session starts.
func LoadFromEnv() (*Config, error) {
	// Missing .env is not an error; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		DetectorURL:     getEnvOrDefault("DETECTOR_URL", "http://localhost:5000/detect"),
		DetectorTimeout: parseDurationOrDefault("DETECTOR_TIMEOUT", 15*time.Second),

		MinLandmarkConfidence: parseFloatOrDefault("MIN_LANDMARK_CONFIDENCE", 0.3),
		CalibrationDuration:   parseDurationOrDefault("CALIBRATION_DURATION", 3*time.Second),
		MinCalibrationSamples: int(parseIntOrDefault("MIN_CALIBRATION_SAMPLES", 1)),
		SmoothingWindowSize:   int(parseIntOrDefault("SMOOTHING_WINDOW_SIZE", 5)),
		SlouchThreshold:       parseFloatOrDefault("SLOUCH_THRESHOLD", 0.15),
		ScoreSaturationFactor: parseFloatOrDefault("SCORE_SATURATION_FACTOR", 2.0),
		SlouchAlertAfter:      parseDurationOrDefault("SLOUCH_ALERT_AFTER", 3*time.Second),
		ScoringStrategy:       getEnvOrDefault("SCORING_STRATEGY", "linear"),

		SessionTTL:           parseDurationOrDefault("SESSION_TTL", 30*time.Minute),
		SessionPruneInterval: parseDurationOrDefault("SESSION_PRUNE_INTERVAL", time.Minute),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, apperrors.NewConfigurationError("invalid PORT: "+cfg.Port, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, apperrors.NewConfigurationError("invalid configuration", err)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
