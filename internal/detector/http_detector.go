package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "go-posture-guard/internal/errors"
	"go-posture-guard/internal/pose"
)

const maxDetectorResponseBytes = 1 << 20 // 1MB, keypoint payloads are tiny

// detectRequest is the wire request to the detector service.
type detectRequest struct {
	Image string `json:"image"`
}

// detectResponse is the detector service's wire response: the MoveNet
// keypoint grid, rows of [y, x, confidence].
type detectResponse struct {
	Keypoints [][]float64 `json:"keypoints"`
}

// HTTPPoseDetector calls a pose-detection service over HTTP.
type HTTPPoseDetector struct {
	client *http.Client
	url    string
}

// NewHTTPPoseDetector creates an HTTP pose detector client for the given
// detector endpoint.
func NewHTTPPoseDetector(detectorURL string, timeout time.Duration) *HTTPPoseDetector {
	transport := &http.Transport{
		// A single upstream detector: keep the pool small
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPPoseDetector{
		url: detectorURL,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Detect posts one frame to the detector service and decodes the returned
// keypoints. Transient upstream failures (5xx, connection errors) are
// retried up to 3 attempts; client errors are not.
func (d *HTTPPoseDetector) Detect(ctx context.Context, imageBase64 string) (pose.LandmarkSet, error) {
	// Browsers send data URLs; the detector wants the bare payload.
	if idx := strings.IndexByte(imageBase64, ','); idx >= 0 && strings.HasPrefix(imageBase64, "data:") {
		imageBase64 = imageBase64[idx+1:]
	}

	body, err := json.Marshal(detectRequest{Image: imageBase64})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode detector request", err)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, apperrors.NewTimeoutError("detector request cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
		if err != nil {
			return nil, apperrors.NewInternalError("invalid detector URL", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			resp.Body.Close()
			return nil, apperrors.NewDetectorError(
				fmt.Sprintf("detector rejected request: status code %d", resp.StatusCode), nil)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("detector server error: status code %d", resp.StatusCode)
			continue
		}

		ls, err := decodeDetectorResponse(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		return ls, nil
	}

	return nil, apperrors.NewDetectorError("pose detector unavailable", lastErr)
}

func decodeDetectorResponse(body io.Reader) (pose.LandmarkSet, error) {
	var wire detectResponse
	if err := json.NewDecoder(io.LimitReader(body, maxDetectorResponseBytes)).Decode(&wire); err != nil {
		return nil, apperrors.NewDetectorError("failed to decode detector response", err)
	}
	return decodeKeypoints(wire.Keypoints), nil
}
