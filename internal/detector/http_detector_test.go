package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "go-posture-guard/internal/errors"
	"go-posture-guard/internal/pose"
)

// testKeypoints builds a full 17-row MoveNet grid with the given confidence.
func testKeypoints(confidence float64) [][]float64 {
	kps := make([][]float64, len(movenetKeypointNames))
	for i := range kps {
		kps[i] = []float64{0.1 * float64(i), 0.5, confidence}
	}
	return kps
}

func keypointBody(t *testing.T, kps [][]float64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"keypoints": kps})
	if err != nil {
		t.Fatalf("Failed to marshal keypoints: %v", err)
	}
	return body
}

func TestHTTPPoseDetector_Detect(t *testing.T) {
	tests := []struct {
		name          string
		handler       func(attempt *int) http.HandlerFunc
		expectError   bool
		expectType    apperrors.ErrorType
		expectedCalls int
	}{
		{
			name: "Success on first attempt",
			handler: func(attempt *int) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					*attempt++
					w.Header().Set("Content-Type", "application/json")
					w.Write(keypointBody(t, testKeypoints(0.9)))
				}
			},
			expectError:   false,
			expectedCalls: 1,
		},
		{
			name: "Success on second attempt after server error",
			handler: func(attempt *int) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					*attempt++
					if *attempt == 1 {
						w.WriteHeader(http.StatusInternalServerError)
						return
					}
					w.Header().Set("Content-Type", "application/json")
					w.Write(keypointBody(t, testKeypoints(0.9)))
				}
			},
			expectError:   false,
			expectedCalls: 2,
		},
		{
			name: "Client error - no retry",
			handler: func(attempt *int) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					*attempt++
					w.WriteHeader(http.StatusBadRequest)
				}
			},
			expectError:   true,
			expectType:    apperrors.ErrorTypeDetector,
			expectedCalls: 1,
		},
		{
			name: "Persistent server error exhausts retries",
			handler: func(attempt *int) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					*attempt++
					w.WriteHeader(http.StatusBadGateway)
				}
			},
			expectError:   true,
			expectType:    apperrors.ErrorTypeDetector,
			expectedCalls: 3,
		},
		{
			name: "Malformed response body",
			handler: func(attempt *int) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					*attempt++
					fmt.Fprint(w, "not json")
				}
			},
			expectError:   true,
			expectType:    apperrors.ErrorTypeDetector,
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(tt.handler(&attempts))
			defer server.Close()

			d := NewHTTPPoseDetector(server.URL, 5*time.Second)
			ls, err := d.Detect(context.Background(), "aGVsbG8=")

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !apperrors.IsType(err, tt.expectType) {
					t.Errorf("Expected error type %s, got %v", tt.expectType, err)
				}
			} else {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if len(ls) != len(movenetKeypointNames) {
					t.Errorf("Expected %d landmarks, got %d", len(movenetKeypointNames), len(ls))
				}
			}

			if attempts != tt.expectedCalls {
				t.Errorf("Expected %d calls, got %d", tt.expectedCalls, attempts)
			}
		})
	}
}

func TestHTTPPoseDetector_StripsDataURLPrefix(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Image string `json:"image"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		received = req.Image
		w.Write(keypointBody(t, testKeypoints(0.9)))
	}))
	defer server.Close()

	d := NewHTTPPoseDetector(server.URL, 5*time.Second)
	if _, err := d.Detect(context.Background(), "data:image/jpeg;base64,aGVsbG8="); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if received != "aGVsbG8=" {
		t.Errorf("Expected bare payload, detector received %q", received)
	}
}

func TestHTTPPoseDetector_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewHTTPPoseDetector(server.URL, 5*time.Second)
	if _, err := d.Detect(ctx, "aGVsbG8="); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}

func TestDecodeKeypoints(t *testing.T) {
	tests := []struct {
		name      string
		keypoints [][]float64
		expected  int
	}{
		{"Full grid", testKeypoints(0.8), 17},
		{"Empty grid", nil, 0},
		{"Short rows skipped", [][]float64{{0.1, 0.2}, {0.1, 0.2, 0.9}}, 1},
		{"Extra rows ignored", append(testKeypoints(0.8), []float64{0.1, 0.2, 0.3}), 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := decodeKeypoints(tt.keypoints)
			if len(ls) != tt.expected {
				t.Errorf("Expected %d landmarks, got %d", tt.expected, len(ls))
			}
		})
	}
}

func TestDecodeKeypoints_FieldOrder(t *testing.T) {
	ls := decodeKeypoints([][]float64{{0.25, 0.75, 0.9}})

	lm, ok := ls[pose.Nose]
	if !ok {
		t.Fatal("Expected nose landmark from first row")
	}
	if math.Abs(lm.Y-0.25) > 1e-9 || math.Abs(lm.X-0.75) > 1e-9 || math.Abs(lm.Confidence-0.9) > 1e-9 {
		t.Errorf("Row decoded as y=%f x=%f c=%f, expected y=0.25 x=0.75 c=0.9", lm.Y, lm.X, lm.Confidence)
	}
}
