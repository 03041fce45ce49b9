package detector

import (
	"context"

	"go-posture-guard/internal/pose"
)

// PoseDetector is the external pose-estimation collaborator. Given one
// base64-encoded frame it returns the named 2D keypoints with confidences.
// The model itself (MoveNet or equivalent) runs in a separate service and is
// consumed as a black box.
type PoseDetector interface {
	Detect(ctx context.Context, imageBase64 string) (pose.LandmarkSet, error)
}

// movenetKeypointNames is the fixed output order of MoveNet single-pose
// models: 17 keypoints, each a [y, x, confidence] triple.
var movenetKeypointNames = [...]string{
	"nose",
	"left_eye", "right_eye",
	"left_ear", "right_ear",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
}

// decodeKeypoints converts the raw MoveNet keypoint grid into a named
// LandmarkSet. Rows beyond the known keypoint count are ignored; short rows
// are skipped.
func decodeKeypoints(keypoints [][]float64) pose.LandmarkSet {
	ls := make(pose.LandmarkSet, len(movenetKeypointNames))
	for i, kp := range keypoints {
		if i >= len(movenetKeypointNames) || len(kp) < 3 {
			continue
		}
		ls[movenetKeypointNames[i]] = pose.Landmark{
			Y:          kp[0],
			X:          kp[1],
			Confidence: kp[2],
		}
	}
	return ls
}
