package models

// PostureResponse is the per-frame analysis result handed back to the
// caller. Scoring fields are pointers: when Detected is false (or the
// session is still calibrating) they are absent from the JSON, never a
// misleading zero.
type PostureResponse struct {
	SessionID               string   `json:"session_id"`
	State                   string   `json:"state"`
	Detected                bool     `json:"detected"`
	Score                   *float64 `json:"score,omitempty"`
	IsSlouched              *bool    `json:"is_slouched,omitempty"`
	Alerting                bool     `json:"alerting,omitempty"`
	VerticalDistance        *float64 `json:"vertical_distance,omitempty"`
	Baseline                *float64 `json:"baseline,omitempty"`
	CalibrationRemainingSec *float64 `json:"calibration_remaining_sec,omitempty"`
	Message                 string   `json:"message,omitempty"`
	Timestamp               string   `json:"timestamp"`
	ProcessingTimeSec       float64  `json:"processing_time_sec"`
}

// SessionResponse describes one posture session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}
