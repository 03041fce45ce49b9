package models

// LandmarkPayload is one named body keypoint as supplied by a client that
// runs its own detector. Coordinates are normalized [0,1] image space.
type LandmarkPayload struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeRequest carries one frame for evaluation. Exactly one of Image
// (base64 frame forwarded to the external detector) or Landmarks (detector
// bypass) must be set.
type AnalyzeRequest struct {
	SessionID string                     `json:"session_id" binding:"required,uuid"`
	Image     string                     `json:"image,omitempty"`
	Landmarks map[string]LandmarkPayload `json:"landmarks,omitempty"`
}

// StreamFrame is one inbound websocket message on the streaming endpoint.
// Same payload rules as AnalyzeRequest minus the session id, which is bound
// to the connection.
type StreamFrame struct {
	Image     string                     `json:"image,omitempty"`
	Landmarks map[string]LandmarkPayload `json:"landmarks,omitempty"`
}

// StreamResult is one outbound websocket message: either a posture result
// or a frame-level error.
type StreamResult struct {
	Result *PostureResponse `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
