package validation

// LandmarkBounds defines acceptable ranges for client-supplied landmarks.
// Detectors occasionally report keypoints slightly outside the frame, so the
// coordinate range carries a small tolerance around [0,1].
type LandmarkBounds struct {
	MinCoordinate float64
	MaxCoordinate float64
	MinConfidence float64
	MaxConfidence float64
	MaxLandmarks  int
}

// DefaultLandmarkBounds returns the default landmark bounds
func DefaultLandmarkBounds() LandmarkBounds {
	return LandmarkBounds{
		MinCoordinate: -0.25,
		MaxCoordinate: 1.25,
		MinConfidence: 0.0,
		MaxConfidence: 1.0,
		MaxLandmarks:  64,
	}
}

// LandmarkIssue represents a single validation problem with a supplied
// landmark set.
type LandmarkIssue struct {
	Type     string `json:"type"`
	Landmark string `json:"landmark,omitempty"`
	Message  string `json:"message"`
}

// LandmarkValidator checks client-supplied landmark sets before they enter
// the pipeline.
type LandmarkValidator struct {
	bounds LandmarkBounds
}

// NewLandmarkValidator creates a landmark validator with default bounds
func NewLandmarkValidator() *LandmarkValidator {
	return &LandmarkValidator{bounds: DefaultLandmarkBounds()}
}

// NewLandmarkValidatorWithBounds creates a landmark validator with custom bounds
func NewLandmarkValidatorWithBounds(bounds LandmarkBounds) *LandmarkValidator {
	return &LandmarkValidator{bounds: bounds}
}

// Point is the minimal landmark shape the validator needs.
type Point struct {
	X          float64
	Y          float64
	Confidence float64
}

// Validate returns the list of problems with the supplied landmark set. An
// empty list means the set is acceptable. An empty or missing set is an
// issue: the caller asked for a landmark evaluation without landmarks.
func (lv *LandmarkValidator) Validate(landmarks map[string]Point) []LandmarkIssue {
	var issues []LandmarkIssue

	if len(landmarks) == 0 {
		return append(issues, LandmarkIssue{
			Type:    "empty",
			Message: "landmark set is empty",
		})
	}
	if len(landmarks) > lv.bounds.MaxLandmarks {
		issues = append(issues, LandmarkIssue{
			Type:    "too_many",
			Message: "landmark set exceeds the maximum number of keypoints",
		})
	}

	for name, lm := range landmarks {
		if name == "" {
			issues = append(issues, LandmarkIssue{
				Type:    "unnamed",
				Message: "landmark with empty name",
			})
			continue
		}
		if !lv.inCoordinateRange(lm.X) || !lv.inCoordinateRange(lm.Y) {
			issues = append(issues, LandmarkIssue{
				Type:     "out_of_range",
				Landmark: name,
				Message:  "coordinates outside the normalized image frame",
			})
		}
		if lm.Confidence < lv.bounds.MinConfidence || lm.Confidence > lv.bounds.MaxConfidence {
			issues = append(issues, LandmarkIssue{
				Type:     "bad_confidence",
				Landmark: name,
				Message:  "confidence outside [0,1]",
			})
		}
	}

	return issues
}

func (lv *LandmarkValidator) inCoordinateRange(v float64) bool {
	return v >= lv.bounds.MinCoordinate && v <= lv.bounds.MaxCoordinate
}

// ConvertIssuesToMessages flattens issues into human-readable strings.
func (lv *LandmarkValidator) ConvertIssuesToMessages(issues []LandmarkIssue) []string {
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Landmark != "" {
			messages = append(messages, issue.Landmark+": "+issue.Message)
		} else {
			messages = append(messages, issue.Message)
		}
	}
	return messages
}
