package domain

// Timeline holds the document-level animation parameters.
type Timeline struct {
	Width    int     `json:"width" toml:"width"`
	Height   int     `json:"height" toml:"height"`
	FPS      float64 `json:"fps" toml:"fps"`
	Duration float64 `json:"duration" toml:"duration"`
	Start    float64 `json:"start" toml:"start"`
}

// DefaultTimeline is used for documents created for first-time users.
func DefaultTimeline() Timeline {
	return Timeline{
		Width:    512,
		Height:   512,
		FPS:      60,
		Duration: 180,
		Start:    0,
	}
}
