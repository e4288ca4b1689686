package domain

// Keyframe is a timestamped partial property override for one shape.
type Keyframe struct {
	// Time is the frame the override applies at.
	Time float64

	// Props holds only the overridden keys.
	Props Props
}
