package domain

import "time"

// DocumentRecord is the stored row of a document.
type DocumentRecord struct {
	ID       int64
	URL      string
	Timeline Timeline
	// Lottie is the encoded export cached at the last save.
	Lottie    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShapeRecord is the stored row of an alive shape.
type ShapeRecord struct {
	// ID is the numeric row id, assigned by the store on insert.
	ID         int64
	DocumentID int64
	// PublicID is the client chosen shape id.
	PublicID string
	Kind     ShapeKind
	Props    Props
	// ParentID is the public id of the parent shape, nil for roots.
	ParentID     *string
	LastModified float64
}

// KeyframeRecord is the stored row of one keyframe.
type KeyframeRecord struct {
	ShapeID int64
	Time    float64
	Props   Props
}
