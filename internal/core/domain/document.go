package domain

import "sync"

// Document is the aggregate root for one animation project. It owns every
// shape and knows which sessions currently have it open.
//
// A Document is not safe for concurrent use; callers serialize handlers with
// Lock and Unlock so each one runs to completion before the next starts.
type Document struct {
	// ID is the internal storage row id.
	ID int64

	// PublicID is the obfuscated id exposed to clients.
	PublicID string

	// URL is the import source, empty for documents created in the editor.
	URL string

	// Timeline holds dimensions, frame rate and frame range.
	Timeline Timeline

	mu       sync.Mutex
	shapes   map[string]*Shape
	order    []*Shape
	sessions []*Session
	export   *Animation
}

// NewDocument creates an empty document.
func NewDocument(id int64, publicID string, timeline Timeline) *Document {
	return &Document{
		ID:       id,
		PublicID: publicID,
		Timeline: timeline,
		shapes:   make(map[string]*Shape),
	}
}

// Lock acquires the document for one handler.
func (d *Document) Lock() { d.mu.Lock() }

// Unlock releases the document.
func (d *Document) Unlock() { d.mu.Unlock() }

// Shape looks up a shape by id, tombstoned or not.
func (d *Document) Shape(id string) (*Shape, bool) {
	s, ok := d.shapes[id]
	return s, ok
}

// Shapes returns every shape in insertion order.
func (d *Document) Shapes() []*Shape {
	out := make([]*Shape, len(d.order))
	copy(out, d.order)
	return out
}

// AliveShapes returns the alive shapes in insertion order.
func (d *Document) AliveShapes() []*Shape {
	var out []*Shape
	for _, s := range d.order {
		if s.Alive() {
			out = append(out, s)
		}
	}
	return out
}

// AddShape inserts a new shape. An existing shape with the same id is kept
// and false is returned.
func (d *Document) AddShape(s *Shape) bool {
	if _, ok := d.shapes[s.ID]; ok {
		return false
	}
	d.shapes[s.ID] = s
	d.order = append(d.order, s)
	return true
}

// AddSession registers a session on the document.
func (d *Document) AddSession(s *Session) {
	for _, existing := range d.sessions {
		if existing.ID == s.ID {
			return
		}
	}
	d.sessions = append(d.sessions, s)
}

// RemoveSession unregisters a session and reports whether it was present.
func (d *Document) RemoveSession(id string) bool {
	for i, s := range d.sessions {
		if s.ID == id {
			d.sessions = append(d.sessions[:i], d.sessions[i+1:]...)
			return true
		}
	}
	return false
}

// Sessions returns the open sessions in join order.
func (d *Document) Sessions() []*Session {
	out := make([]*Session, len(d.sessions))
	copy(out, d.sessions)
	return out
}

// HasUser reports whether any open session belongs to userID.
func (d *Document) HasUser(userID int64) bool {
	for _, s := range d.sessions {
		if s.User.ID == userID {
			return true
		}
	}
	return false
}

// CachedExport returns the compiled export, nil when an edit happened since
// it was computed.
func (d *Document) CachedExport() *Animation {
	return d.export
}

// SetCachedExport stores a freshly compiled export.
func (d *Document) SetCachedExport(a *Animation) {
	d.export = a
}

// InvalidateExport drops the compiled export. Every successful edit calls it.
func (d *Document) InvalidateExport() {
	d.export = nil
}
