package domain

import "sort"

// ShapeKind identifies what a shape draws.
type ShapeKind string

const (
	// KindGroup is a pure grouping node with a transform.
	KindGroup ShapeKind = "group"
	// KindEllipse is an ellipse primitive (cx, cy, rx, ry).
	KindEllipse ShapeKind = "ellipse"
	// KindRectangle is a rectangle primitive (top, left, width, height).
	KindRectangle ShapeKind = "rectangle"
	// KindBezier is a cubic bezier path primitive (bezier).
	KindBezier ShapeKind = "bezier"
)

// Valid reports whether k is one of the known kinds.
func (k ShapeKind) Valid() bool {
	switch k {
	case KindGroup, KindEllipse, KindRectangle, KindBezier:
		return true
	default:
		return false
	}
}

// IsPrimitive reports whether k draws geometry.
func (k ShapeKind) IsPrimitive() bool {
	return k == KindEllipse || k == KindRectangle || k == KindBezier
}

// Shape is a node of the document forest.
//
// The parent link is the single owning relation; children is a derived index
// and is only ever changed through SetParent.
type Shape struct {
	// ID is chosen by the client and stable across the shape's life.
	ID string

	// Kind selects the meaning of Props.
	Kind ShapeKind

	// Props is the base property bag.
	Props Props

	// Deleted is the author-set tombstone.
	Deleted bool

	// ParentDeleted is set when any ancestor is tombstoned.
	ParentDeleted bool

	// LastModified is the logical timestamp of the last accepted shape.edit.
	LastModified float64

	// Keyframes maps frame time to override.
	Keyframes map[float64]*Keyframe

	parent   *Shape
	children []*Shape
}

// NewShape creates a parentless, alive shape.
func NewShape(id string, kind ShapeKind, props Props) *Shape {
	if props == nil {
		props = Props{}
	}
	return &Shape{
		ID:        id,
		Kind:      kind,
		Props:     props,
		Keyframes: make(map[float64]*Keyframe),
	}
}

// Alive reports whether the shape is visible: neither tombstoned itself nor
// below a tombstoned ancestor.
func (s *Shape) Alive() bool {
	return !s.Deleted && !s.ParentDeleted
}

// Parent returns the parent shape, nil for roots.
func (s *Shape) Parent() *Shape {
	return s.parent
}

// Children returns the children in insertion order.
func (s *Shape) Children() []*Shape {
	out := make([]*Shape, len(s.children))
	copy(out, s.children)
	return out
}

// HasAncestor reports whether other is s or one of its ancestors.
func (s *Shape) HasAncestor(other *Shape) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// AncestorDeleted walks the ancestor chain and reports whether any ancestor
// is tombstoned. It is the recompute-on-read counterpart of ParentDeleted.
func (s *Shape) AncestorDeleted() bool {
	for cur := s.parent; cur != nil; cur = cur.parent {
		if cur.Deleted {
			return true
		}
	}
	return false
}

// SetParent moves s under parent (nil makes it a root). It refuses links that
// would create a cycle and returns false in that case.
func (s *Shape) SetParent(parent *Shape) bool {
	if parent != nil && parent.HasAncestor(s) {
		return false
	}

	if s.parent != nil {
		s.parent.unlinkChild(s)
	}

	s.parent = parent
	if parent != nil {
		parent.children = append(parent.children, s)
	}

	s.ParentDeleted = parent != nil && !parent.Alive()
	s.refreshDescendants()
	return true
}

// Delete tombstones the shape and cascades ParentDeleted to the whole subtree.
func (s *Shape) Delete() {
	s.Deleted = true
	s.refreshDescendants()
}

// Undelete clears the tombstone and recomputes the subtree. Descendants that
// carry their own tombstone stay dead, and so do their descendants.
func (s *Shape) Undelete() {
	s.Deleted = false
	s.refreshDescendants()
}

// Update merges props if timestamp is newer than LastModified.
func (s *Shape) Update(timestamp float64, props Props) bool {
	if timestamp <= s.LastModified {
		return false
	}
	s.LastModified = timestamp
	s.Props.Merge(props)
	return true
}

// SetKeyframe upserts the keyframe at time.
func (s *Shape) SetKeyframe(time float64, props Props) {
	if props == nil {
		props = Props{}
	}
	s.Keyframes[time] = &Keyframe{Time: time, Props: props}
}

// RemoveKeyframe deletes the keyframe at time and reports whether one existed.
func (s *Shape) RemoveKeyframe(time float64) bool {
	if _, ok := s.Keyframes[time]; !ok {
		return false
	}
	delete(s.Keyframes, time)
	return true
}

// SortedKeyframes returns keyframes ordered by time.
func (s *Shape) SortedKeyframes() []*Keyframe {
	out := make([]*Keyframe, 0, len(s.Keyframes))
	for _, kf := range s.Keyframes {
		out = append(out, kf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// refreshDescendants recomputes ParentDeleted for every descendant. It always
// recurses, even through independently tombstoned children.
func (s *Shape) refreshDescendants() {
	dead := !s.Alive()
	for _, child := range s.children {
		child.ParentDeleted = dead
		child.refreshDescendants()
	}
}

func (s *Shape) unlinkChild(child *Shape) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
