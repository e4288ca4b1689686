package domain

// Animation is the compiled, renderer-agnostic form of a Document: a list of
// top-level groups, one per alive root shape.
type Animation struct {
	Timeline Timeline
	Groups   []*Group
}

// Element is a node inside a group. Implemented by *Group, *Rect, *Ellipse,
// *Path, *Stroke, *Fill and *Transform.
type Element interface {
	isElement()
}

// Group is the compiled form of one shape.
type Group struct {
	Name     string
	Elements []Element
}

// Rect is rectangle geometry centred on Position.
type Rect struct {
	Position Value
	Size     Value
}

// Ellipse is ellipse geometry centred on Position.
type Ellipse struct {
	Position Value
	Size     Value
}

// Path is bezier geometry.
type Path struct {
	Shape Value
}

// Stroke outlines the geometry of its group.
type Stroke struct {
	Color   Value
	Opacity Value
	Width   Value
}

// Fill paints the geometry of its group.
type Fill struct {
	Color   Value
	Opacity Value
}

// Transform positions a group's contents. Scale is a percentage and Rotation
// is in degrees.
type Transform struct {
	Position Value
	Anchor   Value
	Scale    Value
	Rotation Value
}

func (*Group) isElement()     {}
func (*Rect) isElement()      {}
func (*Ellipse) isElement()   {}
func (*Path) isElement()      {}
func (*Stroke) isElement()    {}
func (*Fill) isElement()      {}
func (*Transform) isElement() {}

// PropValue is a static value of an animatable property.
type PropValue interface {
	isPropValue()
}

// Scalar is a single number.
type Scalar float64

// Vector is a fixed size tuple: points, sizes, RGBA colours.
type Vector []float64

// Bezier is a cubic path with tangents relative to their vertex.
type Bezier struct {
	Closed      bool
	Vertices    []Vector
	InTangents  []Vector
	OutTangents []Vector
}

func (Scalar) isPropValue() {}
func (Vector) isPropValue() {}
func (Bezier) isPropValue() {}

// Value is an animatable property: either Static, or a time sorted list of
// keyframes when Keyframes is non-empty.
type Value struct {
	Static    PropValue
	Keyframes []ValueKeyframe
}

// ValueKeyframe is one entry of an animated property track.
type ValueKeyframe struct {
	Time  float64
	Value PropValue
	// Hold keeps Value constant until the next keyframe.
	Hold bool
}

// Animated reports whether v carries a keyframe track.
func (v Value) Animated() bool {
	return len(v.Keyframes) > 0
}

// StaticValue wraps a constant.
func StaticValue(p PropValue) Value {
	return Value{Static: p}
}
