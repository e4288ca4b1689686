// Package lottie implements driven.AnimationEncoder for the Lottie JSON
// format and the gzipped Telegram sticker (.tgs) variant of it.
package lottie

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
)

// Ensure Encoder implements the interface.
var _ driven.AnimationEncoder = (*Encoder)(nil)

// Version is the Lottie schema version written to every file.
const Version = "5.7.1"

// Encoder writes compiled animations as a single shape layer.
type Encoder struct{}

// NewEncoder creates an encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode serializes anim to Lottie JSON.
func (e *Encoder) Encode(anim *domain.Animation) ([]byte, error) {
	tl := anim.Timeline
	end := tl.Duration

	shapes := make([]any, 0, len(anim.Groups))
	for _, g := range anim.Groups {
		shapes = append(shapes, group(g))
	}

	doc := animation{
		Version:   Version,
		FrameRate: tl.FPS,
		InPoint:   tl.Start,
		OutPoint:  end,
		Width:     tl.Width,
		Height:    tl.Height,
		Name:      "glaximini",
		Assets:    []any{},
		Layers: []layer{{
			Type:      4,
			Index:     1,
			Name:      "shapes",
			Stretch:   1,
			Transform: identityTransform(),
			Shapes:    shapes,
			InPoint:   tl.Start,
			OutPoint:  end,
		}},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshalling lottie: %w", err)
	}
	return data, nil
}

// Sticker marks encoded as a Telegram sticker and gzips it.
func (e *Encoder) Sticker(encoded []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, fmt.Errorf("reading lottie: %w", err)
	}
	fields["tgs"] = json.RawMessage("1")

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshalling sticker: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing sticker: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing sticker: %w", err)
	}
	return buf.Bytes(), nil
}

// group converts one compiled group. Lottie expects every group's item list
// to end with its transform, so primitives get an identity one.
func group(g *domain.Group) shapeGroup {
	out := shapeGroup{Type: "gr", Name: g.Name, Items: make([]any, 0, len(g.Elements)+1)}
	hasTransform := false

	for _, el := range g.Elements {
		switch el := el.(type) {
		case *domain.Group:
			out.Items = append(out.Items, group(el))
		case *domain.Rect:
			out.Items = append(out.Items, rect{
				Type:     "rc",
				Position: property(el.Position),
				Size:     property(el.Size),
				Radius:   static(0),
			})
		case *domain.Ellipse:
			out.Items = append(out.Items, ellipse{
				Type:     "el",
				Position: property(el.Position),
				Size:     property(el.Size),
			})
		case *domain.Path:
			out.Items = append(out.Items, path{Type: "sh", Shape: property(el.Shape)})
		case *domain.Stroke:
			out.Items = append(out.Items, stroke{
				Type:     "st",
				Color:    property(el.Color),
				Opacity:  property(el.Opacity),
				Width:    property(el.Width),
				LineCap:  2,
				LineJoin: 2,
			})
		case *domain.Fill:
			out.Items = append(out.Items, fill{
				Type:    "fl",
				Color:   property(el.Color),
				Opacity: property(el.Opacity),
				Rule:    1,
			})
		case *domain.Transform:
			hasTransform = true
			out.Items = append(out.Items, transform{
				Type:     "tr",
				Position: property(el.Position),
				Anchor:   property(el.Anchor),
				Scale:    property(el.Scale),
				Rotation: property(el.Rotation),
				Opacity:  static(100),
			})
		}
	}

	if !hasTransform {
		out.Items = append(out.Items, identityGroupTransform())
	}
	return out
}

// property converts a static or keyed value.
func property(v domain.Value) prop {
	if !v.Animated() {
		return prop{Animated: 0, Value: value(v.Static)}
	}

	keys := make([]keyframe, 0, len(v.Keyframes))
	for _, kf := range v.Keyframes {
		k := keyframe{Time: kf.Time, Start: keyed(kf.Value)}
		if kf.Hold {
			k.Hold = 1
		} else {
			k.In = &easing{X: []float64{1}, Y: []float64{1}}
			k.Out = &easing{X: []float64{0}, Y: []float64{0}}
		}
		keys = append(keys, k)
	}
	return prop{Animated: 1, Value: keys}
}

// value is the static "k" of a property.
func value(p domain.PropValue) any {
	switch p := p.(type) {
	case domain.Scalar:
		return float64(p)
	case domain.Vector:
		return []float64(p)
	case domain.Bezier:
		return bezier(p)
	default:
		return 0
	}
}

// keyed is the "s" of a keyframe, which is always an array.
func keyed(p domain.PropValue) any {
	switch p := p.(type) {
	case domain.Scalar:
		return []float64{float64(p)}
	case domain.Bezier:
		return []any{bezier(p)}
	default:
		return value(p)
	}
}

func bezier(b domain.Bezier) bezierShape {
	return bezierShape{
		Closed:   b.Closed,
		Vertices: points(b.Vertices),
		In:       points(b.InTangents),
		Out:      points(b.OutTangents),
	}
}

func points(vs []domain.Vector) [][]float64 {
	out := make([][]float64, len(vs))
	for i, v := range vs {
		out[i] = []float64(v)
	}
	return out
}

func static(v float64) prop {
	return prop{Animated: 0, Value: v}
}

func identityTransform() layerTransform {
	return layerTransform{
		Opacity:  static(100),
		Rotation: static(0),
		Position: prop{Value: []float64{0, 0, 0}},
		Anchor:   prop{Value: []float64{0, 0, 0}},
		Scale:    prop{Value: []float64{100, 100, 100}},
	}
}

func identityGroupTransform() transform {
	return transform{
		Type:     "tr",
		Position: prop{Value: []float64{0, 0}},
		Anchor:   prop{Value: []float64{0, 0}},
		Scale:    prop{Value: []float64{100, 100}},
		Rotation: static(0),
		Opacity:  static(100),
	}
}
